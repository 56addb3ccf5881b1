package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stuaninauts/fipe-cli/internal/model"
)

func TestTransmission(t *testing.T) {
	assert.Equal(t, model.TransmissionAutomatic, Transmission("Civic Aut. 2.0"))
	assert.Equal(t, model.TransmissionManual, Transmission("Civic 2.0"))
	// Semi-automatics carry the same token and fold into automatic.
	assert.Equal(t, model.TransmissionAutomatic, Transmission("Stradale F1 Semi-Aut."))
	// Token match is case-sensitive.
	assert.Equal(t, model.TransmissionManual, Transmission("Civic aut. 2.0"))
	assert.Equal(t, model.TransmissionManual, Transmission("Autobianchi 500"))
}

func TestDisplacement(t *testing.T) {
	v, ok := Displacement("Gol 1.0 Turbo")
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, ok = Displacement("Civic Aut. 2.0 16V")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)
}

func TestDisplacement_Absent(t *testing.T) {
	_, ok := Displacement("Gol Turbo")
	assert.False(t, ok)

	_, ok = Displacement("Kombi 6 lugares")
	assert.False(t, ok)
}

func TestDisplacement_FirstMatchWins(t *testing.T) {
	v, ok := Displacement("Uno 1.0/1.4 Fire")
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestElectricOverride(t *testing.T) {
	fuel, ok := ElectricOverride("Leaf Elétrico Aut.")
	assert.True(t, ok)
	assert.Equal(t, model.FuelElectric, fuel)

	_, ok = ElectricOverride("Gol 1.0")
	assert.False(t, ok)
}
