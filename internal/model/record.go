package model

// FuelType is the single-letter fuel code used by the canonical table.
type FuelType string

const (
	FuelGasoline FuelType = "g"
	FuelAlcohol  FuelType = "a"
	FuelDiesel   FuelType = "d"
	FuelElectric FuelType = "e"
)

// AllFuels is the full fuel set, in canonical order.
func AllFuels() []FuelType {
	return []FuelType{FuelGasoline, FuelAlcohol, FuelDiesel, FuelElectric}
}

// Label returns the Portuguese display label for the fuel code.
func (f FuelType) Label() string {
	switch f {
	case FuelGasoline:
		return "Gasolina"
	case FuelAlcohol:
		return "Álcool"
	case FuelDiesel:
		return "Diesel"
	case FuelElectric:
		return "Elétrico"
	default:
		return string(f)
	}
}

// Transmission is the single-letter gearbox code used by the canonical table.
type Transmission string

const (
	TransmissionManual    Transmission = "m"
	TransmissionAutomatic Transmission = "a"
)

// AllTransmissions is the full transmission set, in canonical order.
func AllTransmissions() []Transmission {
	return []Transmission{TransmissionManual, TransmissionAutomatic}
}

// Label returns the Portuguese display label for the transmission code.
func (t Transmission) Label() string {
	switch t {
	case TransmissionManual:
		return "Manual"
	case TransmissionAutomatic:
		return "Automático"
	default:
		return string(t)
	}
}

// Record is one row of the canonical price table. RefYear/RefMonth identify
// the FIPE reference period the quotation belongs to; Transmission and
// Displacement are derived from the free-text model description during
// ingestion.
type Record struct {
	RefYear         int
	RefMonth        int
	ManufactureYear int
	Brand           string
	Model           string
	Fuel            FuelType
	FipeCode        int
	Price           float64
	Transmission    Transmission
	// Displacement is the engine size in liters. HasDisplacement is false
	// when the model description carries no numeric displacement token.
	Displacement    float64
	HasDisplacement bool
}
