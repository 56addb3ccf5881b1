// Package extract derives categorical and numeric features from the
// free-text model descriptions in FIPE extracts.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/stuaninauts/fipe-cli/internal/model"
)

// automaticToken marks automatic and semi-automatic gearboxes in FIPE model
// names. Semi-automatics classify as automatic.
const automaticToken = "Aut."

// electricToken marks electric vehicles in FIPE model names.
const electricToken = "Elétrico"

var displacementRe = regexp.MustCompile(`\d+\.\d+`)

// Transmission classifies a model description as automatic when it carries
// the gearbox abbreviation token (case-sensitive), manual otherwise.
func Transmission(description string) model.Transmission {
	if strings.Contains(description, automaticToken) {
		return model.TransmissionAutomatic
	}
	return model.TransmissionManual
}

// Displacement returns the engine size in liters parsed from the first
// decimal token in the description (such as the 2.0 in "Civic 2.0 16V").
// Only the first match is used even when the name lists several engine
// variants. ok is false when no token exists.
func Displacement(description string) (liters float64, ok bool) {
	m := displacementRe.FindString(description)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ElectricOverride reports whether the description carries the electric
// marker. When it does, the returned fuel type supersedes the label-based
// classification.
func ElectricOverride(description string) (model.FuelType, bool) {
	if strings.Contains(description, electricToken) {
		return model.FuelElectric, true
	}
	return "", false
}
