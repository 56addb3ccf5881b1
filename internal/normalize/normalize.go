// Package normalize converts the locale-formatted scalar encodings found in
// FIPE price-table extracts into typed values. Every function here is pure;
// malformed input fails with ErrFormat rather than being coerced.
package normalize

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/stuaninauts/fipe-cli/internal/model"
)

// ErrFormat marks a malformed scalar. Fatal to the row; callers must not
// silently substitute a default.
var ErrFormat = eris.New("normalize: malformed value")

// Currency parses a Brazilian-formatted price such as "R$ 12.345,67" into
// 12345.67: the currency symbol and thousands separators are stripped and
// the comma decimal separator becomes a period.
func Currency(text string) (float64, error) {
	s := strings.ReplaceAll(text, "R$", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(ErrFormat, "currency %q", text)
	}
	return v, nil
}

var months = map[string]int{
	"janeiro":   1,
	"fevereiro": 2,
	"março":     3,
	"abril":     4,
	"maio":      5,
	"junho":     6,
	"julho":     7,
	"agosto":    8,
	"setembro":  9,
	"outubro":   10,
	"novembro":  11,
	"dezembro":  12,
}

// Month maps a lowercase Portuguese month name to its 1-12 integer.
// Unmapped names fail; there is no fallback month.
func Month(name string) (int, error) {
	m, ok := months[name]
	if !ok {
		return 0, eris.Wrapf(ErrFormat, "month %q", name)
	}
	return m, nil
}

// FipeCode parses a dash-segmented FIPE code such as "012345-7" into the
// integer 123457.
func FipeCode(text string) (int, error) {
	s := strings.ReplaceAll(text, "-", "")
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, eris.Wrapf(ErrFormat, "fipe code %q", text)
	}
	return v, nil
}

// FuelLabel maps a Portuguese fuel label to its single-letter code. Labels
// outside the known set pass through unchanged; validation happens
// downstream, after the electric override had its chance to apply.
func FuelLabel(label string) model.FuelType {
	switch label {
	case "Gasolina":
		return model.FuelGasoline
	case "Álcool":
		return model.FuelAlcohol
	case "Diesel":
		return model.FuelDiesel
	case "Elétrico":
		return model.FuelElectric
	default:
		return model.FuelType(label)
	}
}
