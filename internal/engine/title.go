package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stuaninauts/fipe-cli/internal/model"
)

// Describe renders a Portuguese one-line description of a ranking request:
// the analysis dimension, the price direction, the manufacture year, a
// clause per filter that is narrower than its default, and the reference
// year. It reads the same RankRequest fields Rank reads, step for step, so
// the title can never contradict the computed result.
func Describe(req model.RankRequest) string {
	var dimension, gender string
	if req.Dimension == model.DimensionModel {
		dimension = "Modelos"
		gender = "o"
	} else {
		dimension = "Marcas"
		gender = "a"
	}

	direction := fmt.Sprintf("mais barat%ss", gender)
	if req.Ascending {
		direction = fmt.Sprintf("mais car%ss", gender)
	}

	var clauses []string

	if len(req.Fuels) < len(model.AllFuels()) {
		labels := make([]string, 0, len(req.Fuels))
		for _, f := range req.Fuels {
			labels = append(labels, strings.ToLower(f.Label()))
		}
		clauses = append(clauses, "com tipo de combustível: "+strings.Join(labels, ", "))
	}

	if len(req.Transmissions) < len(model.AllTransmissions()) && len(req.Transmissions) > 0 {
		clauses = append(clauses, "com câmbio "+strings.ToLower(req.Transmissions[0].Label()))
	}

	if req.DisplacementFilter {
		clauses = append(clauses, fmt.Sprintf("com tamanho do motor de %s a %s",
			formatLiters(req.DisplacementMin), formatLiters(req.DisplacementMax)))
	}

	if req.EngineTypeFilter {
		engines := strings.Join(req.EngineTypes, ", ")
		if len(req.EngineTypes) == 0 {
			engines = "qualquer"
		}
		clauses = append(clauses, "com motor "+engines)
	}

	if req.BrandFilter && len(req.Brands) > 0 {
		clauses = append(clauses, "das marcas: "+strings.Join(req.Brands, ", "))
	}

	filters := ""
	if len(clauses) > 0 {
		filters = ", " + strings.Join(clauses, ", ")
	}

	return fmt.Sprintf("%s %s fabricad%ss em %d%s (ref. %d)",
		dimension, direction, gender, req.ManufactureYear, filters, req.RefYear)
}

func formatLiters(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
