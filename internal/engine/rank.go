// Package engine computes ranked, filtered, aggregated views over the
// canonical price table. Everything here is a pure function of the table
// and a RankRequest; an empty filtered set degrades to an empty result
// rather than erroring.
package engine

import (
	"sort"
	"strings"

	"github.com/stuaninauts/fipe-cli/internal/model"
	"github.com/stuaninauts/fipe-cli/internal/table"
)

// Rank applies the request's filters, groups the survivors by the analysis
// dimension, averages prices per group, sorts by mean price, and keeps the
// tail of the sorted sequence. Ascending order therefore surfaces the
// Limit most expensive groups (ordered ascending), descending the Limit
// cheapest. Ties keep first-appearance order via the stable sort.
func Rank(t *table.Table, req model.RankRequest) model.RankedResult {
	type agg struct {
		sum   float64
		count int
	}
	sums := make(map[string]*agg)
	var order []string

	for _, rec := range t.Records() {
		if !matches(rec, req) {
			continue
		}
		key := rec.Brand
		if req.Dimension == model.DimensionModel {
			key = rec.Model
		}
		a, ok := sums[key]
		if !ok {
			a = &agg{}
			sums[key] = a
			order = append(order, key)
		}
		a.sum += rec.Price
		a.count++
	}

	groups := make(model.RankedResult, 0, len(order))
	for _, key := range order {
		a := sums[key]
		groups = append(groups, model.RankedGroup{
			Key:       key,
			MeanPrice: a.sum / float64(a.count),
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if req.Ascending {
			return groups[i].MeanPrice < groups[j].MeanPrice
		}
		return groups[i].MeanPrice > groups[j].MeanPrice
	})

	// Truncation takes the tail so it composes with the sort direction.
	if req.Limit > 0 && len(groups) > req.Limit {
		groups = groups[len(groups)-req.Limit:]
	}
	return groups
}

// matches applies the filter steps in their contractual order. All of them
// commute, so a single pass per record is equivalent.
func matches(rec model.Record, req model.RankRequest) bool {
	// Brand subset: an active toggle with an empty set is permissive.
	if req.BrandFilter && len(req.Brands) > 0 && !containsAny(rec.Brand, req.Brands) {
		return false
	}
	if rec.RefYear != req.RefYear {
		return false
	}
	if rec.ManufactureYear != req.ManufactureYear {
		return false
	}
	if !fuelIn(rec.Fuel, req.Fuels) {
		return false
	}
	if !transmissionIn(rec.Transmission, req.Transmissions) {
		return false
	}
	// Inverted bounds disable the range filter entirely. When the range is
	// applied, rows without a displacement are excluded.
	if req.DisplacementFilter && req.DisplacementMin <= req.DisplacementMax {
		if !rec.HasDisplacement {
			return false
		}
		if rec.Displacement < req.DisplacementMin || rec.Displacement > req.DisplacementMax {
			return false
		}
	}
	// Engine-type subset: an active toggle with an empty set excludes
	// every row, unlike the brand subset above.
	if req.EngineTypeFilter && !containsAny(rec.Model, req.EngineTypes) {
		return false
	}
	return true
}

func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

func fuelIn(f model.FuelType, set []model.FuelType) bool {
	for _, s := range set {
		if f == s {
			return true
		}
	}
	return false
}

func transmissionIn(tr model.Transmission, set []model.Transmission) bool {
	for _, s := range set {
		if tr == s {
			return true
		}
	}
	return false
}
