package engine

import (
	"sort"

	"github.com/stuaninauts/fipe-cli/internal/model"
	"github.com/stuaninauts/fipe-cli/internal/table"
)

// History returns the price trajectory of one exact model name and
// manufacture year across reference years, averaged per year and ordered
// chronologically. An empty series means the model never appears.
func History(t *table.Table, modelName string, manufactureYear int) []model.HistoryPoint {
	type agg struct {
		sum   float64
		count int
	}
	byYear := make(map[int]*agg)

	for _, rec := range t.Records() {
		if rec.Model != modelName || rec.ManufactureYear != manufactureYear {
			continue
		}
		a, ok := byYear[rec.RefYear]
		if !ok {
			a = &agg{}
			byYear[rec.RefYear] = a
		}
		a.sum += rec.Price
		a.count++
	}

	points := make([]model.HistoryPoint, 0, len(byYear))
	for year, a := range byYear {
		points = append(points, model.HistoryPoint{
			RefYear:   year,
			MeanPrice: a.sum / float64(a.count),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].RefYear < points[j].RefYear })
	return points
}
