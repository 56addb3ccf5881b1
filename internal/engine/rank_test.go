package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuaninauts/fipe-cli/internal/model"
	"github.com/stuaninauts/fipe-cli/internal/table"
)

func row(brand, modelName string, price float64, opts ...func(*model.Record)) model.Record {
	r := model.Record{
		RefYear: 2023, RefMonth: 1, ManufactureYear: 2023,
		Brand: brand, Model: modelName,
		Fuel: model.FuelGasoline, Price: price,
		Transmission: model.TransmissionManual,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func withFuel(f model.FuelType) func(*model.Record) {
	return func(r *model.Record) { r.Fuel = f }
}

func withTransmission(tr model.Transmission) func(*model.Record) {
	return func(r *model.Record) { r.Transmission = tr }
}

func withDisplacement(v float64) func(*model.Record) {
	return func(r *model.Record) { r.Displacement = v; r.HasDisplacement = true }
}

func withYears(ref, fab int) func(*model.Record) {
	return func(r *model.Record) { r.RefYear = ref; r.ManufactureYear = fab }
}

func baseRequest() model.RankRequest {
	req := model.DefaultRankRequest()
	req.RefYear = 2023
	req.ManufactureYear = 2023
	return req
}

func TestRank_GroupMeans(t *testing.T) {
	tbl := table.New([]model.Record{
		row("A", "A 1", 100),
		row("A", "A 2", 300),
		row("B", "B 1", 200),
	})
	req := baseRequest()
	req.Limit = 10

	got := Rank(tbl, req)
	require.Len(t, got, 2)
	means := map[string]float64{got[0].Key: got[0].MeanPrice, got[1].Key: got[1].MeanPrice}
	assert.Equal(t, map[string]float64{"A": 200, "B": 200}, means)
}

func TestRank_TieBreakIsDeterministic(t *testing.T) {
	tbl := table.New([]model.Record{
		row("A", "A 1", 100),
		row("A", "A 2", 300),
		row("B", "B 1", 200),
	})
	req := baseRequest()
	req.Ascending = false
	req.Limit = 1

	// Equal means keep first-appearance order through the stable sort
	// (A then B); tail-1 of that sequence is always B.
	for i := 0; i < 5; i++ {
		got := Rank(tbl, req)
		require.Len(t, got, 1)
		assert.Equal(t, "B", got[0].Key)
	}
}

func TestRank_TruncationTakesTail(t *testing.T) {
	tbl := table.New([]model.Record{
		row("A", "A 1", 100),
		row("B", "B 1", 200),
		row("C", "C 1", 300),
		row("D", "D 1", 400),
	})

	// Ascending + tail-N surfaces the N most expensive, still ascending.
	req := baseRequest()
	req.Ascending = true
	req.Limit = 2
	got := Rank(tbl, req)
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].Key)
	assert.Equal(t, "D", got[1].Key)

	// Descending + tail-N surfaces the N cheapest, still descending.
	req.Ascending = false
	got = Rank(tbl, req)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Key)
	assert.Equal(t, "A", got[1].Key)
}

func TestRank_YearFilters(t *testing.T) {
	tbl := table.New([]model.Record{
		row("A", "A 1", 100),
		row("A", "A old", 999, withYears(2022, 2022)),
		row("A", "A older", 999, withYears(2023, 2020)),
	})
	req := baseRequest()

	got := Rank(tbl, req)
	require.Len(t, got, 1)
	assert.Equal(t, 100.0, got[0].MeanPrice)
}

func TestRank_FuelAndTransmissionSubsets(t *testing.T) {
	tbl := table.New([]model.Record{
		row("A", "A gas", 100),
		row("A", "A diesel", 200, withFuel(model.FuelDiesel)),
		row("B", "B aut", 300, withTransmission(model.TransmissionAutomatic)),
	})

	req := baseRequest()
	req.Fuels = []model.FuelType{model.FuelDiesel}
	got := Rank(tbl, req)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Key)
	assert.Equal(t, 200.0, got[0].MeanPrice)

	req = baseRequest()
	req.Transmissions = []model.Transmission{model.TransmissionAutomatic}
	got = Rank(tbl, req)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Key)
}

func TestRank_DisplacementRange(t *testing.T) {
	tbl := table.New([]model.Record{
		row("A", "A 1.0", 100, withDisplacement(1.0)),
		row("B", "B 2.0", 200, withDisplacement(2.0)),
		row("C", "C no engine token", 300),
	})

	req := baseRequest()
	req.DisplacementFilter = true
	req.DisplacementMin = 1.5
	req.DisplacementMax = 3.0
	got := Rank(tbl, req)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Key)
}

func TestRank_InvertedRangeIsNoOp(t *testing.T) {
	tbl := table.New([]model.Record{
		row("A", "A 1.0", 100, withDisplacement(1.0)),
		row("B", "B 2.0", 200, withDisplacement(2.0)),
	})

	req := baseRequest()
	req.DisplacementFilter = true
	req.DisplacementMin = 2.0
	req.DisplacementMax = 1.0

	// min > max leaves the set unfiltered at that step.
	got := Rank(tbl, req)
	assert.Len(t, got, 2)
}

func TestRank_EngineTypeSubset(t *testing.T) {
	tbl := table.New([]model.Record{
		row("A", "A V8 5.0", 100),
		row("B", "B V12 6.0", 200),
		row("C", "C 1.0", 300),
	})

	req := baseRequest()
	req.EngineTypeFilter = true
	req.EngineTypes = []string{"V8", "V12"}
	got := Rank(tbl, req)
	assert.Len(t, got, 2)
}

func TestRank_EngineTypeToggleWithEmptySetExcludesAll(t *testing.T) {
	tbl := table.New([]model.Record{
		row("A", "A V8 5.0", 100),
		row("B", "B 1.0", 200),
	})

	req := baseRequest()
	req.EngineTypeFilter = true
	req.EngineTypes = nil

	// Unlike the brand subset, this toggle fails closed on an empty set.
	got := Rank(tbl, req)
	assert.Empty(t, got)
}

func TestRank_BrandToggleWithEmptySetIsPermissive(t *testing.T) {
	tbl := table.New([]model.Record{
		row("A", "A 1", 100),
		row("B", "B 1", 200),
	})

	req := baseRequest()
	req.BrandFilter = true
	req.Brands = nil
	got := Rank(tbl, req)
	assert.Len(t, got, 2)
}

func TestRank_BrandSubstringMembership(t *testing.T) {
	tbl := table.New([]model.Record{
		row("GM - Chevrolet", "Onix 1.0", 100),
		row("Fiat", "Uno 1.0", 200),
		row("Ford", "Ka 1.0", 300),
	})

	req := baseRequest()
	req.BrandFilter = true
	req.Brands = []string{"Chevrolet", "Fiat"}
	got := Rank(tbl, req)
	assert.Len(t, got, 2)
}

func TestRank_GroupByModel(t *testing.T) {
	tbl := table.New([]model.Record{
		row("A", "Modelo X", 100),
		row("A", "Modelo X", 300),
		row("A", "Modelo Y", 500),
	})

	req := baseRequest()
	req.Dimension = model.DimensionModel
	req.Ascending = false
	got := Rank(tbl, req)
	require.Len(t, got, 2)
	assert.Equal(t, model.RankedGroup{Key: "Modelo Y", MeanPrice: 500}, got[0])
	assert.Equal(t, model.RankedGroup{Key: "Modelo X", MeanPrice: 200}, got[1])
}

func TestRank_EmptyResultIsValid(t *testing.T) {
	tbl := table.New([]model.Record{row("A", "A 1", 100)})
	req := baseRequest()
	req.RefYear = 1999
	req.ManufactureYear = 1999

	assert.Empty(t, Rank(tbl, req))
}

func TestHistory(t *testing.T) {
	tbl := table.New([]model.Record{
		row("A", "Modelo X", 110, withYears(2022, 2020)),
		row("A", "Modelo X", 90, withYears(2021, 2020)),
		row("A", "Modelo X", 100, withYears(2021, 2020)),
		row("A", "Modelo X", 500, withYears(2021, 2019)), // other fab year
		row("A", "Modelo Y", 500, withYears(2021, 2020)), // other model
	})

	points := History(tbl, "Modelo X", 2020)
	require.Len(t, points, 2)
	assert.Equal(t, model.HistoryPoint{RefYear: 2021, MeanPrice: 95}, points[0])
	assert.Equal(t, model.HistoryPoint{RefYear: 2022, MeanPrice: 110}, points[1])
}

func TestHistory_ExactModelNameOnly(t *testing.T) {
	tbl := table.New([]model.Record{
		row("A", "Modelo X Turbo", 100, withYears(2021, 2020)),
	})
	assert.Empty(t, History(tbl, "Modelo X", 2020))
}
