package model

// Dimension selects the grouping key for a ranking.
type Dimension string

const (
	DimensionBrand Dimension = "marca"
	DimensionModel Dimension = "modelo"
)

// RankRequest is an immutable snapshot of every active filter and
// aggregation parameter. The same value is read by both the query engine
// and the title synthesizer so the two can never diverge.
//
// Sort and truncation compose as follows: groups are sorted by mean price
// in the requested direction, then the last Limit entries of the sorted
// sequence are kept. Ascending therefore surfaces the Limit most expensive
// groups, descending the Limit cheapest.
type RankRequest struct {
	RefYear         int
	ManufactureYear int
	Dimension       Dimension
	Ascending       bool

	// BrandFilter gates Brands. An active toggle with an empty set leaves
	// the table unfiltered.
	BrandFilter bool
	Brands      []string

	Fuels         []FuelType
	Transmissions []Transmission

	// DisplacementFilter gates the inclusive [Min, Max] range. An inverted
	// range (Min > Max) disables the filter rather than failing.
	DisplacementFilter bool
	DisplacementMin    float64
	DisplacementMax    float64

	// EngineTypeFilter gates EngineTypes (model-text substrings such as
	// cylinder tokens). Unlike BrandFilter, an active toggle with an empty
	// set matches nothing.
	EngineTypeFilter bool
	EngineTypes      []string

	Limit int
}

// DefaultRankRequest returns a request with every filter at its widest
// setting, mirroring the initial state of the interactive front end.
func DefaultRankRequest() RankRequest {
	return RankRequest{
		Dimension:     DimensionBrand,
		Fuels:         AllFuels(),
		Transmissions: AllTransmissions(),
		Limit:         10,
	}
}
