package model

// RankedGroup is one group of a ranking: the brand or model name and the
// arithmetic mean price of its surviving rows.
type RankedGroup struct {
	Key       string  `json:"key"`
	MeanPrice float64 `json:"mean_price"`
}

// RankedResult is an ordered ranking, at most the requested limit long.
// An empty result is a valid, renderable state, not a failure.
type RankedResult []RankedGroup

// HistoryPoint is one reference-period sample of a model's price history.
type HistoryPoint struct {
	RefYear   int     `json:"ref_year"`
	MeanPrice float64 `json:"mean_price"`
}

// PlateInfo is the result of a license-plate lookup: the candidate model
// names registered under the plate and the vehicle's manufacture year.
// It is returned explicitly from the lookup call and threaded through
// subsequent queries; there is no shared scratch state.
type PlateInfo struct {
	Models          []string `json:"models"`
	ManufactureYear int      `json:"manufacture_year"`
}
