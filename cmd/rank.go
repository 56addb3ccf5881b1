package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/stuaninauts/fipe-cli/internal/engine"
	"github.com/stuaninauts/fipe-cli/internal/export"
	"github.com/stuaninauts/fipe-cli/internal/model"
	"github.com/stuaninauts/fipe-cli/internal/table"
)

var (
	rankRefYear         int
	rankFabYear         int
	rankDimension       string
	rankOrder           string
	rankLimit           int
	rankFuels           []string
	rankTransmissions   []string
	rankBrands          []string
	rankDisplacementMin float64
	rankDisplacementMax float64
	rankEngineTypes     []string
	rankCSVOut          string
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank brands or models by mean price",
	RunE: func(cmd *cobra.Command, _ []string) error {
		req, err := buildRankRequest(cmd)
		if err != nil {
			return err
		}

		tbl, err := table.Load(cfg.Data.DatabasePath)
		if err != nil {
			return err
		}

		result := engine.Rank(tbl, req)
		title := engine.Describe(req)

		fmt.Println(title)
		for _, g := range result {
			fmt.Printf("%-45s R$ %.2f\n", g.Key, g.MeanPrice)
		}
		if len(result) == 0 {
			fmt.Println("(nenhum resultado)")
		}

		if rankCSVOut != "" {
			exporter := export.New(time.Duration(cfg.Export.DelayMillis) * time.Millisecond)
			data, err := exporter.RankingCSV(cmd.Context(), result, req.Dimension)
			if err != nil {
				return err
			}
			if err := os.WriteFile(rankCSVOut, data, 0o644); err != nil {
				return eris.Wrapf(err, "write %s", rankCSVOut)
			}
		}
		return nil
	},
}

// buildRankRequest translates flags into the immutable request shared by
// the engine and the title synthesizer. Range and substring toggles turn
// on only when their flags were given, matching the front end's hidden
// sub-controls.
func buildRankRequest(cmd *cobra.Command) (model.RankRequest, error) {
	req := model.DefaultRankRequest()
	req.RefYear = rankRefYear
	req.ManufactureYear = rankFabYear
	req.Ascending = rankOrder == "asc"
	if rankLimit > 0 {
		req.Limit = rankLimit
	} else {
		req.Limit = cfg.Engine.DefaultLimit
	}

	switch rankDimension {
	case "marca":
		req.Dimension = model.DimensionBrand
	case "modelo":
		req.Dimension = model.DimensionModel
	default:
		return req, eris.Errorf("invalid dimension %q (marca or modelo)", rankDimension)
	}

	if req.ManufactureYear > req.RefYear {
		return req, eris.Errorf("fab-year %d cannot exceed ref-year %d", rankFabYear, rankRefYear)
	}

	if cmd.Flags().Changed("fuels") {
		req.Fuels = nil
		for _, f := range rankFuels {
			req.Fuels = append(req.Fuels, model.FuelType(f))
		}
	}
	if cmd.Flags().Changed("transmissions") {
		req.Transmissions = nil
		for _, t := range rankTransmissions {
			req.Transmissions = append(req.Transmissions, model.Transmission(t))
		}
	}
	if cmd.Flags().Changed("brands") {
		req.BrandFilter = true
		req.Brands = rankBrands
	}
	if cmd.Flags().Changed("displacement-min") || cmd.Flags().Changed("displacement-max") {
		req.DisplacementFilter = true
		req.DisplacementMin = rankDisplacementMin
		req.DisplacementMax = rankDisplacementMax
	}
	if cmd.Flags().Changed("engine-types") {
		req.EngineTypeFilter = true
		req.EngineTypes = rankEngineTypes
	}
	return req, nil
}

func init() {
	rankCmd.Flags().IntVar(&rankRefYear, "ref-year", 0, "reference year (required)")
	rankCmd.Flags().IntVar(&rankFabYear, "fab-year", 0, "manufacture year (required)")
	rankCmd.Flags().StringVar(&rankDimension, "dimension", "marca", "analysis dimension: marca or modelo")
	rankCmd.Flags().StringVar(&rankOrder, "order", "desc", "sort direction: desc surfaces the cheapest, asc the most expensive")
	rankCmd.Flags().IntVar(&rankLimit, "limit", 0, "result count limit (default from config)")
	rankCmd.Flags().StringSliceVar(&rankFuels, "fuels", nil, "fuel subset (g,a,d,e)")
	rankCmd.Flags().StringSliceVar(&rankTransmissions, "transmissions", nil, "transmission subset (m,a)")
	rankCmd.Flags().StringSliceVar(&rankBrands, "brands", nil, "brand subset (substring match)")
	rankCmd.Flags().Float64Var(&rankDisplacementMin, "displacement-min", 0, "minimum engine size in liters")
	rankCmd.Flags().Float64Var(&rankDisplacementMax, "displacement-max", 0, "maximum engine size in liters")
	rankCmd.Flags().StringSliceVar(&rankEngineTypes, "engine-types", nil, "model-text substrings such as V12,V8")
	rankCmd.Flags().StringVar(&rankCSVOut, "csv", "", "also export the ranking to this CSV path")
	_ = rankCmd.MarkFlagRequired("ref-year")
	_ = rankCmd.MarkFlagRequired("fab-year")
	rootCmd.AddCommand(rankCmd)
}
