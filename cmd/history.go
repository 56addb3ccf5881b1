package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stuaninauts/fipe-cli/internal/engine"
	"github.com/stuaninauts/fipe-cli/internal/table"
)

var (
	historyModel   string
	historyFabYear int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a model's price trajectory across reference years",
	RunE: func(_ *cobra.Command, _ []string) error {
		tbl, err := table.Load(cfg.Data.DatabasePath)
		if err != nil {
			return err
		}

		points := engine.History(tbl, historyModel, historyFabYear)
		if len(points) == 0 {
			fmt.Printf("nenhum registro para %q fabricado em %d\n", historyModel, historyFabYear)
			return nil
		}

		fmt.Printf("%s (fab. %d)\n", historyModel, historyFabYear)
		for _, p := range points {
			fmt.Printf("%d  R$ %.2f\n", p.RefYear, p.MeanPrice)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyModel, "model", "", "exact model name (required)")
	historyCmd.Flags().IntVar(&historyFabYear, "fab-year", 0, "manufacture year (required)")
	_ = historyCmd.MarkFlagRequired("model")
	_ = historyCmd.MarkFlagRequired("fab-year")
	rootCmd.AddCommand(historyCmd)
}
