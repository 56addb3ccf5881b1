package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stuaninauts/fipe-cli/internal/lookup"
)

var plateCmd = &cobra.Command{
	Use:   "plate <plate>",
	Short: "Look up a license plate's models and manufacture year",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := lookup.NewClient(cfg.Lookup.BaseURL,
			lookup.WithUserAgent(cfg.Lookup.UserAgent),
			lookup.WithTimeout(time.Duration(cfg.Lookup.TimeoutSecs)*time.Second),
			lookup.WithRateLimit(cfg.Lookup.RequestsPerMinute),
		)

		info, err := client.Lookup(cmd.Context(), args[0])
		switch {
		case errors.Is(err, lookup.ErrNotFound):
			fmt.Println("placa não encontrada")
			return nil
		case errors.Is(err, lookup.ErrBadPlate):
			fmt.Println("digite a placa no formato ABC1234 ou ABC1D23")
			return nil
		case err != nil:
			return err
		}

		fmt.Printf("ano do modelo: %d\n", info.ManufactureYear)
		for _, m := range info.Models {
			fmt.Println(m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plateCmd)
}
