package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stuaninauts/fipe-cli/internal/ingest"
	"github.com/stuaninauts/fipe-cli/internal/store"
)

var (
	ingestDir string
	ingestOut string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Merge per-period extracts into the canonical table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		dir := ingestDir
		if dir == "" {
			dir = cfg.Data.SourceDir
		}
		out := ingestOut
		if out == "" {
			out = cfg.Data.DatabasePath
		}

		journal, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer journal.Close()
		if err := journal.Migrate(ctx); err != nil {
			return err
		}

		run, err := journal.BeginRun(ctx, dir)
		if err != nil {
			return err
		}

		tbl, stats, err := ingest.Run(ctx, dir, ingest.Options{Latin1: cfg.Data.Latin1})
		if err != nil {
			if ferr := journal.FailRun(ctx, run.ID, err.Error()); ferr != nil {
				zap.L().Warn("journal update failed", zap.Error(ferr))
			}
			return err
		}

		if err := tbl.Save(out); err != nil {
			if ferr := journal.FailRun(ctx, run.ID, err.Error()); ferr != nil {
				zap.L().Warn("journal update failed", zap.Error(ferr))
			}
			return eris.Wrap(err, "save canonical table")
		}

		if err := journal.CompleteRun(ctx, run.ID, stats.Files, stats.Rows); err != nil {
			return err
		}

		zap.L().Info("ingest complete",
			zap.String("run_id", run.ID),
			zap.String("source_dir", dir),
			zap.String("out", out),
			zap.Int("files", stats.Files),
			zap.Int("rows", stats.Rows),
		)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "source directory (default from config)")
	ingestCmd.Flags().StringVar(&ingestOut, "out", "", "canonical table path (default from config)")
	rootCmd.AddCommand(ingestCmd)
}
