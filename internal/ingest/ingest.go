// Package ingest merges a directory of per-period FIPE extracts into the
// canonical price table. A run is all-or-nothing: any unreadable or
// malformed source file aborts the whole batch and no partial table is
// produced.
package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/stuaninauts/fipe-cli/internal/extract"
	"github.com/stuaninauts/fipe-cli/internal/model"
	"github.com/stuaninauts/fipe-cli/internal/normalize"
	"github.com/stuaninauts/fipe-cli/internal/table"
)

// ErrIngestion marks a fatal ETL failure: the run aborts and nothing is
// written.
var ErrIngestion = eris.New("ingest: run failed")

// manifestName is the scrape manifest dropped next to the extracts. Never
// a data file.
const manifestName = "ref.json"

// errorMarker flags extracts the scraper could not complete. Matched
// case-insensitively anywhere in the file name.
const errorMarker = "erro"

// sourceHeader is the fixed column contract of a per-period extract.
var sourceHeader = []string{
	"ano_ref", "mes_ref", "ano_fab", "marca", "modelo",
	"combustivel", "codigo_fipe", "valor",
}

// parseConcurrency bounds how many extracts are parsed at once.
const parseConcurrency = 4

// Options configures a run.
type Options struct {
	// Latin1 decodes source files from ISO 8859-1 before parsing, the
	// encoding older Windows-produced extracts ship in.
	Latin1 bool
}

// Stats summarizes a completed run.
type Stats struct {
	Files int
	Rows  int
}

// Run lists dir, discards error-flagged extracts and the manifest, parses
// every remaining file, and concatenates the typed rows in file-listing
// order. Per-file parsing runs concurrently but the concatenation order is
// fixed, so repeated runs over an unchanged directory yield identical
// tables.
func Run(ctx context.Context, dir string, opts Options) (*table.Table, Stats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, Stats{}, eris.Wrapf(ErrIngestion, "read dir %s: %v", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == manifestName {
			continue
		}
		if strings.Contains(strings.ToLower(name), errorMarker) {
			zap.L().Debug("skipping error-flagged extract", zap.String("file", name))
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, Stats{}, eris.Wrapf(ErrIngestion, "no source files in %s", dir)
	}

	parsed := make([][]model.Record, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parseConcurrency)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, err := parseFile(filepath.Join(dir, name), opts)
			if err != nil {
				return eris.Wrapf(err, "file %s", name)
			}
			parsed[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, eris.Wrapf(ErrIngestion, "%v", err)
	}

	var records []model.Record
	for _, rows := range parsed {
		records = append(records, rows...)
	}

	zap.L().Info("ingestion complete",
		zap.Int("files", len(names)),
		zap.Int("rows", len(records)),
	)
	return table.New(records), Stats{Files: len(names), Rows: len(records)}, nil
}

func parseFile(path string, opts Options) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	var reader io.Reader = f
	if opts.Latin1 {
		reader = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}

	r := csv.NewReader(reader)
	r.Comma = ';'
	r.FieldsPerRecord = len(sourceHeader)

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrap(err, "read header")
	}
	col, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []model.Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "read row")
		}
		rec, err := transformRow(row, col)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, want := range sourceHeader {
		if _, ok := col[want]; !ok {
			return nil, eris.Errorf("missing column %q", want)
		}
	}
	return col, nil
}

// transformRow applies the normalizers and feature extractors to one raw
// source row.
func transformRow(row []string, col map[string]int) (model.Record, error) {
	var rec model.Record
	var err error

	if rec.RefYear, err = strconv.Atoi(row[col["ano_ref"]]); err != nil {
		return rec, eris.Wrapf(normalize.ErrFormat, "ano_ref %q", row[col["ano_ref"]])
	}
	if rec.RefMonth, err = normalize.Month(row[col["mes_ref"]]); err != nil {
		return rec, err
	}
	if rec.ManufactureYear, err = strconv.Atoi(row[col["ano_fab"]]); err != nil {
		return rec, eris.Wrapf(normalize.ErrFormat, "ano_fab %q", row[col["ano_fab"]])
	}
	rec.Brand = row[col["marca"]]
	rec.Model = row[col["modelo"]]

	rec.Fuel = normalize.FuelLabel(row[col["combustivel"]])
	if fuel, ok := extract.ElectricOverride(rec.Model); ok {
		rec.Fuel = fuel
	}

	if rec.FipeCode, err = normalize.FipeCode(row[col["codigo_fipe"]]); err != nil {
		return rec, err
	}
	if rec.Price, err = normalize.Currency(row[col["valor"]]); err != nil {
		return rec, err
	}

	rec.Transmission = extract.Transmission(rec.Model)
	rec.Displacement, rec.HasDisplacement = extract.Displacement(rec.Model)
	return rec, nil
}
