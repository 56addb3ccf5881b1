// Package export serializes query results into downloadable artifacts.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/stuaninauts/fipe-cli/internal/model"
)

// Exporter produces downloadable bytes after a fixed throttle delay.
type Exporter struct {
	delay time.Duration
}

// New creates an Exporter with the given throttle delay.
func New(delay time.Duration) *Exporter {
	return &Exporter{delay: delay}
}

// RankingCSV renders a ranked result as a semicolon-delimited CSV. The
// first column is named after the analysis dimension.
func (e *Exporter) RankingCSV(ctx context.Context, result model.RankedResult, dim model.Dimension) ([]byte, error) {
	if err := e.throttle(ctx); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write([]string{string(dim), "valor_medio"}); err != nil {
		return nil, eris.Wrap(err, "export: write header")
	}
	for _, g := range result {
		row := []string{g.Key, strconv.FormatFloat(g.MeanPrice, 'f', 2, 64)}
		if err := w.Write(row); err != nil {
			return nil, eris.Wrap(err, "export: write row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "export: flush")
	}
	return buf.Bytes(), nil
}

func (e *Exporter) throttle(ctx context.Context) error {
	if e.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(e.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "export: canceled")
	case <-timer.C:
		return nil
	}
}
