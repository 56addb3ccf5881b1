// Package table holds the canonical price table: the single merged, typed
// dataset produced by an ETL run. The table is built once, written to a flat
// semicolon-delimited artifact, and read-only for the life of a serving
// session, so it is safely shared across recomputations without locking.
package table

import "github.com/stuaninauts/fipe-cli/internal/model"

// Table is an ordered, immutable collection of records. Order is the
// insertion order of the merged source files and carries no meaning;
// duplicate rows across batches are preserved as-is.
type Table struct {
	records []model.Record
}

// New builds a table over records. The caller must not mutate the slice
// afterward.
func New(records []model.Record) *Table {
	return &Table{records: records}
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Records exposes the underlying rows for read-only iteration.
func (t *Table) Records() []model.Record {
	return t.records
}
