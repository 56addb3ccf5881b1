package table

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/stuaninauts/fipe-cli/internal/model"
)

// Header is the fixed column contract of the canonical table artifact.
var Header = []string{
	"ano_ref", "mes_ref", "ano_fab", "marca", "modelo",
	"combustivel", "codigo_fipe", "valor", "cambio", "tam_motor",
}

// Save writes the table to path as a semicolon-delimited file. The output
// is deterministic: re-running an unchanged ETL run reproduces the artifact
// byte for byte.
func (t *Table) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "table: create %s", path)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	w.Comma = ';'

	if err := w.Write(Header); err != nil {
		return eris.Wrap(err, "table: write header")
	}
	for _, r := range t.records {
		displacement := ""
		if r.HasDisplacement {
			displacement = strconv.FormatFloat(r.Displacement, 'f', 1, 64)
		}
		row := []string{
			strconv.Itoa(r.RefYear),
			strconv.Itoa(r.RefMonth),
			strconv.Itoa(r.ManufactureYear),
			r.Brand,
			r.Model,
			string(r.Fuel),
			strconv.Itoa(r.FipeCode),
			strconv.FormatFloat(r.Price, 'f', 2, 64),
			string(r.Transmission),
			displacement,
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "table: write row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "table: flush")
	}
	return nil
}

// Load reads a canonical table artifact previously written by Save.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "table: open %s", path)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = len(Header)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "table: read %s", path)
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("table: %s is empty", path)
	}

	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return New(records), nil
}

func parseRow(row []string) (model.Record, error) {
	var rec model.Record
	var err error

	if rec.RefYear, err = strconv.Atoi(row[0]); err != nil {
		return rec, eris.Wrapf(err, "table: ano_ref %q", row[0])
	}
	if rec.RefMonth, err = strconv.Atoi(row[1]); err != nil {
		return rec, eris.Wrapf(err, "table: mes_ref %q", row[1])
	}
	if rec.ManufactureYear, err = strconv.Atoi(row[2]); err != nil {
		return rec, eris.Wrapf(err, "table: ano_fab %q", row[2])
	}
	rec.Brand = row[3]
	rec.Model = row[4]
	rec.Fuel = model.FuelType(row[5])
	if rec.FipeCode, err = strconv.Atoi(row[6]); err != nil {
		return rec, eris.Wrapf(err, "table: codigo_fipe %q", row[6])
	}
	if rec.Price, err = strconv.ParseFloat(row[7], 64); err != nil {
		return rec, eris.Wrapf(err, "table: valor %q", row[7])
	}
	rec.Transmission = model.Transmission(row[8])
	if row[9] != "" {
		if rec.Displacement, err = strconv.ParseFloat(row[9], 64); err != nil {
			return rec, eris.Wrapf(err, "table: tam_motor %q", row[9])
		}
		rec.HasDisplacement = true
	}
	return rec, nil
}
