// Package dataset is the interchange layer: it assembles enriched records
// into one table with a fixed column order and writes/reads it as CSV or
// XLSX. The written file is the sole contract between the enrichment run and
// every downstream consumer, so writes replace the target wholesale and go
// through a temp file plus atomic rename.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vcon-insights/internal/logger"
	"vcon-insights/internal/types"
)

// Dataset is an ordered batch of enriched records. Row order is fixed at
// assembly time and preserved by write/read.
type Dataset struct {
	Records []types.EnrichedRecord
}

// Assemble copies the records into a dataset. The caller's slice is not
// retained.
func Assemble(records []types.EnrichedRecord) *Dataset {
	out := make([]types.EnrichedRecord, len(records))
	copy(out, records)
	return &Dataset{Records: out}
}

// Write persists the dataset at path, choosing the format from the
// extension: .xlsx writes a workbook, anything else CSV.
func (d *Dataset) Write(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return d.WriteXLSX(path)
	}
	return d.WriteCSV(path)
}

// Read loads a dataset written by Write, dispatching on extension the same
// way.
func Read(path string) (*Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path)
	}
	return ReadCSV(path)
}

// WriteCSV replaces path with the full dataset as CSV.
func (d *Dataset) WriteCSV(path string) error {
	log := logger.New().WithField("component", "dataset").WithField("path", path)

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(columns))
	for i := range d.Records {
		for j, col := range columns {
			row[j] = cellText(col.extract(&d.Records[i]))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	log.WithField("rows", len(d.Records)).Info("dataset written")
	return nil
}

// ReadCSV loads a CSV interchange file back into typed records. Columns are
// located by header name, so column order and unknown extra columns do not
// matter on the way in. Cells absent from a short row keep the zero value;
// cells that fail to parse fail the load.
func ReadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return fromRows(rows)
}

// fromRows builds records out of a header row plus data rows. Shared by the
// CSV and XLSX readers.
func fromRows(rows [][]string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no header row")
	}
	index := headerIndex(rows[0])
	if _, ok := index["conversation_id"]; !ok {
		return nil, fmt.Errorf("unrecognized header: conversation_id column missing")
	}

	records := make([]types.EnrichedRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		var rec types.EnrichedRecord
		for _, col := range columns {
			idx, ok := index[col.name]
			if !ok || idx >= len(row) {
				continue
			}
			if err := col.assign(&rec, row[idx]); err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", i+2, col.name, err)
			}
		}
		records = append(records, rec)
	}
	return &Dataset{Records: records}, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	return index
}
