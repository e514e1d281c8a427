package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"vcon-insights/internal/logger"
)

const datasetSheet = "Sheet1"

// WriteXLSX replaces path with the full dataset as a one-sheet workbook.
// Cells keep native types (numbers, booleans) so the file aggregates
// correctly when opened in a spreadsheet.
func (d *Dataset) WriteXLSX(path string) error {
	log := logger.New().WithField("component", "dataset").WithField("path", path)

	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.name
	}
	if err := f.SetSheetRow(datasetSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range d.Records {
		row := NativeRow(&d.Records[i])
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(datasetSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()
	if err := f.Write(tmp); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	log.WithField("rows", len(d.Records)).Info("workbook written")
	return nil
}

// ReadXLSX loads the first sheet of a workbook back into typed records.
func ReadXLSX(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return fromRows(rows)
}
