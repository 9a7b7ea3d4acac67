package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet excelize creates in a new workbook.
const defaultSheet = "Sheet1"

// XLSXWriter implements TableWriter by writing a workbook to a file.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter creates a writer that replaces the workbook at path on every Write.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// Path returns the workbook location.
func (w *XLSXWriter) Path() string { return w.path }

func (w *XLSXWriter) Write(_ context.Context, tables []Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for _, t := range tables {
		if _, err := f.NewSheet(t.Sheet); err != nil {
			return fmt.Errorf("creating sheet %s: %w", t.Sheet, err)
		}
		for r, row := range t.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(t.Sheet, cell, &row); err != nil {
				return fmt.Errorf("writing %s row %d: %w", t.Sheet, r+1, err)
			}
		}
		if err := f.SetPanes(t.Sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return fmt.Errorf("freezing %s header: %w", t.Sheet, err)
		}
	}

	if len(tables) > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("removing default sheet: %w", err)
		}
		if idx, err := f.GetSheetIndex(tables[0].Sheet); err == nil {
			f.SetActiveSheet(idx)
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving %s: %w", w.path, err)
	}
	return nil
}
