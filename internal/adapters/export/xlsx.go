package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/lorrc/repair-desk/internal/core/domain"
)

// WriteReportXLSX writes a workbook with one sheet per report view. Counts
// and hours are numeric cells; the header row is bold.
func WriteReportXLSX(w io.Writer, r domain.SLAReport) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i, t := range reportTables(r) {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, t.title); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.title); err != nil {
			return fmt.Errorf("add sheet %q: %w", t.title, err)
		}

		header := make([]any, len(t.header))
		for k, h := range t.header {
			header[k] = h
		}
		if err := writeRow(f, t.title, 1, header); err != nil {
			return err
		}
		if err := f.SetRowStyle(t.title, 1, 1, headerStyle); err != nil {
			return fmt.Errorf("style %s header: %w", t.title, err)
		}
		for j, row := range t.rows {
			if err := writeRow(f, t.title, j+2, row); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
