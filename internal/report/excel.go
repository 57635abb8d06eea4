package report

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yclin/bondwatch/internal/enrich"
)

// Column indexes (1-based) of the styled price/volume headers.
const (
	colReceivedPrice = 7
	colLatestVolume  = 12
)

// Writer renders the enriched dataset into workbook artifacts.
type Writer struct {
	outDir string
}

// NewWriter creates a report writer rooted at outDir.
func NewWriter(outDir string) *Writer {
	return &Writer{outDir: outDir}
}

// BaseName is the shared artifact name stem for a run date, e.g.
// fsc_convbond_20260824.
func BaseName(runDate time.Time) string {
	return fmt.Sprintf("fsc_convbond_%s", runDate.Format("20060102"))
}

// CSVPath is the filtered-filings CSV path for a run date.
func (w *Writer) CSVPath(runDate time.Time) string {
	return filepath.Join(w.outDir, BaseName(runDate)+".csv")
}

// WriteEnriched writes the unabridged enriched table as
// <base>_with_price.xlsx and returns its path.
func (w *Writer) WriteEnriched(runDate time.Time, rows []enrich.Row) (string, error) {
	path := filepath.Join(w.outDir, BaseName(runDate)+"_with_price.xlsx")
	if err := writeWorkbook(path, "Sheet1", rows); err != nil {
		return "", err
	}
	return path, nil
}

// WriteWindow writes the trailing window as <base>_last20.xlsx and
// returns its path.
func (w *Writer) WriteWindow(runDate time.Time, win enrich.Window) (string, error) {
	path := filepath.Join(w.outDir, BaseName(runDate)+"_last20.xlsx")
	if err := writeWorkbook(path, "last20", win.Rows); err != nil {
		return "", err
	}
	return path, nil
}

func writeWorkbook(path, sheet string, rows []enrich.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		f.SetSheetName("Sheet1", sheet)
	}

	headers := enrich.Headers
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	if err := styleHeaders(f, sheet); err != nil {
		return err
	}

	for i, row := range rows {
		cells := row.Cells()
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// styleHeaders reproduces the header styling of the original reports:
// received price white-on-blue, effective price black-on-yellow, latest
// price white-on-black, volume headers bold.
func styleHeaders(f *excelize.File, sheet string) error {
	type headerStyle struct {
		col       int
		fontColor string
		fill      string
	}

	styled := []headerStyle{
		{col: colReceivedPrice, fontColor: "FFFFFF", fill: "0000FF"},
		{col: colReceivedPrice + 1, fontColor: "000000", fill: "FFFF00"},
		{col: colReceivedPrice + 2, fontColor: "FFFFFF", fill: "000000"},
	}

	for _, hs := range styled {
		styleID, err := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: hs.fontColor},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hs.fill}},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return fmt.Errorf("failed to build header style: %w", err)
		}
		cell, err := excelize.CoordinatesToCellName(hs.col, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
			return err
		}
	}

	boldID, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to build header style: %w", err)
	}
	start, err := excelize.CoordinatesToCellName(colReceivedPrice+3, 1)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(colLatestVolume, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, boldID)
}
