package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/yclin/bondwatch/internal/filing"
)

// utf8BOM makes Excel open the CSV as UTF-8 instead of guessing a legacy
// codepage for the Chinese headers.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// filteredHeaders is the column subset kept for the filtered-filings CSV.
var filteredHeaders = []string{
	"證券代號", "公司型態", "結案類型", "公司名稱", "收文日期", "生效日期",
}

// WriteFilteredCSV writes the filtered filing records to path.
func WriteFilteredCSV(path string, records []filing.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(filteredHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Code,
			rec.CompanyType,
			rec.ClosureType,
			rec.CompanyName,
			rec.ReceivedRaw,
			rec.EffectiveRaw,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
