// Package export serializes report rows to CSV and xlsx byte streams. It
// carries no ledger logic; rows arrive fully computed.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"fintrack-server/src/report"
)

const dateLayout = "2006-01-02"

var header = []string{"date", "account", "category", "type", "amount", "balance_accumulated", "year"}

func rowStrings(r report.Row) []string {
	date := ""
	if r.Date != nil {
		date = r.Date.Format(dateLayout)
	}
	return []string{
		date,
		r.Account,
		r.Category,
		r.Type,
		strconv.FormatFloat(r.Amount, 'f', 2, 64),
		strconv.FormatFloat(r.BalanceAccumulated, 'f', 2, 64),
		strconv.Itoa(r.Year),
	}
}

// ToCSV renders rows as a UTF-8 CSV document with a header line.
func ToCSV(rows []report.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(rowStrings(r)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ToExcel renders rows as a single-sheet xlsx workbook.
func ToExcel(rows []report.Row, sheetName string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return nil, fmt.Errorf("write header cell: %w", err)
		}
	}

	for i, r := range rows {
		values := []any{"", r.Account, r.Category, r.Type, r.Amount, r.BalanceAccumulated, r.Year}
		if r.Date != nil {
			values[0] = r.Date.Format(dateLayout)
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("write cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename builds the attachment name for an export download.
func Filename(reportType, format string, year int) string {
	ext := "csv"
	if format == "excel" {
		ext = "xlsx"
	}
	return fmt.Sprintf("%s_%d.%s", reportType, year, ext)
}
