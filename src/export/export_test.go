package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fintrack-server/src/models"
	"fintrack-server/src/report"
)

func sampleRows() []report.Row {
	date := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	return []report.Row{
		{
			Date:               &date,
			Account:            "Checking",
			Category:           "RENT",
			Type:               models.TransactionTypeExpense,
			Amount:             1200,
			BalanceAccumulated: -1200,
			Year:               2025,
		},
		{
			Category: "FOOD",
			Type:     models.TransactionTypeExpense,
			Amount:   80.5,
			Year:     2025,
		},
	}
}

func TestToCSV(t *testing.T) {
	out, err := ToCSV(sampleRows())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"date", "account", "category", "type", "amount", "balance_accumulated", "year"}, records[0])
	assert.Equal(t, []string{"2025-01-05", "Checking", "RENT", "EXPENSE", "1200.00", "-1200.00", "2025"}, records[1])
	// Rows without a date serialize an empty date cell.
	assert.Equal(t, "", records[2][0])
	assert.Equal(t, "80.50", records[2][4])
}

func TestToExcel(t *testing.T) {
	out, err := ToExcel(sampleRows(), "monthly")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("monthly")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "date", rows[0][0])
	assert.Equal(t, "Checking", rows[1][1])
	assert.Equal(t, "RENT", rows[1][2])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "monthly_2025.csv", Filename("monthly", "csv", 2025))
	assert.Equal(t, "annual_2024.xlsx", Filename("annual", "excel", 2024))
}
