package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack-server/src/models"
)

func on(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 12, 0, 0, 0, time.UTC)
}

func TestSummarize(t *testing.T) {
	transactions := []models.Transaction{
		{Amount: 1000, Type: models.TransactionTypeIncome, Date: on(time.January, 5)},
		{Amount: 250, Type: models.TransactionTypeExpense, Date: on(time.January, 10)},
		{Amount: 50, Type: models.TransactionTypeExpense, Date: on(time.January, 20)},
	}

	s := Summarize(transactions)
	assert.InDelta(t, 1000, s.Income, 1e-9)
	assert.InDelta(t, 300, s.Expense, 1e-9)
	assert.InDelta(t, 700, s.Balance, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestBucketByMonthNoCarryOver(t *testing.T) {
	transactions := []models.Transaction{
		{Amount: 1000, Type: models.TransactionTypeIncome, Date: on(time.January, 15)},
		{Amount: 1000, Type: models.TransactionTypeExpense, Date: on(time.February, 15)},
	}

	buckets := BucketByMonth(transactions)
	require.Len(t, buckets, 12)

	assert.Equal(t, 1, buckets[0].Month)
	assert.InDelta(t, 1000, buckets[0].Balance, 1e-9)

	// February does not inherit January's surplus.
	assert.Equal(t, 2, buckets[1].Month)
	assert.InDelta(t, -1000, buckets[1].Balance, 1e-9)

	assert.Zero(t, buckets[2].Income)
	assert.Zero(t, buckets[2].Expense)
	assert.Zero(t, buckets[2].Balance)
}

func TestBucketByCategory(t *testing.T) {
	transactions := []models.Transaction{
		{Amount: 50, Type: models.TransactionTypeExpense, Category: "FOOD"},
		{Amount: 30, Type: models.TransactionTypeExpense, Category: "FOOD"},
		{Amount: 20, Type: models.TransactionTypeExpense},
		{Amount: 900, Type: models.TransactionTypeIncome, Category: "SALARY"},
	}

	totals := BucketByCategory(transactions)
	require.Len(t, totals, 2)

	byName := map[string]float64{}
	for _, c := range totals {
		byName[c.Name] = c.Value
	}
	assert.InDelta(t, 80, byName["FOOD"], 1e-9)
	assert.InDelta(t, 20, byName[OtherCategory], 1e-9)
}

func TestBucketByCategoryStableOrder(t *testing.T) {
	transactions := []models.Transaction{
		{Amount: 1, Type: models.TransactionTypeExpense, Category: "B"},
		{Amount: 1, Type: models.TransactionTypeExpense, Category: "A"},
	}

	assert.Equal(t, BucketByCategory(transactions), BucketByCategory(transactions))
}

func TestDistributionByAccount(t *testing.T) {
	accounts := []models.Account{
		{ID: 1, Name: "Checking", Balance: 999},
		{ID: 2, Name: "Savings", Balance: 999},
	}
	transactions := []models.Transaction{
		{AccountID: 1, Amount: 100, Type: models.TransactionTypeIncome},
		{AccountID: 1, Amount: 40, Type: models.TransactionTypeExpense},
		{AccountID: 2, Amount: 10, Type: models.TransactionTypeIncome},
	}

	shares := DistributionByAccount(accounts, transactions)
	require.Len(t, shares, 2)
	assert.Equal(t, "Checking", shares[0].Name)
	assert.InDelta(t, 60, shares[0].Value, 1e-9)
	assert.InDelta(t, 10, shares[1].Value, 1e-9)

	// Read-only view: the cached balances must be untouched.
	assert.Equal(t, float64(999), accounts[0].Balance)
	assert.Equal(t, float64(999), accounts[1].Balance)
}

func TestDistributionIncludesAccountsWithoutTransactions(t *testing.T) {
	accounts := []models.Account{{ID: 7, Name: "Empty"}}
	shares := DistributionByAccount(accounts, nil)
	require.Len(t, shares, 1)
	assert.Zero(t, shares[0].Value)
}

func TestBuildRows(t *testing.T) {
	transactions := []models.Transaction{
		{ID: 2, AccountID: 1, Amount: 30, Type: models.TransactionTypeExpense, Category: "FOOD", Date: on(time.March, 2)},
		{ID: 1, AccountID: 1, Amount: 100, Type: models.TransactionTypeIncome, Category: "SALARY", Date: on(time.March, 1)},
	}
	names := map[int64]string{1: "Checking"}

	rows := BuildRows(transactions, names, 2025)
	require.Len(t, rows, 2)

	assert.Equal(t, "Checking", rows[0].Account)
	assert.InDelta(t, 100, rows[0].BalanceAccumulated, 1e-9)
	assert.InDelta(t, 70, rows[1].BalanceAccumulated, 1e-9)
	assert.Equal(t, 2025, rows[1].Year)
	require.NotNil(t, rows[0].Date)
	assert.Equal(t, on(time.March, 1), *rows[0].Date)
}

func TestCategoryRows(t *testing.T) {
	rows := CategoryRows([]CategoryTotal{{Name: "FOOD", Value: 80}}, 2025)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Date)
	assert.Equal(t, models.TransactionTypeExpense, rows[0].Type)
	assert.InDelta(t, 80, rows[0].Amount, 1e-9)
	assert.Zero(t, rows[0].BalanceAccumulated)
}
