package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack-server/src/models"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestSignedAmount(t *testing.T) {
	income := models.Transaction{Amount: 42.5, Type: models.TransactionTypeIncome}
	expense := models.Transaction{Amount: 42.5, Type: models.TransactionTypeExpense}

	assert.Equal(t, 42.5, SignedAmount(income))
	assert.Equal(t, -42.5, SignedAmount(expense))
}

func TestBalanceFold(t *testing.T) {
	transactions := []models.Transaction{
		{Amount: 100, Type: models.TransactionTypeIncome},
		{Amount: 30, Type: models.TransactionTypeExpense},
		{Amount: 10, Type: models.TransactionTypeIncome},
	}

	assert.InDelta(t, 80, Balance(transactions), 1e-9)
	// Idempotent: same input, same result.
	assert.Equal(t, Balance(transactions), Balance(transactions))
	assert.Zero(t, Balance(nil))
}

func TestRunningBalance(t *testing.T) {
	transactions := []models.Transaction{
		{ID: 3, Amount: 10, Type: models.TransactionTypeIncome, Date: day(3)},
		{ID: 1, Amount: 100, Type: models.TransactionTypeIncome, Date: day(1)},
		{ID: 2, Amount: 30, Type: models.TransactionTypeExpense, Date: day(2)},
	}

	entries := RunningBalance(transactions)
	require.Len(t, entries, 3)

	assert.InDelta(t, 100, entries[0].BalanceAfter, 1e-9)
	assert.InDelta(t, 70, entries[1].BalanceAfter, 1e-9)
	assert.InDelta(t, 80, entries[2].BalanceAfter, 1e-9)

	// Input order must not matter and the input must not be reordered.
	assert.Equal(t, int64(3), transactions[0].ID)
}

func TestRunningBalanceDateTiesFallBackToID(t *testing.T) {
	transactions := []models.Transaction{
		{ID: 9, Amount: 5, Type: models.TransactionTypeExpense, Date: day(1)},
		{ID: 2, Amount: 20, Type: models.TransactionTypeIncome, Date: day(1)},
	}

	entries := RunningBalance(transactions)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(2), entries[0].Transaction.ID)
	assert.InDelta(t, 20, entries[0].BalanceAfter, 1e-9)
	assert.InDelta(t, 15, entries[1].BalanceAfter, 1e-9)
}

func TestRunningBalanceRestartable(t *testing.T) {
	transactions := []models.Transaction{
		{ID: 1, Amount: 100, Type: models.TransactionTypeIncome, Date: day(1)},
		{ID: 2, Amount: 40, Type: models.TransactionTypeExpense, Date: day(2)},
	}

	first := RunningBalance(transactions)
	second := RunningBalance(transactions)
	assert.Equal(t, first, second)
}

// Random create/update/delete sequences: the cached balance maintained through
// ApplyDelta on create plus a full recompute on update/delete must always equal
// the full fold over the surviving transactions.
func TestCachedBalanceInvariantUnderRandomMutations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	var (
		transactions []models.Transaction
		cached       float64
		nextID       int64 = 1
	)

	randomTxn := func() models.Transaction {
		txnType := models.TransactionTypeIncome
		if rng.Intn(2) == 0 {
			txnType = models.TransactionTypeExpense
		}
		txn := models.Transaction{
			ID:     nextID,
			Amount: float64(rng.Intn(10000)+1) / 100,
			Type:   txnType,
			Date:   day(rng.Intn(28) + 1),
		}
		nextID++
		return txn
	}

	for i := 0; i < 500; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(transactions) == 0: // create
			txn := randomTxn()
			if err := CheckLimit(cached, txn.Amount, txn.Type); err != nil {
				require.ErrorIs(t, err, ErrInsufficientFunds)
				break
			}
			transactions = append(transactions, txn)
			cached = ApplyDelta(cached, txn.Amount, txn.Type)
		case op == 1: // update in place, then recompute
			idx := rng.Intn(len(transactions))
			replacement := randomTxn()
			replacement.ID = transactions[idx].ID
			transactions[idx] = replacement
			cached = Balance(transactions)
		default: // delete, then recompute
			idx := rng.Intn(len(transactions))
			transactions = append(transactions[:idx], transactions[idx+1:]...)
			cached = Balance(transactions)
		}

		require.InDelta(t, Balance(transactions), cached, 1e-6,
			"cached balance diverged after %d operations", i+1)
	}
}
