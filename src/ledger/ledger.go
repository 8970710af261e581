// Package ledger holds the pure balance arithmetic shared by the SQL mutation
// path and the report builders: signed amounts, the balance fold, and
// running-balance sequences. It performs no I/O.
package ledger

import (
	"sort"

	"fintrack-server/src/models"
)

// SignedAmount is +amount for INCOME and -amount for EXPENSE.
func SignedAmount(t models.Transaction) float64 {
	if t.Type == models.TransactionTypeIncome {
		return t.Amount
	}
	return -t.Amount
}

// Balance folds the signed amounts of all transactions, starting from zero.
// This is the authoritative derivation of an account's cached balance.
func Balance(transactions []models.Transaction) float64 {
	var total float64
	for _, t := range transactions {
		total += SignedAmount(t)
	}
	return total
}

// ApplyDelta shifts a known-correct cached balance by one new transaction.
// Only equivalent to a full recompute when the caller holds the account lock,
// which the SQL mutation path guarantees.
func ApplyDelta(balance, amount float64, txnType string) float64 {
	if txnType == models.TransactionTypeIncome {
		return balance + amount
	}
	return balance - amount
}

// Entry pairs a transaction with the accumulated balance after applying it.
type Entry struct {
	Transaction  models.Transaction
	BalanceAfter float64
}

// RunningBalance orders transactions by date ascending (id breaks ties, so the
// sequence is deterministic) and folds signed amounts from a zero accumulator.
// Reports are scoped to the queried window, not the account's lifetime balance,
// hence the zero start. The input slice is not modified.
func RunningBalance(transactions []models.Transaction) []Entry {
	sorted := make([]models.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	entries := make([]Entry, 0, len(sorted))
	var accum float64
	for _, t := range sorted {
		accum += SignedAmount(t)
		entries = append(entries, Entry{Transaction: t, BalanceAfter: accum})
	}
	return entries
}
