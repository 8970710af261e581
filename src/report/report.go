// Package report aggregates already-fetched, already-filtered transaction
// lists for the dashboard and export endpoints. Everything here is pure; the
// handlers own the queries.
package report

import (
	"sort"
	"time"

	"fintrack-server/src/ledger"
	"fintrack-server/src/models"
)

// OtherCategory buckets EXPENSE rows that carry no category.
const OtherCategory = "OTHER"

type Summary struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

type MonthBucket struct {
	Month   int     `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

type CategoryTotal struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type AccountShare struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Row is one line of a monthly/annual/category report, ready for JSON or
// CSV/xlsx serialization.
type Row struct {
	Date               *time.Time `json:"date"`
	Account            string     `json:"account"`
	Category           string     `json:"category"`
	Type               string     `json:"type"`
	Amount             float64    `json:"amount"`
	BalanceAccumulated float64    `json:"balance_accumulated"`
	Year               int        `json:"year"`
}

// Summarize totals income and expense over whatever subset was fetched.
func Summarize(transactions []models.Transaction) Summary {
	var s Summary
	for _, t := range transactions {
		switch t.Type {
		case models.TransactionTypeIncome:
			s.Income += t.Amount
		case models.TransactionTypeExpense:
			s.Expense += t.Amount
		}
	}
	s.Balance = s.Income - s.Expense
	return s
}

// BucketByMonth splits transactions into 12 calendar-month buckets. Each
// month's balance is income minus expense for that month alone; nothing
// carries over between months. The caller filters to a single year first.
func BucketByMonth(transactions []models.Transaction) []MonthBucket {
	buckets := make([]MonthBucket, 12)
	for i := range buckets {
		buckets[i].Month = i + 1
	}

	for _, t := range transactions {
		idx := int(t.Date.Month()) - 1
		switch t.Type {
		case models.TransactionTypeIncome:
			buckets[idx].Income += t.Amount
		case models.TransactionTypeExpense:
			buckets[idx].Expense += t.Amount
		}
		buckets[idx].Balance = buckets[idx].Income - buckets[idx].Expense
	}
	return buckets
}

// BucketByCategory totals EXPENSE transactions per category; rows without a
// category land in OTHER. Output is sorted by name so repeated calls over the
// same input agree.
func BucketByCategory(transactions []models.Transaction) []CategoryTotal {
	totals := make(map[string]float64)
	for _, t := range transactions {
		if t.Type != models.TransactionTypeExpense {
			continue
		}
		name := t.Category
		if name == "" {
			name = OtherCategory
		}
		totals[name] += t.Amount
	}

	out := make([]CategoryTotal, 0, len(totals))
	for name, value := range totals {
		out = append(out, CategoryTotal{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DistributionByAccount nets the signed amounts of the fetched transactions
// per account for pie/share views. Read-only: the accounts' cached balances
// are never touched here.
func DistributionByAccount(accounts []models.Account, transactions []models.Transaction) []AccountShare {
	byAccount := make(map[int64]float64)
	for _, t := range transactions {
		byAccount[t.AccountID] += ledger.SignedAmount(t)
	}

	shares := make([]AccountShare, 0, len(accounts))
	for _, acc := range accounts {
		shares = append(shares, AccountShare{Name: acc.Name, Value: byAccount[acc.ID]})
	}
	return shares
}

// BuildRows turns a transaction window into report rows with accumulated
// balances. accountNames maps account ids to display names; the accumulator
// starts at zero because reports are relative to the queried window.
func BuildRows(transactions []models.Transaction, accountNames map[int64]string, year int) []Row {
	entries := ledger.RunningBalance(transactions)
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		date := e.Transaction.Date
		rows = append(rows, Row{
			Date:               &date,
			Account:            accountNames[e.Transaction.AccountID],
			Category:           e.Transaction.Category,
			Type:               e.Transaction.Type,
			Amount:             e.Transaction.Amount,
			BalanceAccumulated: e.BalanceAfter,
			Year:               year,
		})
	}
	return rows
}

// CategoryRows converts category totals into export rows. Category reports
// have no per-row date or running balance, so those stay zero-valued.
func CategoryRows(totals []CategoryTotal, year int) []Row {
	rows := make([]Row, 0, len(totals))
	for _, c := range totals {
		rows = append(rows, Row{
			Category: c.Name,
			Type:     models.TransactionTypeExpense,
			Amount:   c.Value,
			Year:     year,
		})
	}
	return rows
}
