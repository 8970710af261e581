package models

import "time"

const (
	AccountTypeCurrent    = "CURRENT"
	AccountTypeSavings    = "SAVINGS"
	AccountTypeInvestment = "INVESTMENT"
)

type Account struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	// Balance is a cached projection of the account's transaction log. It is
	// only ever written through the ledger mutation path.
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

func ValidAccountType(t string) bool {
	switch t {
	case AccountTypeCurrent, AccountTypeSavings, AccountTypeInvestment:
		return true
	}
	return false
}
