package ledger

import "errors"

// Expected business conditions are sentinel errors so callers can map each one
// to a transport status explicitly instead of string-matching.
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrNotOwner             = errors.New("account does not belong to user")
	ErrInsufficientFunds    = errors.New("insufficient funds for this transaction")
	ErrDuplicateTransaction = errors.New("duplicate transaction detected")
	ErrMissingField         = errors.New("missing required field")
	ErrInvalidType          = errors.New("invalid transaction type")
)
