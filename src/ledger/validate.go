package ledger

import "fintrack-server/src/models"

// epsilon absorbs float64 noise so that spending the exact balance passes the
// funds check.
const epsilon = 1e-9

// CheckLimit fails with ErrInsufficientFunds when an EXPENSE would push the
// balance below zero. INCOME always passes. The caller must pass the balance
// read inside the same locked transaction that will apply the mutation.
func CheckLimit(balance, amount float64, txnType string) error {
	if txnType != models.TransactionTypeExpense {
		return nil
	}
	if balance-amount < -epsilon {
		return ErrInsufficientFunds
	}
	return nil
}

// ValidateMutation gates the fields every create/update must carry.
func ValidateMutation(description string, amount float64, txnType string) error {
	if description == "" {
		return ErrMissingField
	}
	if amount <= 0 {
		return ErrMissingField
	}
	if !models.ValidTransactionType(txnType) {
		return ErrInvalidType
	}
	return nil
}
