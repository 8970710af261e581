package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fintrack-server/src/models"
)

func TestCheckLimitBoundary(t *testing.T) {
	// Spending the whole balance leaves exactly zero and passes.
	assert.NoError(t, CheckLimit(50, 50, models.TransactionTypeExpense))

	// One cent over fails.
	assert.ErrorIs(t, CheckLimit(50, 50.01, models.TransactionTypeExpense), ErrInsufficientFunds)
}

func TestCheckLimitIncomeAlwaysPasses(t *testing.T) {
	assert.NoError(t, CheckLimit(-500, 10, models.TransactionTypeIncome))
}

func TestCheckLimitFloatNoise(t *testing.T) {
	// 0.1+0.2 style residue must not reject an exact spend.
	assert.NoError(t, CheckLimit(0.3, 0.1+0.2, models.TransactionTypeExpense))
}

func TestValidateMutation(t *testing.T) {
	assert.NoError(t, ValidateMutation("Rent", 1200, models.TransactionTypeExpense))
	assert.ErrorIs(t, ValidateMutation("", 1200, models.TransactionTypeExpense), ErrMissingField)
	assert.ErrorIs(t, ValidateMutation("Rent", 0, models.TransactionTypeExpense), ErrMissingField)
	assert.ErrorIs(t, ValidateMutation("Rent", -5, models.TransactionTypeExpense), ErrMissingField)
	assert.ErrorIs(t, ValidateMutation("Rent", 1200, "TRANSFER"), ErrInvalidType)
}
