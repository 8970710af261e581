package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"fintrack-server/src/ledger"
)

func TestStatusForLedgerError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ledger.ErrNotOwner, http.StatusForbidden},
		// A foreign account and a missing account are indistinguishable.
		{ledger.ErrAccountNotFound, http.StatusForbidden},
		{ledger.ErrTransactionNotFound, http.StatusNotFound},
		{ledger.ErrInsufficientFunds, http.StatusBadRequest},
		{ledger.ErrDuplicateTransaction, http.StatusBadRequest},
		{ledger.ErrMissingField, http.StatusBadRequest},
		{ledger.ErrInvalidType, http.StatusBadRequest},
	}

	for _, tc := range cases {
		status, ok := statusForLedgerError(tc.err)
		assert.True(t, ok, tc.err.Error())
		assert.Equal(t, tc.status, status, tc.err.Error())
	}

	_, ok := statusForLedgerError(errors.New("connection refused"))
	assert.False(t, ok)
}
