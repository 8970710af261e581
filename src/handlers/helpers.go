package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack-server/src/ledger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusForLedgerError maps ledger sentinel errors to transport statuses.
// Ownership failures answer 403 uniformly — a missing account and someone
// else's account are indistinguishable to the caller.
func statusForLedgerError(err error) (int, bool) {
	switch {
	case errors.Is(err, ledger.ErrNotOwner), errors.Is(err, ledger.ErrAccountNotFound):
		return http.StatusForbidden, true
	case errors.Is(err, ledger.ErrTransactionNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrDuplicateTransaction),
		errors.Is(err, ledger.ErrMissingField),
		errors.Is(err, ledger.ErrInvalidType):
		return http.StatusBadRequest, true
	}
	return 0, false
}
