package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound means the referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrPositionNotFound means the account holds nothing in the symbol.
	// Liquidated positions are removed, so a zero holding reads as not found.
	ErrPositionNotFound = errors.New("position not found")

	// ErrUsernameTaken means an account with that username already exists.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInsufficientFunds rejects a buy whose cost exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientHoldings rejects a sell of more than the account holds.
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	// ErrStorageUnavailable means the durable store could not be initialized.
	// Raised only at startup; the selector downgrades to the transient store.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrTransactionFailed means a commit failed mid-flight and was rolled
	// back. No partial state persists, so the identical trade may be retried.
	ErrTransactionFailed = errors.New("transaction failed")
)

// ValidationError rejects malformed trade input before any state is read.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
