package services

import "errors"

// Sentinel errors for the dispatch and settlement core. Callers discriminate
// with errors.Is; handlers map them to HTTP statuses.
var (
	// ErrValidation covers malformed or missing input: unknown profession,
	// bad coordinates, non-positive amounts, out-of-range ratings.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means the referenced order or account does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is the state machine guard failure: the order is
	// not in the status the operation requires. Losers of a concurrent
	// acceptance race see this.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnauthorized means the principal is not a party the operation allows.
	ErrUnauthorized = errors.New("not authorized")

	// ErrInsufficientFunds aborts a wallet-mode completion whose payer cannot
	// cover the amount. The order stays accepted; balances stay untouched.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConflict blocks account deletion while live orders reference it.
	ErrConflict = errors.New("conflicting live references")
)
