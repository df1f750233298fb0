// Package ledger implements the expense-splitting core: share validation,
// balance aggregation, and debt simplification. Everything here is a pure
// function over already-fetched data; persistence and transport live
// elsewhere.
package ledger

import "errors"

// Error kinds returned by the ledger core and the service layer on top of it.
// Callers classify failures with errors.Is; the HTTP layer maps each kind to
// a stable status code.
var (
	// ErrValidation indicates malformed input: bad amounts, missing
	// fields, share sums that do not match the total.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden indicates the requester lacks the required relationship
	// to the entity (not a member, not the creator).
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates a referenced group, expense, or split does not
	// exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a state-transition precondition failed, such
	// as marking an already-paid split or losing a concurrent mark-paid
	// race.
	ErrConflict = errors.New("conflict")
)
