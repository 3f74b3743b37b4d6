package ledger

import "errors"

// The failure kinds every mutating operation resolves to. Callers match with
// errors.Is; the wrapped message carries the detail.
var (
	// ErrUnauthorized means the caller lacks the required role or does not
	// own the entity being mutated.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means a referenced storefront or item does not exist or
	// was removed. Read operations never return it; they return the zero
	// record instead.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock means the item holds fewer units than requested.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInsufficientPayment means the tendered value does not cover the
	// cost, or the buyer's account cannot be debited for it.
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrInvalidArgument means a request parameter is unusable, such as an
	// empty name or a zero purchase quantity.
	ErrInvalidArgument = errors.New("invalid argument")
)
