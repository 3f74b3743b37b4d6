package model

import "time"

// Storefront is a named shop owned by one store owner. A zero ID means the
// storefront does not exist or has been removed; lookups return the zero
// record rather than an error for that case.
type Storefront struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Exists reports whether the record refers to a live storefront.
func (s Storefront) Exists() bool {
	return s.ID != 0
}
