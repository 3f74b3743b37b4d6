package model

import "time"

// Event is one entry in the append-only ledger event log. Events are recorded
// in the same transaction as the mutation they describe, so the log never
// shows an event for a change that did not commit.
type Event struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	StorefrontID int64     `json:"storefront_id,omitempty"`
	ItemID       int64     `json:"item_id,omitempty"`
	Account      string    `json:"account,omitempty"`
	Quantity     int64     `json:"quantity,omitempty"`
	Amount       int64     `json:"amount,omitempty"`
	Name         string    `json:"name,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Event types.
const (
	EventStoreCreated     = "StoreCreated"
	EventStoreRemoved     = "StoreRemoved"
	EventItemAdded        = "ItemAdded"
	EventItemSold         = "ItemSold"
	EventBalanceWithdrawn = "BalanceWithdrawn"
)
