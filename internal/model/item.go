package model

import (
	"fmt"
	"time"
)

// Item is a purchasable unit within a storefront. A zero ID means the item
// does not exist or has been removed (same sentinel convention as storefronts).
type Item struct {
	ID           int64     `json:"id"`
	StorefrontID int64     `json:"storefront_id"`
	Name         string    `json:"name"`
	Price        int64     `json:"price"`
	Quantity     int64     `json:"quantity"`
	PhotoMime    string    `json:"photo_mime,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

// Exists reports whether the record refers to a live item.
func (i Item) Exists() bool {
	return i.ID != 0
}

// MaxNameLen bounds storefront and item names. The on-disk format has no hard
// limit; this keeps listings short enough to render anywhere.
const MaxNameLen = 64

// ValidateName checks a storefront or item name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("name must be at most %d characters", MaxNameLen)
	}
	return nil
}
