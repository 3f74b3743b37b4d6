package model

import (
	"fmt"
	"time"
)

// Account represents an identity known to the ledger. The address is the
// caller identifier every operation is authorized against; the balance is the
// account's withdrawable funds.
type Account struct {
	Address      string    `json:"address"`
	PasswordHash string    `json:"-"`
	Balance      int64     `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
}

// MaxAddressLen bounds account addresses.
const MaxAddressLen = 64

// ValidateAddress checks that an address is usable as an account identifier.
func ValidateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address must not be empty")
	}
	if len(address) > MaxAddressLen {
		return fmt.Errorf("address must be at most %d characters", MaxAddressLen)
	}
	return nil
}

// ValidatePassword checks password requirements for API credentials.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
