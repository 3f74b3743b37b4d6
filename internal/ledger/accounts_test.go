package ledger

import (
	"context"
	"errors"
	"testing"
)

func TestCreateAndGetAccount(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()

	account, err := CreateAccount(ctx, database, "0xalice", "hash")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if account.Address != "0xalice" || account.Balance != 0 {
		t.Errorf("unexpected account: %+v", account)
	}

	missing, err := GetAccount(ctx, database, "0xnobody")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown account, got %+v", missing)
	}
}

func TestCreateAccountDuplicate(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()

	CreateAccount(ctx, database, "0xalice", "hash")
	_, err := CreateAccount(ctx, database, "0xalice", "other")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for duplicate address, got %v", err)
	}
}

func TestDepositRequiresAdmin(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()

	err := Deposit(ctx, database, "0xmallory", "0xmallory", 100)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if err := Deposit(ctx, database, deployer, "0xbuyer", 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for zero deposit, got %v", err)
	}
}

func TestDepositCreatesBareAccount(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()

	// Depositing to an address that never registered creates a bare account
	// holding the funds.
	if err := Deposit(ctx, database, deployer, "0xfresh", 50); err != nil {
		t.Fatalf("Deposit: %v", err)
	}

	account, _ := GetAccount(ctx, database, "0xfresh")
	if account == nil || account.Balance != 50 {
		t.Errorf("expected bare account with balance 50, got %+v", account)
	}
	if account.PasswordHash != "" {
		t.Errorf("bare account must have no credentials, got %q", account.PasswordHash)
	}
}

func TestListEventsFiltering(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()
	storeID, itemID := market(t, database)
	other, _ := CreateStore(ctx, database, "Other", "0xseller")

	PurchaseItem(ctx, database, storeID, itemID, 1, 10, "0xbuyer")

	all, err := ListEvents(ctx, database, 0, "")
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	// StoreCreated x2, ItemAdded, ItemSold.
	if len(all) != 4 {
		t.Errorf("expected 4 events, got %d", len(all))
	}
	// Newest first.
	if all[0].Type != "ItemSold" {
		t.Errorf("expected ItemSold first, got %q", all[0].Type)
	}

	byStore, _ := ListEvents(ctx, database, other.ID, "")
	if len(byStore) != 1 || byStore[0].Type != "StoreCreated" {
		t.Errorf("expected only the other store's creation event, got %v", byStore)
	}
}
