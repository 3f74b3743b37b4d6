package ledger

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"testing"

	"github.com/arilsson/marketplace/internal/db"
)

// deployer is the genesis administrator used throughout the ledger tests.
const deployer = "0xdeployer"

// newLedgerDB returns a fresh database with the deployer seeded as admin.
func newLedgerDB(t *testing.T) *sql.DB {
	t.Helper()
	database := db.NewTestDB(t)
	if err := BootstrapAdmin(context.Background(), database, deployer); err != nil {
		t.Fatalf("BootstrapAdmin: %v", err)
	}
	return database
}

func TestGenesisAdmin(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()

	ok, err := IsAdmin(ctx, database, deployer)
	if err != nil {
		t.Fatalf("IsAdmin: %v", err)
	}
	if !ok {
		t.Error("expected deployer to be an administrator from genesis")
	}
}

func TestAddAndRemoveAdmin(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()

	if err := AddAdmin(ctx, database, deployer, "0xalice"); err != nil {
		t.Fatalf("AddAdmin: %v", err)
	}
	if ok, _ := IsAdmin(ctx, database, "0xalice"); !ok {
		t.Error("expected alice to be an admin after AddAdmin")
	}

	if err := RemoveAdmin(ctx, database, deployer, "0xalice"); err != nil {
		t.Fatalf("RemoveAdmin: %v", err)
	}
	if ok, _ := IsAdmin(ctx, database, "0xalice"); ok {
		t.Error("expected alice to no longer be an admin after RemoveAdmin")
	}
}

func TestAddAdminIdempotent(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()

	AddAdmin(ctx, database, deployer, "0xalice")
	if err := AddAdmin(ctx, database, deployer, "0xalice"); err != nil {
		t.Fatalf("second AddAdmin: %v", err)
	}

	admins, err := ListAdmins(ctx, database)
	if err != nil {
		t.Fatalf("ListAdmins: %v", err)
	}
	if !slices.Equal(admins, []string{deployer, "0xalice"}) {
		t.Errorf("expected [deployer alice], got %v", admins)
	}
}

func TestAddAdminUnauthorized(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()

	err := AddAdmin(ctx, database, "0xmallory", "0xalice")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if ok, _ := IsAdmin(ctx, database, "0xalice"); ok {
		t.Error("unauthorized grant must not change membership")
	}
}

func TestRemoveLastAdminRefused(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()

	err := RemoveAdmin(ctx, database, deployer, deployer)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument removing last admin, got %v", err)
	}
	if ok, _ := IsAdmin(ctx, database, deployer); !ok {
		t.Error("deployer must remain admin after refused removal")
	}

	// With a second admin in place, self-removal is allowed.
	AddAdmin(ctx, database, deployer, "0xalice")
	if err := RemoveAdmin(ctx, database, deployer, deployer); err != nil {
		t.Fatalf("self-removal with a second admin: %v", err)
	}
	if ok, _ := IsAdmin(ctx, database, deployer); ok {
		t.Error("expected deployer removed")
	}
}

func TestRemoveAdminNonMemberNoop(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()

	if err := RemoveAdmin(ctx, database, deployer, "0xnobody"); err != nil {
		t.Fatalf("removing non-member should be a no-op, got %v", err)
	}
}

func TestStoreOwnerGrantRevoke(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()

	if err := AddStoreOwner(ctx, database, deployer, "0xseller"); err != nil {
		t.Fatalf("AddStoreOwner: %v", err)
	}
	if ok, _ := IsStoreOwner(ctx, database, "0xseller"); !ok {
		t.Error("expected seller to hold the store-owner role")
	}

	if err := RemoveStoreOwner(ctx, database, deployer, "0xseller"); err != nil {
		t.Fatalf("RemoveStoreOwner: %v", err)
	}
	if ok, _ := IsStoreOwner(ctx, database, "0xseller"); ok {
		t.Error("expected store-owner role revoked")
	}

	err := AddStoreOwner(ctx, database, "0xseller", "0xother")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-admin grant, got %v", err)
	}
}

func TestListOrderAfterReAdd(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()

	AddAdmin(ctx, database, deployer, "0xalice")
	AddAdmin(ctx, database, deployer, "0xbob")
	RemoveAdmin(ctx, database, deployer, "0xalice")
	AddAdmin(ctx, database, deployer, "0xalice")

	admins, err := ListAdmins(ctx, database)
	if err != nil {
		t.Fatalf("ListAdmins: %v", err)
	}
	want := []string{deployer, "0xbob", "0xalice"}
	if !slices.Equal(admins, want) {
		t.Errorf("expected %v, got %v", want, admins)
	}
}

func TestRevokedOwnerKeepsStorefronts(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()

	AddStoreOwner(ctx, database, deployer, "0xseller")
	store, err := CreateStore(ctx, database, "Shop", "0xseller")
	if err != nil {
		t.Fatalf("CreateStore: %v", err)
	}

	RemoveStoreOwner(ctx, database, deployer, "0xseller")

	// Existing storefront survives the revocation.
	got, _ := GetStorefront(ctx, database, store.ID)
	if !got.Exists() || got.Owner != "0xseller" {
		t.Errorf("expected storefront to survive revocation, got %+v", got)
	}

	// But no new storefronts can be created.
	_, err = CreateStore(ctx, database, "Another", "0xseller")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after revocation, got %v", err)
	}
}
