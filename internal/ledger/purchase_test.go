package ledger

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

// market seeds the full purchase fixture: a store owner with one storefront,
// one item (price 10, quantity 5), and a funded buyer. Returns store and item
// ids.
func market(t *testing.T, database *sql.DB) (storeID, itemID int64) {
	t.Helper()
	ctx := context.Background()
	storeID = sellerStore(t, database)
	item, err := AddItem(ctx, database, storeID, "Widget", 10, 5, "0xseller")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := Deposit(ctx, database, deployer, "0xbuyer", 100); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	return storeID, item.ID
}

func TestPurchaseAndWithdrawScenario(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()
	storeID, itemID := market(t, database)

	if err := PurchaseItem(ctx, database, storeID, itemID, 2, 20, "0xbuyer"); err != nil {
		t.Fatalf("PurchaseItem: %v", err)
	}

	item, _ := GetItem(ctx, database, itemID)
	if item.Quantity != 3 {
		t.Errorf("expected quantity 3 after buying 2, got %d", item.Quantity)
	}

	store, _ := GetStorefront(ctx, database, storeID)
	if store.Balance != 20 {
		t.Errorf("expected storefront balance 20, got %d", store.Balance)
	}

	buyer, _ := GetAccount(ctx, database, "0xbuyer")
	if buyer.Balance != 80 {
		t.Errorf("expected buyer balance 80, got %d", buyer.Balance)
	}

	amount, err := WithdrawBalance(ctx, database, storeID, "0xseller")
	if err != nil {
		t.Fatalf("WithdrawBalance: %v", err)
	}
	if amount != 20 {
		t.Errorf("expected withdrawal of 20, got %d", amount)
	}

	store, _ = GetStorefront(ctx, database, storeID)
	if store.Balance != 0 {
		t.Errorf("expected storefront balance reset to 0, got %d", store.Balance)
	}

	seller, _ := GetAccount(ctx, database, "0xseller")
	if seller == nil || seller.Balance != 20 {
		t.Errorf("expected seller credited with 20, got %+v", seller)
	}
}

func TestPurchaseExhaustsStock(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()
	storeID, itemID := market(t, database)

	// Quantity is 5: six unit purchases must yield five successes and one
	// InsufficientStock failure, in any order.
	var stockErrs int
	for range 6 {
		err := PurchaseItem(ctx, database, storeID, itemID, 1, 10, "0xbuyer")
		if errors.Is(err, ErrInsufficientStock) {
			stockErrs++
		} else if err != nil {
			t.Fatalf("PurchaseItem: %v", err)
		}
	}
	if stockErrs != 1 {
		t.Errorf("expected exactly 1 InsufficientStock failure, got %d", stockErrs)
	}

	item, _ := GetItem(ctx, database, itemID)
	if item.Quantity != 0 {
		t.Errorf("expected final quantity 0, got %d", item.Quantity)
	}
	// Exhausted items stay listed so the owner can restock.
	if !item.Exists() {
		t.Error("expected exhausted item to remain listed")
	}

	store, _ := GetStorefront(ctx, database, storeID)
	if store.Balance != 50 {
		t.Errorf("expected storefront balance 50, got %d", store.Balance)
	}
}

func TestPurchaseConcurrentLastUnit(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()
	storeID, itemID := market(t, database)

	var wg sync.WaitGroup
	var successes, stockErrs atomic.Int64
	for range 6 {
		wg.Go(func() {
			err := PurchaseItem(ctx, database, storeID, itemID, 1, 10, "0xbuyer")
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrInsufficientStock):
				stockErrs.Add(1)
			default:
				t.Errorf("PurchaseItem: %v", err)
			}
		})
	}
	wg.Wait()

	if successes.Load() != 5 || stockErrs.Load() != 1 {
		t.Errorf("expected 5 successes and 1 stock failure, got %d and %d",
			successes.Load(), stockErrs.Load())
	}

	item, _ := GetItem(ctx, database, itemID)
	if item.Quantity != 0 {
		t.Errorf("expected final quantity 0, got %d", item.Quantity)
	}
}

func TestPurchaseInsufficientPayment(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()
	storeID, itemID := market(t, database)

	err := PurchaseItem(ctx, database, storeID, itemID, 2, 19, "0xbuyer")
	if !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("expected ErrInsufficientPayment, got %v", err)
	}

	// No partial debit of any kind.
	item, _ := GetItem(ctx, database, itemID)
	store, _ := GetStorefront(ctx, database, storeID)
	buyer, _ := GetAccount(ctx, database, "0xbuyer")
	if item.Quantity != 5 || store.Balance != 0 || buyer.Balance != 100 {
		t.Errorf("failed purchase must leave state unchanged: qty=%d bal=%d buyer=%d",
			item.Quantity, store.Balance, buyer.Balance)
	}
}

func TestPurchaseOverpaymentIsACap(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()
	storeID, itemID := market(t, database)

	// Tendering more than cost succeeds; only the cost moves.
	if err := PurchaseItem(ctx, database, storeID, itemID, 2, 50, "0xbuyer"); err != nil {
		t.Fatalf("PurchaseItem with excess tender: %v", err)
	}

	buyer, _ := GetAccount(ctx, database, "0xbuyer")
	if buyer.Balance != 80 {
		t.Errorf("expected buyer debited exactly 20, balance 80, got %d", buyer.Balance)
	}
	store, _ := GetStorefront(ctx, database, storeID)
	if store.Balance != 20 {
		t.Errorf("expected storefront credited exactly 20, got %d", store.Balance)
	}
}

func TestPurchaseBuyerCannotCoverCost(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()
	storeID, itemID := market(t, database)
	Deposit(ctx, database, deployer, "0xpoor", 5)

	err := PurchaseItem(ctx, database, storeID, itemID, 2, 20, "0xpoor")
	if !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("expected ErrInsufficientPayment for uncovered cost, got %v", err)
	}

	item, _ := GetItem(ctx, database, itemID)
	poor, _ := GetAccount(ctx, database, "0xpoor")
	if item.Quantity != 5 || poor.Balance != 5 {
		t.Errorf("failed purchase must leave state unchanged: qty=%d balance=%d",
			item.Quantity, poor.Balance)
	}
}

func TestPurchaseInvalidArguments(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()
	storeID, itemID := market(t, database)

	if err := PurchaseItem(ctx, database, storeID, itemID, 0, 10, "0xbuyer"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for zero quantity, got %v", err)
	}
	if err := PurchaseItem(ctx, database, storeID, 999, 1, 10, "0xbuyer"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown item, got %v", err)
	}
}

func TestPurchaseRecordsEvent(t *testing.T) {
	database := newLedgerDB(t)
	ctx := context.Background()
	storeID, itemID := market(t, database)

	PurchaseItem(ctx, database, storeID, itemID, 2, 20, "0xbuyer")

	events, err := ListEvents(ctx, database, storeID, "0xbuyer")
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 buyer event, got %d", len(events))
	}
	ev := events[0]
	if ev.Type != "ItemSold" || ev.ItemID != itemID || ev.Quantity != 2 || ev.Amount != 20 {
		t.Errorf("unexpected ItemSold event: %+v", ev)
	}
}
