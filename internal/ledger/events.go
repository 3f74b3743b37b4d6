package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/arilsson/marketplace/internal/model"
)

// appendEvent records an event inside the caller's transaction so the log
// commits or aborts together with the mutation it describes.
func appendEvent(ctx context.Context, q DBTX, ev model.Event) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO events (id, type, storefront_id, item_id, account, quantity, amount, name)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), ev.Type, ev.StorefrontID, ev.ItemID, ev.Account, ev.Quantity, ev.Amount, ev.Name,
	)
	if err != nil {
		return fmt.Errorf("recording %s event: %w", ev.Type, err)
	}
	return nil
}

// ListEvents returns recorded events, newest first, optionally filtered by
// storefront and/or account.
func ListEvents(ctx context.Context, db *sql.DB, storefrontID int64, account string) ([]model.Event, error) {
	query := `SELECT id, type, storefront_id, item_id, account, quantity, amount, name, occurred_at
	          FROM events WHERE 1=1`
	var args []any

	if storefrontID > 0 {
		query += ` AND storefront_id = ?`
		args = append(args, storefrontID)
	}
	if account != "" {
		query += ` AND account = ?`
		args = append(args, account)
	}

	// occurred_at only has second granularity, so order by insertion instead.
	query += ` ORDER BY rowid DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var ev model.Event
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.StorefrontID, &ev.ItemID, &ev.Account,
			&ev.Quantity, &ev.Amount, &ev.Name, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
