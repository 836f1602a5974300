package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS order_approvals (
		id          BIGSERIAL PRIMARY KEY,
		batch_id    TEXT NOT NULL,
		book_id     TEXT NOT NULL,
		book_title  TEXT NOT NULL DEFAULT '',
		quantity    INTEGER NOT NULL,
		unit_cost   NUMERIC NOT NULL DEFAULT 0,
		total_cost  NUMERIC NOT NULL DEFAULT 0,
		urgency     TEXT NOT NULL DEFAULT 'unknown',
		status      TEXT NOT NULL,
		detail      TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_approvals_batch ON order_approvals (batch_id)`,
	`CREATE TABLE IF NOT EXISTS quantity_changes (
		id          BIGSERIAL PRIMARY KEY,
		book_id     TEXT NOT NULL,
		requested   INTEGER NOT NULL,
		quantity    INTEGER NOT NULL,
		status      TEXT NOT NULL,
		detail      TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quantity_changes_book ON quantity_changes (book_id, id DESC)`,
}

// EnsureSchema creates the audit tables when they do not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
