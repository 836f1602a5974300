package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/lib/pq"
)

type approvalRepository struct {
	db *DB
}

func NewApprovalRepository(db *DB) *approvalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) RecordApproval(ctx context.Context, rec *domain.ApprovalRecord) (int64, error) {
	var id int64
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO order_approvals (
				batch_id, book_id, book_title, quantity,
				unit_cost, total_cost, urgency, status, detail
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`
		return tx.QueryRowContext(ctx, query,
			rec.BatchID,
			rec.BookID,
			rec.BookTitle,
			rec.Quantity,
			rec.UnitCost,
			rec.TotalCost,
			rec.Urgency,
			rec.Status,
			rec.Detail,
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record approval: %w", err)
	}
	return id, nil
}

func (r *approvalRepository) UpdateApprovalStatus(ctx context.Context, id int64, status, detail string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE order_approvals SET status = $1, detail = $2, updated_at = NOW() WHERE id = $3`,
			status, detail, id)
		if err != nil {
			return fmt.Errorf("failed to update approval status: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("approval %d not found", id)
		}
		return nil
	})
}

func (r *approvalRepository) ListApprovals(ctx context.Context, batchID string) ([]domain.ApprovalRecord, error) {
	query := `
		SELECT id, batch_id, book_id, book_title, quantity, unit_cost,
			total_cost, urgency, status, detail, created_at
		FROM order_approvals
		WHERE ($1 = '' OR batch_id = $1)
		ORDER BY id
	`

	records := make([]domain.ApprovalRecord, 0)
	err := r.db.withConn(ctx, func() error {
		return r.db.SelectContext(ctx, &records, query, batchID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	return records, nil
}

func (r *approvalRepository) RecordQuantityChange(ctx context.Context, change *domain.QuantityChange) (int64, error) {
	var id int64
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx,
			`INSERT INTO quantity_changes (book_id, requested, quantity, status, detail)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			change.BookID, change.Requested, change.Quantity, change.Status, change.Detail,
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record quantity change: %w", err)
	}
	return id, nil
}

func (r *approvalRepository) UpdateQuantityStatus(ctx context.Context, id int64, status, detail string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE quantity_changes SET status = $1, detail = $2 WHERE id = $3`,
			status, detail, id)
		if err != nil {
			return fmt.Errorf("failed to update quantity status: %w", err)
		}
		return nil
	})
}

func (r *approvalRepository) LatestQuantities(ctx context.Context, bookIDs []string, since time.Time) (map[string]int, error) {
	out := make(map[string]int, len(bookIDs))
	if len(bookIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT DISTINCT ON (book_id) book_id, quantity
		FROM quantity_changes
		WHERE book_id = ANY($1) AND created_at > $2
		ORDER BY book_id, id DESC
	`

	var rows []struct {
		BookID   string `db:"book_id"`
		Quantity int    `db:"quantity"`
	}
	err := r.db.withConn(ctx, func() error {
		return r.db.SelectContext(ctx, &rows, query, pq.Array(bookIDs), since)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest quantities: %w", err)
	}

	for _, row := range rows {
		out[row.BookID] = row.Quantity
	}
	return out, nil
}
