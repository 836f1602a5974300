package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Delivery states of an approval or quantity change.
const (
	StatusRecorded  = "recorded"
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// ApprovalRecord is the audit row written for every approve event.
type ApprovalRecord struct {
	ID        int64           `db:"id" json:"id"`
	BatchID   string          `db:"batch_id" json:"batch_id"`
	BookID    string          `db:"book_id" json:"book_id"`
	BookTitle string          `db:"book_title" json:"book_title"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitCost  decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	TotalCost decimal.Decimal `db:"total_cost" json:"total_cost"`
	Urgency   string          `db:"urgency" json:"urgency"`
	Status    string          `db:"status" json:"status"`
	Detail    string          `db:"detail" json:"detail,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// QuantityChange is the audit row written for every quantity stepper change.
type QuantityChange struct {
	ID        int64     `db:"id" json:"id"`
	BookID    string    `db:"book_id" json:"book_id"`
	Requested int       `db:"requested" json:"requested"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Status    string    `db:"status" json:"status"`
	Detail    string    `db:"detail" json:"detail,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
