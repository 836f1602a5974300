package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
)

// ApprovalRepository persists the approval audit trail and quantity overrides.
type ApprovalRepository interface {
	RecordApproval(ctx context.Context, rec *domain.ApprovalRecord) (int64, error)
	UpdateApprovalStatus(ctx context.Context, id int64, status, detail string) error
	ListApprovals(ctx context.Context, batchID string) ([]domain.ApprovalRecord, error)

	RecordQuantityChange(ctx context.Context, change *domain.QuantityChange) (int64, error)
	UpdateQuantityStatus(ctx context.Context, id int64, status, detail string) error
	// LatestQuantities returns the most recent quantity per book for the
	// given ids among changes recorded after since. A zero since means no
	// lower bound. Books without such a change are absent from the map.
	LatestQuantities(ctx context.Context, bookIDs []string, since time.Time) (map[string]int, error)
}
