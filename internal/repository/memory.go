package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
)

// MemoryApprovalRepository keeps the audit trail in process. It is used when
// no database is configured and in tests.
type MemoryApprovalRepository struct {
	mu        sync.RWMutex
	approvals []domain.ApprovalRecord
	changes   []domain.QuantityChange
}

func NewMemoryApprovalRepository() *MemoryApprovalRepository {
	return &MemoryApprovalRepository{}
}

func (r *MemoryApprovalRepository) RecordApproval(ctx context.Context, rec *domain.ApprovalRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *rec
	stored.ID = int64(len(r.approvals) + 1)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.approvals = append(r.approvals, stored)
	return stored.ID, nil
}

func (r *MemoryApprovalRepository) UpdateApprovalStatus(ctx context.Context, id int64, status, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id < 1 || int(id) > len(r.approvals) {
		return fmt.Errorf("approval %d not found", id)
	}
	r.approvals[id-1].Status = status
	r.approvals[id-1].Detail = detail
	return nil
}

func (r *MemoryApprovalRepository) ListApprovals(ctx context.Context, batchID string) ([]domain.ApprovalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ApprovalRecord, 0)
	for _, rec := range r.approvals {
		if batchID == "" || rec.BatchID == batchID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *MemoryApprovalRepository) RecordQuantityChange(ctx context.Context, change *domain.QuantityChange) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *change
	stored.ID = int64(len(r.changes) + 1)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.changes = append(r.changes, stored)
	return stored.ID, nil
}

func (r *MemoryApprovalRepository) UpdateQuantityStatus(ctx context.Context, id int64, status, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id < 1 || int(id) > len(r.changes) {
		return fmt.Errorf("quantity change %d not found", id)
	}
	r.changes[id-1].Status = status
	r.changes[id-1].Detail = detail
	return nil
}

func (r *MemoryApprovalRepository) LatestQuantities(ctx context.Context, bookIDs []string, since time.Time) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]struct{}, len(bookIDs))
	for _, id := range bookIDs {
		wanted[id] = struct{}{}
	}

	out := make(map[string]int)
	// changes are appended in order, so the last one wins
	for _, c := range r.changes {
		if !since.IsZero() && !c.CreatedAt.After(since) {
			continue
		}
		if _, ok := wanted[c.BookID]; ok {
			out[c.BookID] = c.Quantity
		}
	}
	return out, nil
}
