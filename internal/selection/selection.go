// Package selection holds the per-session multi-select state over order
// suggestions and the quantity stepper that feeds the approval collaborators.
package selection

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Selection is an insertion-ordered set of suggestion ids. Values are never
// mutated; every transition returns a new Selection.
type Selection struct {
	ids []string
}

func NewSelection(ids ...string) Selection {
	s := Selection{}
	for _, id := range ids {
		if !s.Contains(id) {
			s.ids = append(s.ids, id)
		}
	}
	return s
}

func (s Selection) Len() int {
	return len(s.ids)
}

func (s Selection) Contains(id string) bool {
	return s.indexOf(id) >= 0
}

// IDs returns the selected ids in insertion order.
func (s Selection) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s Selection) indexOf(id string) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Toggle adds id when absent and removes it when present.
func Toggle(s Selection, id string) Selection {
	idx := s.indexOf(id)
	if idx < 0 {
		ids := make([]string, len(s.ids), len(s.ids)+1)
		copy(ids, s.ids)
		return Selection{ids: append(ids, id)}
	}

	ids := make([]string, 0, len(s.ids)-1)
	ids = append(ids, s.ids[:idx]...)
	ids = append(ids, s.ids[idx+1:]...)
	return Selection{ids: ids}
}

// Clear empties the selection regardless of its prior state.
func Clear(Selection) Selection {
	return Selection{}
}

// Approver receives one approve event per approved suggestion. Failures are the
// approver's to report; the ledger never sees them.
type Approver interface {
	ApproveOrder(ctx context.Context, batchID string, suggestion domain.OrderSuggestion)
}

type ApproverFunc func(ctx context.Context, batchID string, suggestion domain.OrderSuggestion)

func (f ApproverFunc) ApproveOrder(ctx context.Context, batchID string, suggestion domain.OrderSuggestion) {
	f(ctx, batchID, suggestion)
}

// Batch summarizes one bulk approval.
type Batch struct {
	ID            string                   `json:"batch_id"`
	Approved      []domain.OrderSuggestion `json:"approved"`
	Skipped       []string                 `json:"skipped"`
	Warnings      []string                 `json:"warnings"`
	TotalQuantity int                      `json:"total_quantity"`
	TotalCost     decimal.Decimal          `json:"total_cost"`
	ApprovedAt    time.Time                `json:"approved_at"`
}

// BulkApprove dispatches an approve event, in insertion order, for every
// selected id that still has a suggestion in byID. Ids without a suggestion are
// listed in Batch.Skipped with one warning each. The returned selection is always empty.
func BulkApprove(ctx context.Context, s Selection, byID map[string]domain.OrderSuggestion, approver Approver) (Selection, Batch) {
	batch := Batch{
		ID:         uuid.NewString(),
		Approved:   make([]domain.OrderSuggestion, 0, len(s.ids)),
		Skipped:    make([]string, 0),
		Warnings:   make([]string, 0),
		TotalCost:  decimal.Zero,
		ApprovedAt: time.Now().UTC(),
	}

	for _, id := range s.ids {
		suggestion, ok := byID[id]
		if !ok {
			batch.Skipped = append(batch.Skipped, id)
			batch.Warnings = append(batch.Warnings,
				fmt.Errorf("%w: %q", domain.ErrMissingReferenceOnApprove, id).Error())
			continue
		}
		approver.ApproveOrder(ctx, batch.ID, suggestion)
		batch.Approved = append(batch.Approved, suggestion)
		batch.TotalQuantity += suggestion.SuggestedQuantity
		batch.TotalCost = batch.TotalCost.Add(lineCost(suggestion))
	}

	return Clear(s), batch
}

func lineCost(s domain.OrderSuggestion) decimal.Decimal {
	if !s.TotalCost.IsZero() {
		return s.TotalCost
	}
	return s.UnitCost.Mul(decimal.NewFromInt(int64(s.SuggestedQuantity)))
}
