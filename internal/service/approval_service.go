package service

import (
	"context"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/andresuchdata/bookstock-insights/internal/events"
	"github.com/andresuchdata/bookstock-insights/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type approvalEvent struct {
	BatchID   string          `json:"batch_id"`
	BookID    string          `json:"book_id"`
	BookTitle string          `json:"book_title"`
	ISBN13    string          `json:"isbn13,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
	Urgency   string          `json:"urgency"`
}

// ApprovalService receives approve events from the selection ledger. It
// records each one, publishes it, and records the delivery outcome. Failures
// are logged and stored; they never reach the ledger.
type ApprovalService struct {
	repo      repository.ApprovalRepository
	publisher events.Publisher
	source    string
}

func NewApprovalService(repo repository.ApprovalRepository, publisher events.Publisher, source string) *ApprovalService {
	return &ApprovalService{repo: repo, publisher: publisher, source: source}
}

func (s *ApprovalService) ApproveOrder(ctx context.Context, batchID string, suggestion domain.OrderSuggestion) {
	// the audit trail must survive a client that disconnects mid-batch
	ctx = context.WithoutCancel(ctx)
	logger := log.With().Str("batch_id", batchID).Str("book_id", suggestion.BookID).Logger()

	totalCost := suggestion.TotalCost
	if totalCost.IsZero() {
		totalCost = suggestion.UnitCost.Mul(decimal.NewFromInt(int64(suggestion.SuggestedQuantity)))
	}

	id, err := s.repo.RecordApproval(ctx, &domain.ApprovalRecord{
		BatchID:   batchID,
		BookID:    suggestion.BookID,
		BookTitle: suggestion.BookTitle,
		Quantity:  suggestion.SuggestedQuantity,
		UnitCost:  suggestion.UnitCost,
		TotalCost: totalCost,
		Urgency:   string(suggestion.Urgency),
		Status:    domain.StatusRecorded,
	})
	if err != nil {
		logger.Error().Err(err).Msg("approval: failed to record")
	}

	status, detail := domain.StatusPublished, ""
	payload, err := events.Encode(events.OrderApproved, s.source, suggestion.BookID, approvalEvent{
		BatchID:   batchID,
		BookID:    suggestion.BookID,
		BookTitle: suggestion.BookTitle,
		ISBN13:    suggestion.ISBN13,
		Quantity:  suggestion.SuggestedQuantity,
		UnitCost:  suggestion.UnitCost,
		TotalCost: totalCost,
		Urgency:   string(suggestion.Urgency),
	})
	if err == nil {
		err = s.publisher.Publish(ctx, events.OrderApproved, payload, suggestion.BookID)
	}
	if err != nil {
		status, detail = domain.StatusFailed, err.Error()
		logger.Error().Err(err).Msg("approval: failed to publish")
	}

	if id > 0 {
		if err := s.repo.UpdateApprovalStatus(ctx, id, status, detail); err != nil {
			logger.Error().Err(err).Msg("approval: failed to update status")
		}
	}

	logger.Info().Str("status", status).Int("quantity", suggestion.SuggestedQuantity).Msg("approval: processed")
}

func (s *ApprovalService) History(ctx context.Context, batchID string) ([]domain.ApprovalRecord, error) {
	return s.repo.ListApprovals(ctx, batchID)
}
