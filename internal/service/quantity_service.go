package service

import (
	"context"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/andresuchdata/bookstock-insights/internal/events"
	"github.com/andresuchdata/bookstock-insights/internal/repository"
	"github.com/rs/zerolog/log"
)

type quantityEvent struct {
	BookID    string `json:"book_id"`
	Requested int    `json:"requested"`
	Quantity  int    `json:"quantity"`
}

// QuantityService receives quantity stepper changes. Quantities below zero
// are floored at zero here; the stepper itself forwards whatever it computed.
type QuantityService struct {
	repo      repository.ApprovalRepository
	publisher events.Publisher
	source    string
}

func NewQuantityService(repo repository.ApprovalRepository, publisher events.Publisher, source string) *QuantityService {
	return &QuantityService{repo: repo, publisher: publisher, source: source}
}

func (s *QuantityService) ChangeQuantity(ctx context.Context, bookID string, newQuantity int) {
	ctx = context.WithoutCancel(ctx)
	logger := log.With().Str("book_id", bookID).Logger()

	quantity := newQuantity
	if quantity < 0 {
		quantity = 0
	}

	id, err := s.repo.RecordQuantityChange(ctx, &domain.QuantityChange{
		BookID:    bookID,
		Requested: newQuantity,
		Quantity:  quantity,
		Status:    domain.StatusRecorded,
	})
	if err != nil {
		logger.Error().Err(err).Msg("quantity: failed to record")
	}

	status, detail := domain.StatusPublished, ""
	payload, err := events.Encode(events.QuantityChanged, s.source, bookID, quantityEvent{
		BookID:    bookID,
		Requested: newQuantity,
		Quantity:  quantity,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, events.QuantityChanged, payload, bookID)
	}
	if err != nil {
		status, detail = domain.StatusFailed, err.Error()
		logger.Error().Err(err).Msg("quantity: failed to publish")
	}

	if id > 0 {
		if err := s.repo.UpdateQuantityStatus(ctx, id, status, detail); err != nil {
			logger.Error().Err(err).Msg("quantity: failed to update status")
		}
	}

	logger.Debug().Int("requested", newQuantity).Int("quantity", quantity).Str("status", status).Msg("quantity: processed")
}
