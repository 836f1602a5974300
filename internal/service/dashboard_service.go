package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/cache"
	"github.com/andresuchdata/bookstock-insights/internal/classify"
	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/andresuchdata/bookstock-insights/internal/forecast"
	"github.com/andresuchdata/bookstock-insights/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ErrInvalidWindow is returned when a timeline bound is not a recognised date.
var ErrInvalidWindow = errors.New("invalid timeline window")

// SnapshotProvider exposes the current upstream snapshot.
type SnapshotProvider interface {
	Snapshot() (*domain.Snapshot, error)
}

// SuggestionView is a suggestion with its urgency display encoding.
type SuggestionView struct {
	domain.OrderSuggestion
	UrgencyPresentation domain.Presentation `json:"urgencyPresentation"`
	QuantityOverridden  bool                `json:"quantityOverridden"`
}

type DashboardView struct {
	Metrics   domain.DashboardMetrics `json:"metrics"`
	FetchedAt time.Time               `json:"fetched_at"`
}

type DashboardService struct {
	snapshots SnapshotProvider
	timelines cache.TimelineCache
	overrides repository.ApprovalRepository
}

func NewDashboardService(snapshots SnapshotProvider, timelines cache.TimelineCache, overrides repository.ApprovalRepository) *DashboardService {
	if timelines == nil {
		timelines = cache.NewNoopTimelineCache()
	}
	return &DashboardService{snapshots: snapshots, timelines: timelines, overrides: overrides}
}

// Timeline reconciles the current snapshot's forecast streams and narrows the
// result to window. Unorderable dates do not fail the request; they are
// reported as warnings and kept at the end of the timeline.
func (s *DashboardService) Timeline(ctx context.Context, window domain.TimelineWindow) (*domain.TimelineView, error) {
	from, to, err := parseWindow(window)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.snapshots.Snapshot()
	if err != nil {
		return nil, err
	}

	if view, ok, err := s.timelines.GetTimeline(ctx, snapshot.FetchedAt, window); err == nil && ok {
		return view, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("timeline: cache get failed")
	}

	warnings := make([]string, 0)
	points, err := forecast.Reconcile(snapshot.Predictions.DemandPredictions, snapshot.Predictions.SalesPredictions)
	if err != nil {
		var recErr *domain.ReconciliationError
		if !errors.As(err, &recErr) {
			return nil, err
		}
		warnings = append(warnings, recErr.Error())
		log.Warn().Strs("dates", recErr.Dates).Msg("timeline: unorderable forecast dates")
	}

	points = forecast.Window(points, from, to)
	view := &domain.TimelineView{
		Points:    points,
		Summary:   forecast.Summarize(points),
		Warnings:  warnings,
		FetchedAt: snapshot.FetchedAt.Format(time.RFC3339),
	}

	if err := s.timelines.SetTimeline(ctx, snapshot.FetchedAt, window, view); err != nil {
		log.Warn().Err(err).Msg("timeline: cache set failed")
	}
	return view, nil
}

func parseWindow(window domain.TimelineWindow) (time.Time, time.Time, error) {
	var from, to time.Time
	if window.From != "" {
		t, ok := forecast.ParseDate(window.From)
		if !ok {
			return from, to, fmt.Errorf("%w: from=%q", ErrInvalidWindow, window.From)
		}
		from = t
	}
	if window.To != "" {
		t, ok := forecast.ParseDate(window.To)
		if !ok {
			return from, to, fmt.Errorf("%w: to=%q", ErrInvalidWindow, window.To)
		}
		to = t
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, fmt.Errorf("%w: to is before from", ErrInvalidWindow)
	}
	return from, to, nil
}

// Heatmap classifies the current profitability set.
func (s *DashboardService) Heatmap(ctx context.Context) (*domain.ProfitabilityHeatmap, error) {
	snapshot, err := s.snapshots.Snapshot()
	if err != nil {
		return nil, err
	}
	heatmap := classify.Profitability(snapshot.Profitability)
	return &heatmap, nil
}

// Suggestions returns the current suggestions with quantity overrides applied,
// most urgent first.
func (s *DashboardService) Suggestions(ctx context.Context) ([]SuggestionView, error) {
	suggestions, overridden, err := s.currentSuggestions(ctx)
	if err != nil {
		return nil, err
	}

	classify.SortByUrgency(suggestions)

	views := make([]SuggestionView, 0, len(suggestions))
	for _, sg := range suggestions {
		views = append(views, SuggestionView{
			OrderSuggestion:     sg,
			UrgencyPresentation: classify.Urgency(sg.Urgency),
			QuantityOverridden:  overridden[sg.BookID],
		})
	}
	return views, nil
}

// SuggestionIndex indexes the current suggestions by book id for approval.
func (s *DashboardService) SuggestionIndex(ctx context.Context) (map[string]domain.OrderSuggestion, error) {
	suggestions, _, err := s.currentSuggestions(ctx)
	if err != nil {
		return nil, err
	}
	return domain.SuggestionsByID(suggestions), nil
}

func (s *DashboardService) Dashboard(ctx context.Context) (*DashboardView, error) {
	snapshot, err := s.snapshots.Snapshot()
	if err != nil {
		return nil, err
	}
	return &DashboardView{Metrics: snapshot.Dashboard, FetchedAt: snapshot.FetchedAt}, nil
}

func (s *DashboardService) currentSuggestions(ctx context.Context) ([]domain.OrderSuggestion, map[string]bool, error) {
	snapshot, err := s.snapshots.Snapshot()
	if err != nil {
		return nil, nil, err
	}

	suggestions := make([]domain.OrderSuggestion, len(snapshot.Suggestions))
	copy(suggestions, snapshot.Suggestions)
	overridden := make(map[string]bool)

	if s.overrides == nil || len(suggestions) == 0 {
		return suggestions, overridden, nil
	}

	ids := make([]string, len(suggestions))
	for i, sg := range suggestions {
		ids[i] = sg.BookID
	}
	latest, err := s.overrides.LatestQuantities(ctx, ids, snapshot.FetchedAt)
	if err != nil {
		log.Warn().Err(err).Msg("suggestions: quantity overrides unavailable")
		return suggestions, overridden, nil
	}

	for i := range suggestions {
		q, ok := latest[suggestions[i].BookID]
		if !ok {
			continue
		}
		suggestions[i].SuggestedQuantity = q
		if !suggestions[i].UnitCost.IsZero() {
			suggestions[i].TotalCost = suggestions[i].UnitCost.Mul(decimal.NewFromInt(int64(q)))
		}
		overridden[suggestions[i].BookID] = true
	}
	return suggestions, overridden, nil
}
