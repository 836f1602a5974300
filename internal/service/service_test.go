package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/andresuchdata/bookstock-insights/internal/events"
	"github.com/andresuchdata/bookstock-insights/internal/repository"
	"github.com/andresuchdata/bookstock-insights/internal/selection"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

type staticSnapshots struct {
	snapshot *domain.Snapshot
}

func (s staticSnapshots) Snapshot() (*domain.Snapshot, error) {
	if s.snapshot == nil {
		return nil, domain.ErrNoSnapshot
	}
	return s.snapshot, nil
}

type publishedEvent struct {
	eventType string
	key       string
	payload   []byte
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, eventType string, payload []byte, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{eventType, key, payload})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

var _ events.Publisher = (*fakePublisher)(nil)

func testSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Predictions: domain.PredictionData{
			DemandPredictions: []domain.DemandRecord{
				{ForecastDate: "2024-01-02", PredictedDemand: fp(5), ConfidenceLevel: fp(90)},
				{ForecastDate: "2024-01-01", PredictedDemand: fp(10), ConfidenceLevel: fp(65)},
				{ForecastDate: "soon", PredictedDemand: fp(1)},
			},
			SalesPredictions: []domain.SalesRecord{
				{ForecastPeriodStart: "2024-01-01", PredictedRevenue: fp(5000)},
				{ForecastPeriodStart: "2024-02-01", PredictedRevenue: fp(100)},
			},
		},
		Suggestions: []domain.OrderSuggestion{
			{BookID: "B1", SuggestedQuantity: 2, UnitCost: decimal.NewFromInt(3), Urgency: domain.UrgencyWithinMonth},
			{BookID: "B2", SuggestedQuantity: 4, UnitCost: decimal.NewFromInt(5), Urgency: domain.UrgencyImmediate},
			{BookID: "B3", SuggestedQuantity: 1, Urgency: domain.UrgencyUnknown},
		},
		Profitability: []domain.ProfitabilityItem{
			{ItemName: "Dune", ProfitMargin: 0.1},
			{ItemName: "Emma", ProfitMargin: 0.5},
		},
		Dashboard: domain.DashboardMetrics{TotalBooks: 12},
		FetchedAt: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestDashboardTimelineReportsInvalidDatesAsWarnings(t *testing.T) {
	svc := NewDashboardService(staticSnapshots{testSnapshot()}, nil, nil)

	view, err := svc.Timeline(context.Background(), domain.TimelineWindow{})
	require.NoError(t, err)

	dates := make([]string, len(view.Points))
	for i, p := range view.Points {
		dates[i] = p.Date
	}
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-02-01", "soon"}, dates)
	require.Len(t, view.Warnings, 1)
	assert.Contains(t, view.Warnings[0], `"soon"`)
	assert.Equal(t, 1, view.Summary.UnorderedDateCount)
	assert.Equal(t, domain.ConfidenceMedium, view.Points[0].Confidence)
}

func TestDashboardTimelineWindow(t *testing.T) {
	svc := NewDashboardService(staticSnapshots{testSnapshot()}, nil, nil)

	view, err := svc.Timeline(context.Background(), domain.TimelineWindow{From: "2024-01-02", To: "2024-01-31"})
	require.NoError(t, err)

	require.Len(t, view.Points, 2)
	assert.Equal(t, "2024-01-02", view.Points[0].Date)
	assert.Equal(t, "soon", view.Points[1].Date)
}

func TestDashboardTimelineRejectsBadWindow(t *testing.T) {
	svc := NewDashboardService(staticSnapshots{testSnapshot()}, nil, nil)

	_, err := svc.Timeline(context.Background(), domain.TimelineWindow{From: "yesterday"})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = svc.Timeline(context.Background(), domain.TimelineWindow{From: "2024-02-01", To: "2024-01-01"})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestDashboardWithoutSnapshot(t *testing.T) {
	svc := NewDashboardService(staticSnapshots{}, nil, nil)

	_, err := svc.Timeline(context.Background(), domain.TimelineWindow{})
	assert.ErrorIs(t, err, domain.ErrNoSnapshot)
	_, err = svc.Heatmap(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoSnapshot)
	_, err = svc.Suggestions(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoSnapshot)
}

func TestDashboardHeatmap(t *testing.T) {
	svc := NewDashboardService(staticSnapshots{testSnapshot()}, nil, nil)

	heatmap, err := svc.Heatmap(context.Background())
	require.NoError(t, err)

	require.Len(t, heatmap.Cells, 2)
	assert.Equal(t, domain.BandVeryPoor, heatmap.Cells[0].Band)
	assert.Equal(t, domain.BandExcellent, heatmap.Cells[1].Band)
}

func TestDashboardSuggestionsSortedWithOverrides(t *testing.T) {
	repo := repository.NewMemoryApprovalRepository()
	_, err := repo.RecordQuantityChange(context.Background(), &domain.QuantityChange{BookID: "B1", Quantity: 7})
	require.NoError(t, err)

	snapshot := testSnapshot()
	svc := NewDashboardService(staticSnapshots{snapshot}, nil, repo)

	views, err := svc.Suggestions(context.Background())
	require.NoError(t, err)

	require.Len(t, views, 3)
	assert.Equal(t, "B2", views[0].BookID)
	assert.Equal(t, "error", views[0].UrgencyPresentation.Level)
	assert.Equal(t, "B1", views[1].BookID)
	assert.Equal(t, 7, views[1].SuggestedQuantity)
	assert.True(t, views[1].QuantityOverridden)
	assert.Equal(t, "21", views[1].TotalCost.String())
	assert.Equal(t, "B3", views[2].BookID)
	assert.Equal(t, 3, views[2].UrgencyPresentation.SortWeight)

	// the snapshot itself is never modified
	assert.Equal(t, 2, snapshot.Suggestions[0].SuggestedQuantity)
	assert.Equal(t, "B1", snapshot.Suggestions[0].BookID)
}

func TestDashboardSuggestionsIgnoreOverridesOlderThanSnapshot(t *testing.T) {
	snapshot := testSnapshot()
	repo := repository.NewMemoryApprovalRepository()
	_, err := repo.RecordQuantityChange(context.Background(), &domain.QuantityChange{
		BookID:    "B1",
		Quantity:  40,
		CreatedAt: snapshot.FetchedAt.Add(-24 * time.Hour),
	})
	require.NoError(t, err)

	views, err := NewDashboardService(staticSnapshots{snapshot}, nil, repo).Suggestions(context.Background())
	require.NoError(t, err)

	require.Len(t, views, 3)
	assert.Equal(t, "B1", views[1].BookID)
	assert.Equal(t, 2, views[1].SuggestedQuantity)
	assert.False(t, views[1].QuantityOverridden)
}

func TestApprovalServiceRecordsAndPublishes(t *testing.T) {
	repo := repository.NewMemoryApprovalRepository()
	pub := &fakePublisher{}
	svc := NewApprovalService(repo, pub, "bookstock-insights")

	ledger := selection.NewLedger()
	ledger.Toggle("B2")
	ledger.Toggle("B1")
	batch := ledger.BulkApprove(context.Background(), domain.SuggestionsByID(testSnapshot().Suggestions), svc)

	require.Len(t, pub.events, 2)
	assert.Equal(t, "B2", pub.events[0].key)
	assert.Equal(t, "B1", pub.events[1].key)
	assert.Equal(t, events.OrderApproved, pub.events[0].eventType)
	assert.Contains(t, string(pub.events[0].payload), batch.ID)

	history, err := svc.History(context.Background(), batch.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.StatusPublished, history[0].Status)
	assert.Equal(t, "20", history[0].TotalCost.String())
}

func TestApprovalServiceStoresPublishFailure(t *testing.T) {
	repo := repository.NewMemoryApprovalRepository()
	svc := NewApprovalService(repo, &fakePublisher{err: errors.New("broker down")}, "svc")

	svc.ApproveOrder(context.Background(), "batch-1", domain.OrderSuggestion{BookID: "B1", SuggestedQuantity: 1})

	history, err := svc.History(context.Background(), "batch-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusFailed, history[0].Status)
	assert.Equal(t, "broker down", history[0].Detail)
}

func TestQuantityServiceFloorsAtZero(t *testing.T) {
	repo := repository.NewMemoryApprovalRepository()
	pub := &fakePublisher{}
	svc := NewQuantityService(repo, pub, "svc")

	selection.Decrement(context.Background(), svc, "B1", 0)

	latest, err := repo.LatestQuantities(context.Background(), []string{"B1"}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 0, latest["B1"])
	require.Len(t, pub.events, 1)
	assert.Contains(t, string(pub.events[0].payload), `"requested":-1`)
}

func TestQuantityServiceCancelledContextStillRecords(t *testing.T) {
	repo := repository.NewMemoryApprovalRepository()
	svc := NewQuantityService(repo, &fakePublisher{}, "svc")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.ChangeQuantity(ctx, "B1", 9)

	latest, err := repo.LatestQuantities(context.Background(), []string{"B1"}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 9, latest["B1"])
}
