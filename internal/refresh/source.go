// Package refresh keeps the latest upstream snapshot in memory and renews it
// on a fixed interval.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Source produces the four analytics payloads.
type Source interface {
	Name() string
	FetchPredictions(ctx context.Context) (domain.PredictionData, error)
	FetchSuggestions(ctx context.Context) ([]domain.OrderSuggestion, error)
	FetchProfitability(ctx context.Context) ([]domain.ProfitabilityItem, error)
	FetchDashboard(ctx context.Context) (domain.DashboardMetrics, error)
}

// Fetch pulls every payload from src concurrently. The first failure cancels
// the remaining requests and no partial snapshot is returned.
func Fetch(ctx context.Context, src Source) (*domain.Snapshot, error) {
	var snapshot domain.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		predictions, err := src.FetchPredictions(gctx)
		if err != nil {
			return fmt.Errorf("predictions: %w", err)
		}
		snapshot.Predictions = predictions
		return nil
	})
	g.Go(func() error {
		suggestions, err := src.FetchSuggestions(gctx)
		if err != nil {
			return fmt.Errorf("suggestions: %w", err)
		}
		snapshot.Suggestions = suggestions
		return nil
	})
	g.Go(func() error {
		items, err := src.FetchProfitability(gctx)
		if err != nil {
			return fmt.Errorf("profitability: %w", err)
		}
		snapshot.Profitability = items
		return nil
	})
	g.Go(func() error {
		metrics, err := src.FetchDashboard(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		snapshot.Dashboard = metrics
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch from %s: %w", src.Name(), err)
	}

	snapshot.FetchedAt = time.Now().UTC()
	return &snapshot, nil
}
