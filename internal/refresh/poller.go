package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/cache"
	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/rs/zerolog/log"
)

// Status describes the outcome of the most recent refresh attempts.
type Status struct {
	Source      string    `json:"source"`
	LastAttempt time.Time `json:"last_attempt,omitempty"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

// Poller owns the current snapshot. Readers always see a complete snapshot;
// a failed refresh leaves the previous one in place.
type Poller struct {
	source   Source
	cache    cache.SnapshotCache
	interval time.Duration

	current atomic.Pointer[domain.Snapshot]

	mu     sync.Mutex
	status Status
}

func NewPoller(source Source, snapshots cache.SnapshotCache, interval time.Duration) *Poller {
	if snapshots == nil {
		snapshots = cache.NewNoopSnapshotCache()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Poller{
		source:   source,
		cache:    snapshots,
		interval: interval,
		status:   Status{Source: source.Name()},
	}
}

// Snapshot returns the current snapshot or domain.ErrNoSnapshot before the
// first successful refresh.
func (p *Poller) Snapshot() (*domain.Snapshot, error) {
	s := p.current.Load()
	if s == nil {
		return nil, domain.ErrNoSnapshot
	}
	return s, nil
}

func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Warm seeds the poller from the snapshot cache. A miss is not an error.
func (p *Poller) Warm(ctx context.Context) bool {
	snapshot, ok, err := p.cache.GetSnapshot(ctx, p.source.Name())
	if err != nil {
		log.Warn().Err(err).Str("source", p.source.Name()).Msg("refresh: snapshot cache read failed")
		return false
	}
	if !ok {
		return false
	}
	p.current.CompareAndSwap(nil, snapshot)
	log.Info().Time("fetched_at", snapshot.FetchedAt).Msg("refresh: warmed from snapshot cache")
	return true
}

// Refresh fetches a new snapshot and swaps it in on success.
func (p *Poller) Refresh(ctx context.Context) error {
	started := time.Now()
	snapshot, err := Fetch(ctx, p.source)

	p.mu.Lock()
	p.status.LastAttempt = started.UTC()
	if err != nil {
		p.status.LastError = err.Error()
	} else {
		p.status.LastSuccess = snapshot.FetchedAt
		p.status.LastError = ""
	}
	p.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Str("source", p.source.Name()).Msg("refresh: keeping previous snapshot")
		return err
	}

	p.current.Store(snapshot)

	if cacheErr := p.cache.SetSnapshot(ctx, p.source.Name(), snapshot); cacheErr != nil {
		log.Warn().Err(cacheErr).Msg("refresh: snapshot cache write failed")
	}

	log.Info().
		Str("source", p.source.Name()).
		Int("demand", len(snapshot.Predictions.DemandPredictions)).
		Int("sales", len(snapshot.Predictions.SalesPredictions)).
		Int("suggestions", len(snapshot.Suggestions)).
		Int("profitability", len(snapshot.Profitability)).
		Dur("took", time.Since(started)).
		Msg("refresh: snapshot updated")
	return nil
}

// Run warms, refreshes once, then refreshes on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	p.Warm(ctx)
	_ = p.Refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("refresh: poller stopped")
			return
		case <-ticker.C:
			_ = p.Refresh(ctx)
		}
	}
}
