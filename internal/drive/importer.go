package drive

import (
	"context"
	"fmt"

	"github.com/andresuchdata/bookstock-insights/internal/cache"
	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/andresuchdata/bookstock-insights/internal/refresh"
	"github.com/rs/zerolog/log"
)

// Importer pulls a complete snapshot from a Drive folder and publishes it to
// the snapshot cache, where a server configured with the same source will
// pick it up on start or on its next warm read. Timeline views built from
// earlier snapshots are dropped after every import.
type Importer struct {
	source    *PayloadSource
	cache     cache.SnapshotCache
	timelines cache.TimelineCache
}

func NewImporter(source *PayloadSource, snapshots cache.SnapshotCache, timelines cache.TimelineCache) *Importer {
	if timelines == nil {
		timelines = cache.NewNoopTimelineCache()
	}
	return &Importer{source: source, cache: snapshots, timelines: timelines}
}

func (i *Importer) Import(ctx context.Context) (*domain.Snapshot, error) {
	snapshot, err := refresh.Fetch(ctx, i.source)
	if err != nil {
		return nil, err
	}

	if err := i.cache.SetSnapshot(ctx, i.source.Name(), snapshot); err != nil {
		return nil, err
	}
	if err := i.timelines.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("drive: timeline cache invalidation failed")
	}

	log.Info().
		Str("source", i.source.Name()).
		Int("suggestions", len(snapshot.Suggestions)).
		Int("profitability", len(snapshot.Profitability)).
		Msg("drive: snapshot imported")
	return snapshot, nil
}

// Flush drops every cached snapshot and timeline view, forcing servers to
// fetch from their source on the next refresh.
func (i *Importer) Flush(ctx context.Context) error {
	if err := i.cache.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("invalidate snapshots: %w", err)
	}
	if err := i.timelines.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("invalidate timelines: %w", err)
	}
	log.Info().Str("source", i.source.Name()).Msg("drive: caches flushed")
	return nil
}
