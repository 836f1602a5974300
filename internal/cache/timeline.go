package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/config"
	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/redis/go-redis/v9"
)

const timelineKind = "timeline"

// TimelineCache stores reconciled timeline views per window. Entries are keyed
// on the snapshot fetch time, so a new snapshot never serves a stale view.
type TimelineCache interface {
	GetTimeline(ctx context.Context, fetchedAt time.Time, window domain.TimelineWindow) (*domain.TimelineView, bool, error)
	SetTimeline(ctx context.Context, fetchedAt time.Time, window domain.TimelineWindow, view *domain.TimelineView) error
	InvalidateAll(ctx context.Context) error
}

type redisTimelineCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopTimelineCache struct{}

func NewTimelineCache(cfg config.CacheConfig) (TimelineCache, error) {
	if !cfg.Enabled {
		return &noopTimelineCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisTimelineCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopTimelineCache() TimelineCache {
	return &noopTimelineCache{}
}

func (c *redisTimelineCache) GetTimeline(ctx context.Context, fetchedAt time.Time, window domain.TimelineWindow) (*domain.TimelineView, bool, error) {
	payload, err := c.client.Get(ctx, timelineKey(fetchedAt, window)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var view domain.TimelineView
	if err := json.Unmarshal(payload, &view); err != nil {
		return nil, false, fmt.Errorf("decode timeline cache: %w", err)
	}

	return &view, true, nil
}

func (c *redisTimelineCache) SetTimeline(ctx context.Context, fetchedAt time.Time, window domain.TimelineWindow, view *domain.TimelineView) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("encode timeline cache: %w", err)
	}

	if err := c.client.Set(ctx, timelineKey(fetchedAt, window), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisTimelineCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, keyPrefix+":"+timelineKind, scanBatchSize)
}

func (n *noopTimelineCache) GetTimeline(ctx context.Context, fetchedAt time.Time, window domain.TimelineWindow) (*domain.TimelineView, bool, error) {
	return nil, false, nil
}

func (n *noopTimelineCache) SetTimeline(ctx context.Context, fetchedAt time.Time, window domain.TimelineWindow, view *domain.TimelineView) error {
	return nil
}

func (n *noopTimelineCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func timelineKey(fetchedAt time.Time, window domain.TimelineWindow) string {
	parts := []string{"fetched_at=" + fetchedAt.UTC().Format(time.RFC3339Nano)}
	if from := strings.TrimSpace(window.From); from != "" {
		parts = append(parts, "from="+from)
	}
	if to := strings.TrimSpace(window.To); to != "" {
		parts = append(parts, "to="+to)
	}
	return hashKey(timelineKind, parts...)
}
