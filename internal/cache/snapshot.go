package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/config"
	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/redis/go-redis/v9"
)

const snapshotKind = "snapshot"

// SnapshotCache keeps the last successful refresh per source so that a
// restarted server can serve data before its first poll completes.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, source string) (*domain.Snapshot, bool, error)
	SetSnapshot(ctx context.Context, source string, snapshot *domain.Snapshot) error
	InvalidateAll(ctx context.Context) error
}

type redisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSnapshotCache struct{}

func NewSnapshotCache(cfg config.CacheConfig) (SnapshotCache, error) {
	if !cfg.Enabled {
		return &noopSnapshotCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisSnapshotCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopSnapshotCache() SnapshotCache {
	return &noopSnapshotCache{}
}

func (c *redisSnapshotCache) GetSnapshot(ctx context.Context, source string) (*domain.Snapshot, bool, error) {
	payload, err := c.client.Get(ctx, snapshotKey(source)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, false, fmt.Errorf("decode snapshot cache: %w", err)
	}

	return &snapshot, true, nil
}

func (c *redisSnapshotCache) SetSnapshot(ctx context.Context, source string, snapshot *domain.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot cache: %w", err)
	}

	if err := c.client.Set(ctx, snapshotKey(source), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisSnapshotCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, keyPrefix+":"+snapshotKind, scanBatchSize)
}

func (n *noopSnapshotCache) GetSnapshot(ctx context.Context, source string) (*domain.Snapshot, bool, error) {
	return nil, false, nil
}

func (n *noopSnapshotCache) SetSnapshot(ctx context.Context, source string, snapshot *domain.Snapshot) error {
	return nil
}

func (n *noopSnapshotCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func snapshotKey(source string) string {
	if source == "" {
		return hashKey(snapshotKind)
	}
	return hashKey(snapshotKind, "source="+source)
}
