// Package cache keeps per-user record snapshots in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"habitflow/internal/store"
	"habitflow/pkg/circuitbreaker"
	"habitflow/pkg/metrics"
)

// Client is the subset of redis commands the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type SnapshotCache struct {
	rdb     Client
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewSnapshotCache(rdb Client, ttl time.Duration, breaker *circuitbreaker.CircuitBreaker, logger *zap.Logger) *SnapshotCache {
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig())
	}
	return &SnapshotCache{rdb: rdb, ttl: ttl, breaker: breaker, logger: logger}
}

func Key(userID string) string {
	return "habitflow:snapshot:" + userID
}

// Get returns the cached snapshot. ok is false on a miss or when redis is unavailable.
func (c *SnapshotCache) Get(ctx context.Context, userID string) (store.Snapshot, bool) {
	var raw []byte
	err := c.breaker.Execute(func() error {
		b, err := c.rdb.Get(ctx, Key(userID)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		raw = b
		return err
	})
	if err != nil {
		metrics.IncrementSnapshotCache("error")
		c.logger.Warn("Snapshot cache read failed", zap.String("user_id", userID), zap.Error(err))
		return store.Snapshot{}, false
	}
	if raw == nil {
		metrics.IncrementSnapshotCache("miss")
		return store.Snapshot{}, false
	}

	var snap store.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		metrics.IncrementSnapshotCache("error")
		c.logger.Warn("Dropping undecodable snapshot", zap.String("user_id", userID), zap.Error(err))
		_ = c.Invalidate(ctx, userID)
		return store.Snapshot{}, false
	}

	metrics.IncrementSnapshotCache("hit")
	return snap, true
}

// Put stores snap under the user's key.
func (c *SnapshotCache) Put(ctx context.Context, userID string, snap store.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	err = c.breaker.Execute(func() error {
		return c.rdb.Set(ctx, Key(userID), body, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}
	c.logger.Debug("Snapshot cached",
		zap.String("user_id", userID),
		zap.Int("habits", len(snap.Habits)),
		zap.Int("logs", len(snap.Logs)),
	)
	return nil
}

// Invalidate drops the user's cached snapshot.
func (c *SnapshotCache) Invalidate(ctx context.Context, userID string) error {
	err := c.breaker.Execute(func() error {
		return c.rdb.Del(ctx, Key(userID)).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate snapshot: %w", err)
	}
	return nil
}
