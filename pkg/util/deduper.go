package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DedupStore 去重所需的 redis 操作，*redis.Client 满足该接口
type DedupStore interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Deduper struct {
	rdb    DedupStore
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb DedupStore, ttl time.Duration, logger *zap.Logger) *Deduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce tries to acquire a dedup lock for a given scope + id.
// returns true if this is the FIRST time processing
// returns false if it's a duplicate
func (d *Deduper) AcquireOnce(ctx context.Context, scope, id string) bool {
	key := dedupKey(scope, id)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		// redis 不可用时不阻止处理
		d.logger.Warn("Redis dedup check failed, allowing processing",
			zap.String("scope", scope),
			zap.String("id", id),
			zap.Error(err),
		)
		return true
	}

	if !ok {
		d.logger.Info("Skipped duplicated event",
			zap.String("scope", scope),
			zap.String("id", id),
			zap.String("dedup_key", key),
		)
	}

	return ok
}

// Release 释放去重标记，使消息在重试时可以再次被处理
func (d *Deduper) Release(ctx context.Context, scope, id string) {
	if err := d.rdb.Del(ctx, dedupKey(scope, id)).Err(); err != nil {
		d.logger.Warn("Failed to release dedup key",
			zap.String("scope", scope),
			zap.String("id", id),
			zap.Error(err),
		)
	}
}

func dedupKey(scope, id string) string {
	return fmt.Sprintf("dedup:%s:%s", scope, id)
}
