package mqhandler

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	mqcontracts "habitflow/contracts/mq"
	"habitflow/internal/store"
	"habitflow/pkg/logger"
	"habitflow/pkg/util"
)

const (
	SnapshotRefreshQueue = "habit.snapshot.refresh.q"

	dedupScope = "snapshot-refresh"
)

var errMissingEnvelope = errors.New("event has no event_id or user_id")

// SnapshotRefresher is implemented by service.HabitService.
type SnapshotRefresher interface {
	RefreshSnapshot(ctx context.Context, userID string) (store.Snapshot, error)
}

// DeadLetterPublisher is implemented by mq.Publisher.
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, routingKey string, payload []byte, originalError string) error
}

type Deduper interface {
	AcquireOnce(ctx context.Context, scope, id string) bool
	Release(ctx context.Context, scope, id string)
}

type RetryCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// SnapshotRefreshHandler rebuilds a user's cached snapshot whenever one of their
// habits or logs changes.
type SnapshotRefreshHandler struct {
	refresher    SnapshotRefresher
	dlq          DeadLetterPublisher
	deduper      Deduper
	retryCounter RetryCounter
	maxRetries   int64
	logger       *zap.Logger
}

func NewSnapshotRefreshHandler(
	refresher SnapshotRefresher,
	dlq DeadLetterPublisher,
	deduper Deduper,
	retryCounter RetryCounter,
	maxRetries int64,
	logger *zap.Logger,
) *SnapshotRefreshHandler {
	return &SnapshotRefreshHandler{
		refresher:    refresher,
		dlq:          dlq,
		deduper:      deduper,
		retryCounter: retryCounter,
		maxRetries:   maxRetries,
		logger:       logger,
	}
}

// Handle returns an error only when the message should be requeued.
func (h *SnapshotRefreshHandler) Handle(ctx context.Context, routingKey string, raw json.RawMessage) error {
	log := logger.WithTrace(ctx, h.logger).With(zap.String("routing_key", routingKey))

	var env mqcontracts.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Error("Failed to unmarshal habit event (non-retryable, sending to DLQ)", zap.Error(err))
		h.deadLetter(ctx, log, routingKey, raw, err)
		return nil
	}
	if env.EventID == "" || env.UserID == "" {
		log.Error("Habit event missing identifiers, sending to DLQ")
		h.deadLetter(ctx, log, routingKey, raw, errMissingEnvelope)
		return nil
	}
	log = log.With(zap.String("event_id", env.EventID), zap.String("user_id", env.UserID))

	// Redis 去重（避免重复投递触发多次重建）
	if !h.deduper.AcquireOnce(ctx, dedupScope, env.EventID) {
		log.Info("Duplicated event, skip")
		return nil
	}

	retryKey := util.FormatRetryKey(dedupScope, env.EventID)
	retryCount, err := h.retryCounter.IncrementAndGet(ctx, retryKey)
	if err != nil {
		log.Warn("Failed to get retry count, continuing anyway", zap.Error(err))
		retryCount = 1
	}

	snap, err := h.refresher.RefreshSnapshot(ctx, env.UserID)
	if err != nil {
		isRetryable, errType := util.IsRetryableError(err)
		log.Warn("Snapshot refresh failed",
			zap.String("error_type", errType),
			zap.Bool("retryable", isRetryable),
			zap.Int64("retry", retryCount),
			zap.Error(err),
		)

		if util.ShouldRetry(retryCount, h.maxRetries, isRetryable) {
			h.deduper.Release(ctx, dedupScope, env.EventID)
			return err // nack → 重试
		}

		h.deadLetter(ctx, log, routingKey, raw, err)
		_ = h.retryCounter.Reset(ctx, retryKey)
		return nil // ack → 吃掉
	}

	_ = h.retryCounter.Reset(ctx, retryKey)
	log.Info("Snapshot refreshed",
		zap.Int("habits", len(snap.Habits)),
		zap.Int("logs", len(snap.Logs)),
	)
	return nil
}

func (h *SnapshotRefreshHandler) deadLetter(ctx context.Context, log *zap.Logger, routingKey string, raw []byte, cause error) {
	if err := h.dlq.PublishToDLQ(ctx, routingKey, raw, cause.Error()); err != nil {
		log.Error("Failed to publish to DLQ", zap.Error(err))
	}
}
