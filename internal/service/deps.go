package service

import (
	"context"

	"habitflow/internal/model"
	"habitflow/internal/store"
)

// HabitRepository is implemented by repository.HabitRepository.
type HabitRepository interface {
	Create(ctx context.Context, h *model.Habit) error
	Archive(ctx context.Context, userID, habitID string) error
	GetByID(ctx context.Context, userID, habitID string) (*model.Habit, error)
	ListActiveByUser(ctx context.Context, userID string) ([]model.Habit, error)
}

// LogRepository is implemented by repository.LogRepository.
type LogRepository interface {
	Create(ctx context.Context, userID string, l *model.HabitLog) error
	UpdateNotes(ctx context.Context, userID, logID string, notes *string) (*model.HabitLog, error)
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]model.HabitLog, error)
}

// SnapshotCache is implemented by cache.SnapshotCache.
type SnapshotCache interface {
	Get(ctx context.Context, userID string) (store.Snapshot, bool)
	Put(ctx context.Context, userID string, snap store.Snapshot) error
	Invalidate(ctx context.Context, userID string) error
}

// Deduper is implemented by util.Deduper.
type Deduper interface {
	AcquireOnce(ctx context.Context, scope, id string) bool
	Release(ctx context.Context, scope, id string)
}
