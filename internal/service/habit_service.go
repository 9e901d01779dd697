package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"habitflow/internal/model"
	"habitflow/internal/store"
	"habitflow/pkg/logger"
	"habitflow/pkg/metrics"
)

var ErrDuplicateSubmission = errors.New("duplicate submission")

// HabitInput is the habit wizard payload. Zero values take the wizard defaults.
type HabitInput struct {
	Title         string
	TriggerCue    string
	TimeOfDay     model.TimeOfDay
	Frequency     model.Frequency
	Category      model.Category
	TwoMinuteRule bool
}

// LogInput records one outcome for a habit. CompletedAt defaults to now.
type LogInput struct {
	Status         model.Status
	Notes          *string
	CompletedAt    *time.Time
	IdempotencyKey string
}

type HabitService struct {
	habits    HabitRepository
	logs      LogRepository
	cache     SnapshotCache
	deduper   Deduper
	logWindow int
	now       func() time.Time
	logger    *zap.Logger
}

func NewHabitService(
	habits HabitRepository,
	logs LogRepository,
	cache SnapshotCache,
	deduper Deduper,
	logWindow int,
	logger *zap.Logger,
) *HabitService {
	if logWindow <= 0 {
		logWindow = 1000
	}
	return &HabitService{
		habits:    habits,
		logs:      logs,
		cache:     cache,
		deduper:   deduper,
		logWindow: logWindow,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces time.Now.
func (s *HabitService) WithClock(now func() time.Time) *HabitService {
	s.now = now
	return s
}

func (s *HabitService) ListHabits(ctx context.Context, userID string) ([]model.Habit, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return snap.Habits, nil
}

func (s *HabitService) CreateHabit(ctx context.Context, userID string, in HabitInput) (*model.Habit, error) {
	h := &model.Habit{
		UserID:        userID,
		Title:         strings.TrimSpace(in.Title),
		TriggerCue:    strings.TrimSpace(in.TriggerCue),
		TimeOfDay:     in.TimeOfDay,
		Frequency:     in.Frequency,
		Category:      in.Category,
		TwoMinuteRule: in.TwoMinuteRule,
	}
	h.ApplyDefaults()
	if err := h.Validate(); err != nil {
		return nil, err
	}

	if err := s.habits.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	metrics.IncrementHabitChange("created")

	s.patchCache(ctx, userID, func(st *store.Store) { st.AddHabit(*h) })
	return h, nil
}

func (s *HabitService) ArchiveHabit(ctx context.Context, userID, habitID string) error {
	if err := s.habits.Archive(ctx, userID, habitID); err != nil {
		return fmt.Errorf("archive habit: %w", err)
	}
	metrics.IncrementHabitChange("archived")

	s.patchCache(ctx, userID, func(st *store.Store) {
		kept := make([]model.Habit, 0)
		for _, h := range st.Habits() {
			if h.ID != habitID {
				kept = append(kept, h)
			}
		}
		st.SetHabits(kept)
	})
	return nil
}

// LogHabit stores one outcome for a habit owned by the user.
func (s *HabitService) LogHabit(ctx context.Context, userID, habitID string, in LogInput) (*model.HabitLog, error) {
	if _, err := model.ParseStatus(string(in.Status)); err != nil {
		return nil, err
	}
	if _, err := s.habits.GetByID(ctx, userID, habitID); err != nil {
		return nil, err
	}

	scope := "habit-log:" + userID
	locked := in.IdempotencyKey != "" && s.deduper != nil
	if locked && !s.deduper.AcquireOnce(ctx, scope, in.IdempotencyKey) {
		return nil, ErrDuplicateSubmission
	}

	completedAt := s.now()
	if in.CompletedAt != nil {
		completedAt = *in.CompletedAt
	}
	l := &model.HabitLog{
		HabitID:     habitID,
		CompletedAt: completedAt.UTC(),
		Status:      in.Status,
		Notes:       in.Notes,
	}
	if err := s.logs.Create(ctx, userID, l); err != nil {
		// 未落库的提交允许用同一个 key 重试
		if locked {
			s.deduper.Release(ctx, scope, in.IdempotencyKey)
		}
		return nil, fmt.Errorf("record habit log: %w", err)
	}
	metrics.IncrementHabitLog(string(l.Status))

	logger.WithTrace(ctx, s.logger).Info("Habit logged",
		zap.String("user_id", userID),
		zap.String("habit_id", habitID),
		zap.String("status", string(l.Status)),
	)

	s.patchCache(ctx, userID, func(st *store.Store) { st.AddLog(*l) })
	return l, nil
}

// LogFriction records a skipped log and then attaches the reason as its notes.
func (s *HabitService) LogFriction(ctx context.Context, userID, habitID, reason string) (*model.HabitLog, error) {
	l, err := s.LogHabit(ctx, userID, habitID, LogInput{Status: model.StatusSkipped})
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = model.DefaultFrictionReason
	}
	return s.UpdateNotes(ctx, userID, l.ID, &reason)
}

func (s *HabitService) UpdateNotes(ctx context.Context, userID, logID string, notes *string) (*model.HabitLog, error) {
	l, err := s.logs.UpdateNotes(ctx, userID, logID, notes)
	if err != nil {
		return nil, fmt.Errorf("update notes: %w", err)
	}

	if notes == nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			s.logger.Warn("Failed to invalidate snapshot", zap.String("user_id", userID), zap.Error(err))
		}
		return l, nil
	}
	s.patchCache(ctx, userID, func(st *store.Store) {
		st.UpdateLog(logID, model.LogPatch{Notes: notes})
	})
	return l, nil
}

// Snapshot returns the user's records, from cache when possible.
func (s *HabitService) Snapshot(ctx context.Context, userID string) (store.Snapshot, error) {
	if snap, ok := s.cache.Get(ctx, userID); ok {
		return snap, nil
	}
	snap, err := s.load(ctx, userID)
	if err != nil {
		return store.Snapshot{}, err
	}
	if err := s.cache.Put(ctx, userID, snap); err != nil {
		s.logger.Warn("Failed to cache snapshot", zap.String("user_id", userID), zap.Error(err))
	}
	return snap, nil
}

// RefreshSnapshot reloads the user's records from the database and rewrites the cache.
func (s *HabitService) RefreshSnapshot(ctx context.Context, userID string) (store.Snapshot, error) {
	snap, err := s.load(ctx, userID)
	if err != nil {
		return store.Snapshot{}, err
	}
	if err := s.cache.Put(ctx, userID, snap); err != nil {
		return store.Snapshot{}, err
	}
	return snap, nil
}

func (s *HabitService) load(ctx context.Context, userID string) (store.Snapshot, error) {
	habits, err := s.habits.ListActiveByUser(ctx, userID)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("load habits: %w", err)
	}
	logs, err := s.logs.ListRecentByUser(ctx, userID, s.logWindow)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("load logs: %w", err)
	}

	st := store.New()
	st.SetHabits(habits)
	st.SetLogs(logs)
	return st.Snapshot(), nil
}

// patchCache applies fn to a cached snapshot. A miss is left alone; the next read reloads.
func (s *HabitService) patchCache(ctx context.Context, userID string, fn func(*store.Store)) {
	snap, ok := s.cache.Get(ctx, userID)
	if !ok {
		return
	}
	st := store.FromSnapshot(snap)
	fn(st)
	if err := s.cache.Put(ctx, userID, st.Snapshot()); err != nil {
		s.logger.Warn("Failed to patch snapshot, invalidating", zap.String("user_id", userID), zap.Error(err))
		_ = s.cache.Invalidate(ctx, userID)
	}
}
