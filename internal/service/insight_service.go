package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"habitflow/internal/analytics"
	"habitflow/internal/model"
	"habitflow/internal/store"
	"habitflow/pkg/metrics"
)

// SnapshotSource is implemented by HabitService.
type SnapshotSource interface {
	Snapshot(ctx context.Context, userID string) (store.Snapshot, error)
}

// DefaultMaxRangeDays caps a heatmap request when no limit is configured.
const DefaultMaxRangeDays = 366

// ErrRangeTooLarge is returned when a report range spans more days than allowed.
var ErrRangeTooLarge = errors.New("date range too large")

// InsightService runs the analytics engine over a user's snapshot.
type InsightService struct {
	source       SnapshotSource
	engine       *analytics.Engine
	maxRangeDays int
	logger       *zap.Logger
}

// NewInsightService builds the service. maxRangeDays <= 0 falls back to DefaultMaxRangeDays.
func NewInsightService(source SnapshotSource, engine *analytics.Engine, maxRangeDays int, logger *zap.Logger) *InsightService {
	if maxRangeDays <= 0 {
		maxRangeDays = DefaultMaxRangeDays
	}
	return &InsightService{source: source, engine: engine, maxRangeDays: maxRangeDays, logger: logger}
}

// ReportRange bounds the heatmap. Nil ends default to the start of the year and today.
type ReportRange struct {
	From *civil.Date
	To   *civil.Date
}

func (s *InsightService) Focus(ctx context.Context, userID string, loc *time.Location) (analytics.FocusView, error) {
	snap, err := s.source.Snapshot(ctx, userID)
	if err != nil {
		return analytics.FocusView{}, err
	}

	start := time.Now()
	view := s.engine.In(loc).Focus(snap)
	metrics.RecordAnalyticsCompute("focus", time.Since(start))
	return view, nil
}

func (s *InsightService) Report(ctx context.Context, userID string, loc *time.Location, r ReportRange) (analytics.Report, error) {
	engine := s.engine.In(loc)
	from, to := engine.YearStart(), engine.Today()
	if r.From != nil {
		from = *r.From
	}
	if r.To != nil {
		to = *r.To
	}
	if days := to.DaysSince(from) + 1; days > s.maxRangeDays {
		return analytics.Report{}, fmt.Errorf("%w: %s..%s exceeds %d days", ErrRangeTooLarge, from, to, s.maxRangeDays)
	}

	snap, err := s.source.Snapshot(ctx, userID)
	if err != nil {
		return analytics.Report{}, err
	}

	start := time.Now()
	report := engine.BuildReport(snap, engine.Heatmap(snap.Logs, snap.Habits, from, to))
	metrics.RecordAnalyticsCompute("report", time.Since(start))

	s.logger.Debug("Report built",
		zap.String("user_id", userID),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Int("days", len(report.Heatmap)),
	)
	return report, nil
}

// Streak returns the streak of one active habit.
func (s *InsightService) Streak(ctx context.Context, userID, habitID string, loc *time.Location) (int, error) {
	snap, err := s.source.Snapshot(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !hasHabit(snap.Habits, habitID) {
		return 0, fmt.Errorf("%w: %s", model.ErrHabitNotFound, habitID)
	}

	start := time.Now()
	streak := s.engine.In(loc).CalculateStreak(snap.Logs, habitID)
	metrics.RecordAnalyticsCompute("streak", time.Since(start))
	return streak, nil
}

func hasHabit(habits []model.Habit, id string) bool {
	for _, h := range habits {
		if h.ID == id {
			return true
		}
	}
	return false
}
