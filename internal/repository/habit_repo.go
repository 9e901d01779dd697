package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	mqcontracts "habitflow/contracts/mq"
	"habitflow/internal/model"
	"habitflow/pkg/metrics"
	"habitflow/pkg/outbox"
	"habitflow/pkg/trace"
)

type HabitRepository struct {
	db         *pgxpool.Pool
	outboxRepo *outbox.Repository
	logger     *zap.Logger
}

func NewHabitRepository(db *pgxpool.Pool, outboxRepo *outbox.Repository, logger *zap.Logger) *HabitRepository {
	return &HabitRepository{db: db, outboxRepo: outboxRepo, logger: logger}
}

const habitColumns = `id, user_id, title, trigger_cue, time_of_day, frequency, category,
               two_minute_rule, archived, created_at`

// Create inserts the habit and stages a habit.created event in the same transaction.
func (r *HabitRepository) Create(ctx context.Context, h *model.Habit) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("insert", "habits", time.Since(start)) }()

	if h.ID == "" {
		h.ID = uuid.NewString()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO habits (id, user_id, title, trigger_cue, time_of_day, frequency, category, two_minute_rule, archived)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
        RETURNING created_at
    `
	err = tx.QueryRow(ctx, query,
		h.ID,
		h.UserID,
		h.Title,
		h.TriggerCue,
		string(h.TimeOfDay),
		h.Frequency.Strings(),
		string(h.Category),
		h.TwoMinuteRule,
	).Scan(&h.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert habit", zap.String("user_id", h.UserID), zap.Error(err))
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	payload := mqcontracts.HabitCreatedPayload{
		Envelope:  newEnvelope(ctx, h.UserID),
		HabitID:   h.ID,
		Title:     h.Title,
		TimeOfDay: string(h.TimeOfDay),
	}
	if err := outbox.InsertEventInTx(ctx, tx, r.outboxRepo, "habit", h.ID, mqcontracts.RoutingHabitCreated, payload); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit habit: %w", err)
	}

	r.logger.Info("Habit created",
		zap.String("habit_id", h.ID),
		zap.String("user_id", h.UserID),
		zap.String("time_of_day", string(h.TimeOfDay)),
	)
	return nil
}

// Archive marks the habit archived and stages a habit.archived event.
func (r *HabitRepository) Archive(ctx context.Context, userID, habitID string) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("update", "habits", time.Since(start)) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        UPDATE habits
        SET archived = TRUE
        WHERE id = $1 AND user_id = $2
    `, habitID, userID)
	if err != nil {
		return fmt.Errorf("failed to archive habit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", model.ErrHabitNotFound, habitID)
	}

	payload := mqcontracts.HabitArchivedPayload{
		Envelope: newEnvelope(ctx, userID),
		HabitID:  habitID,
	}
	if err := outbox.InsertEventInTx(ctx, tx, r.outboxRepo, "habit", habitID, mqcontracts.RoutingHabitArchived, payload); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit archive: %w", err)
	}

	r.logger.Info("Habit archived", zap.String("habit_id", habitID), zap.String("user_id", userID))
	return nil
}

// GetByID returns a habit owned by the user.
func (r *HabitRepository) GetByID(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	query := `
        SELECT ` + habitColumns + `
        FROM habits
        WHERE id = $1 AND user_id = $2
    `
	h, err := scanHabit(r.db.QueryRow(ctx, query, habitID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", model.ErrHabitNotFound, habitID)
		}
		return nil, err
	}
	return h, nil
}

// ListActiveByUser returns non-archived habits ordered by creation time.
func (r *HabitRepository) ListActiveByUser(ctx context.Context, userID string) ([]model.Habit, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("select", "habits", time.Since(start)) }()

	query := `
        SELECT ` + habitColumns + `
        FROM habits
        WHERE user_id = $1 AND archived = FALSE
        ORDER BY created_at ASC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	habits := []model.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.logger.Debug("Loaded habits", zap.String("user_id", userID), zap.Int("count", len(habits)))
	return habits, nil
}

func scanHabit(row pgx.Row) (*model.Habit, error) {
	var (
		h         model.Habit
		timeOfDay string
		category  string
		frequency []string
	)
	err := row.Scan(
		&h.ID,
		&h.UserID,
		&h.Title,
		&h.TriggerCue,
		&timeOfDay,
		&frequency,
		&category,
		&h.TwoMinuteRule,
		&h.Archived,
		&h.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan habit: %w", err)
	}
	if err := decodeHabit(&h, timeOfDay, category, frequency); err != nil {
		return nil, fmt.Errorf("habit %s: %w", h.ID, err)
	}
	return &h, nil
}

func decodeHabit(h *model.Habit, timeOfDay, category string, frequency []string) error {
	var err error
	if h.TimeOfDay, err = model.ParseTimeOfDay(timeOfDay); err != nil {
		return err
	}
	if h.Category, err = model.ParseCategory(category); err != nil {
		return err
	}
	if h.Frequency, err = model.ParseFrequency(frequency); err != nil {
		return err
	}
	return nil
}

func newEnvelope(ctx context.Context, userID string) mqcontracts.Envelope {
	return mqcontracts.Envelope{
		EventID:    uuid.NewString(),
		UserID:     userID,
		TraceID:    trace.FromContext(ctx),
		OccurredAt: time.Now().UTC(),
	}
}
