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
)

type LogRepository struct {
	db         *pgxpool.Pool
	outboxRepo *outbox.Repository
	logger     *zap.Logger
}

func NewLogRepository(db *pgxpool.Pool, outboxRepo *outbox.Repository, logger *zap.Logger) *LogRepository {
	return &LogRepository{db: db, outboxRepo: outboxRepo, logger: logger}
}

const logColumns = `id, habit_id, completed_at, status, notes`

// Create inserts the log and stages a habit.log.recorded event in the same transaction.
func (r *LogRepository) Create(ctx context.Context, userID string, l *model.HabitLog) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("insert", "habit_logs", time.Since(start)) }()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        INSERT INTO habit_logs (id, habit_id, user_id, completed_at, status, notes)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, l.ID, l.HabitID, userID, l.CompletedAt, string(l.Status), l.Notes)
	if err != nil {
		r.logger.Error("Failed to insert habit log",
			zap.String("habit_id", l.HabitID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to insert habit log: %w", err)
	}

	payload := mqcontracts.HabitLogRecordedPayload{
		Envelope:    newEnvelope(ctx, userID),
		HabitID:     l.HabitID,
		LogID:       l.ID,
		Status:      string(l.Status),
		CompletedAt: l.CompletedAt,
	}
	if err := outbox.InsertEventInTx(ctx, tx, r.outboxRepo, "habit_log", l.ID, mqcontracts.RoutingHabitLogRecorded, payload); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit habit log: %w", err)
	}

	r.logger.Info("Habit log recorded",
		zap.String("log_id", l.ID),
		zap.String("habit_id", l.HabitID),
		zap.String("status", string(l.Status)),
	)
	return nil
}

// UpdateNotes replaces the notes of a log owned by the user and returns the stored row.
func (r *LogRepository) UpdateNotes(ctx context.Context, userID, logID string, notes *string) (*model.HabitLog, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("update", "habit_logs", time.Since(start)) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        UPDATE habit_logs
        SET notes = $1
        WHERE id = $2 AND user_id = $3
        RETURNING ` + logColumns
	l, err := scanLog(tx.QueryRow(ctx, query, notes, logID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", model.ErrLogNotFound, logID)
		}
		return nil, err
	}

	payload := mqcontracts.HabitLogNotedPayload{
		Envelope: newEnvelope(ctx, userID),
		LogID:    logID,
	}
	if err := outbox.InsertEventInTx(ctx, tx, r.outboxRepo, "habit_log", logID, mqcontracts.RoutingHabitLogNoted, payload); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit notes: %w", err)
	}

	r.logger.Debug("Habit log notes updated", zap.String("log_id", logID))
	return l, nil
}

// ListRecentByUser returns the newest logs first, at most limit rows.
func (r *LogRepository) ListRecentByUser(ctx context.Context, userID string, limit int) ([]model.HabitLog, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("select", "habit_logs", time.Since(start)) }()

	query := `
        SELECT ` + logColumns + `
        FROM habit_logs
        WHERE user_id = $1
        ORDER BY completed_at DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query habit logs: %w", err)
	}
	defer rows.Close()

	logs := []model.HabitLog{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.logger.Debug("Loaded habit logs", zap.String("user_id", userID), zap.Int("count", len(logs)))
	return logs, nil
}

func scanLog(row pgx.Row) (*model.HabitLog, error) {
	var (
		l      model.HabitLog
		status string
	)
	err := row.Scan(&l.ID, &l.HabitID, &l.CompletedAt, &status, &l.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan habit log: %w", err)
	}
	if l.Status, err = model.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("log %s: %w", l.ID, err)
	}
	return &l, nil
}
