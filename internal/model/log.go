package model

import "time"

type HabitLog struct {
	ID          string    `json:"id"`
	HabitID     string    `json:"habit_id"`
	CompletedAt time.Time `json:"completed_at"`
	Status      Status    `json:"status"`
	Notes       *string   `json:"notes,omitempty"`
}

// LogPatch carries the fields that may change on an existing log.
type LogPatch struct {
	ID    *string
	Notes *string
}

// DefaultFrictionReason is stored when a skip is submitted without a reason.
const DefaultFrictionReason = "No reason provided"
