package mq

import "time"

// Routing keys on the events exchange
const (
	RoutingHabitCreated     = "habit.created"
	RoutingHabitArchived    = "habit.archived"
	RoutingHabitLogRecorded = "habit.log.recorded"
	RoutingHabitLogNoted    = "habit.log.noted"
)

// HabitRoutingKeys 快照刷新关心的全部事件
var HabitRoutingKeys = []string{
	RoutingHabitCreated,
	RoutingHabitArchived,
	RoutingHabitLogRecorded,
	RoutingHabitLogNoted,
}

// Envelope 所有习惯事件共有的字段
type Envelope struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type HabitCreatedPayload struct {
	Envelope
	HabitID   string `json:"habit_id"`
	Title     string `json:"title"`
	TimeOfDay string `json:"time_of_day"`
}

type HabitArchivedPayload struct {
	Envelope
	HabitID string `json:"habit_id"`
}

type HabitLogRecordedPayload struct {
	Envelope
	HabitID     string    `json:"habit_id"`
	LogID       string    `json:"log_id"`
	Status      string    `json:"status"`
	CompletedAt time.Time `json:"completed_at"`
}

type HabitLogNotedPayload struct {
	Envelope
	LogID string `json:"log_id"`
}
