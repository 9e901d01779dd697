package model

import (
	"strings"
	"time"
)

type Habit struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	TriggerCue    string    `json:"trigger_cue"`
	TimeOfDay     TimeOfDay `json:"time_of_day"`
	Frequency     Frequency `json:"frequency"`
	Category      Category  `json:"category"`
	TwoMinuteRule bool      `json:"two_minute_rule"`
	Archived      bool      `json:"archived"`
	CreatedAt     time.Time `json:"created_at"`
}

// ScheduledOn reports whether an active habit is due on the given weekday.
func (h *Habit) ScheduledOn(d Weekday) bool {
	return !h.Archived && h.Frequency.Includes(d)
}

// Validate checks the fields the habit wizard requires.
func (h *Habit) Validate() error {
	if strings.TrimSpace(h.Title) == "" {
		return ErrMissingTitle
	}
	if strings.TrimSpace(h.TriggerCue) == "" {
		return ErrMissingTrigger
	}
	if _, err := ParseTimeOfDay(string(h.TimeOfDay)); err != nil {
		return err
	}
	if _, err := ParseCategory(string(h.Category)); err != nil {
		return err
	}
	if !h.Archived && len(h.Frequency) == 0 {
		return ErrEmptyFrequency
	}
	return nil
}

// ApplyDefaults fills in the wizard defaults for unset fields.
func (h *Habit) ApplyDefaults() {
	if h.TimeOfDay == "" {
		h.TimeOfDay = Morning
	}
	if h.Category == "" {
		h.Category = Health
	}
	if h.Frequency == nil {
		h.Frequency = append(Frequency(nil), AllWeekdays...)
	}
}
