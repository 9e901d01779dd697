package model

import "errors"

var (
	ErrHabitNotFound    = errors.New("habit not found")
	ErrLogNotFound      = errors.New("habit log not found")
	ErrInvalidStatus    = errors.New("invalid log status")
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidWeekday   = errors.New("invalid weekday code")
	ErrEmptyFrequency   = errors.New("frequency must contain at least one weekday")
	ErrMissingTitle     = errors.New("title is required")
	ErrMissingTrigger   = errors.New("trigger cue is required")
)
