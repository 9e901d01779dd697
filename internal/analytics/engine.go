// Package analytics derives streaks, day progress, time-block selections, trigger
// groupings and heatmaps from fetched habit records.
//
// Every computation is pure: it reads the slices it is given and returns a fresh
// value. Calendar days are taken in the engine's location, so the same log can fall
// on different days for users in different time zones.
package analytics

import (
	"time"

	"cloud.google.com/go/civil"

	"habitflow/internal/model"
)

type Engine struct {
	loc *time.Location
	now func() time.Time
}

type Option func(*Engine)

// WithLocation sets the time zone used to map timestamps to calendar days.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		loc: time.Local,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// In returns a copy of the engine bound to loc.
func (e *Engine) In(loc *time.Location) *Engine {
	c := *e
	if loc != nil {
		c.loc = loc
	}
	return &c
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

// Now is the current instant in the engine's location.
func (e *Engine) Now() time.Time {
	return e.now().In(e.loc)
}

// Today is the current calendar day.
func (e *Engine) Today() civil.Date {
	return civil.DateOf(e.Now())
}

// Yesterday is the calendar day before Today.
func (e *Engine) Yesterday() civil.Date {
	return e.Today().AddDays(-1)
}

// YearStart is January 1st of the current year.
func (e *Engine) YearStart() civil.Date {
	return civil.Date{Year: e.Today().Year, Month: time.January, Day: 1}
}

// DayOf maps a timestamp to its calendar day, discarding the time of day.
func (e *Engine) DayOf(t time.Time) civil.Date {
	return civil.DateOf(t.In(e.loc))
}

// WeekdayCode returns the three-letter code for d.
func WeekdayCode(d civil.Date) model.Weekday {
	return model.WeekdayOf(d.In(time.UTC).Weekday())
}

func (e *Engine) todayCode() model.Weekday {
	return WeekdayCode(e.Today())
}
