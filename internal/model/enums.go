package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay 习惯出现的时间段
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
)

// ParseTimeOfDay rejects anything outside morning/afternoon/evening.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	switch t := TimeOfDay(s); t {
	case Morning, Afternoon, Evening:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Category 习惯分类
type Category string

const (
	Health Category = "health"
	Wealth Category = "wealth"
	Wisdom Category = "wisdom"
)

func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case Health, Wealth, Wisdom:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

func (c *Category) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Status 打卡状态
type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusCompleted, StatusSkipped, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Weekday is a three-letter English weekday code (Mon..Sun).
type Weekday string

const (
	Mon Weekday = "Mon"
	Tue Weekday = "Tue"
	Wed Weekday = "Wed"
	Thu Weekday = "Thu"
	Fri Weekday = "Fri"
	Sat Weekday = "Sat"
	Sun Weekday = "Sun"
)

// AllWeekdays is the wizard default: every day, Monday first.
var AllWeekdays = []Weekday{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

var weekdayCodes = [...]Weekday{
	time.Sunday:    Sun,
	time.Monday:    Mon,
	time.Tuesday:   Tue,
	time.Wednesday: Wed,
	time.Thursday:  Thu,
	time.Friday:    Fri,
	time.Saturday:  Sat,
}

// WeekdayOf maps a time.Weekday to its code.
func WeekdayOf(d time.Weekday) Weekday {
	return weekdayCodes[d]
}

func ParseWeekday(s string) (Weekday, error) {
	for _, w := range weekdayCodes {
		if string(w) == s {
			return w, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}

func (w *Weekday) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseWeekday(s)
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// Frequency is the set of weekdays a habit is scheduled on.
type Frequency []Weekday

func (f Frequency) Includes(d Weekday) bool {
	for _, w := range f {
		if w == d {
			return true
		}
	}
	return false
}

// ParseFrequency converts raw codes (as stored in the text[] column) into a Frequency.
func ParseFrequency(codes []string) (Frequency, error) {
	out := make(Frequency, 0, len(codes))
	for _, c := range codes {
		w, err := ParseWeekday(c)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// Strings returns the codes as plain strings for storage.
func (f Frequency) Strings() []string {
	out := make([]string, len(f))
	for i, w := range f {
		out[i] = string(w)
	}
	return out
}
