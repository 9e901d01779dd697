package analytics

import (
	"sort"

	"cloud.google.com/go/civil"

	"habitflow/internal/model"
)

// completedDays returns the distinct days with a completed log for habitID, newest first.
func (e *Engine) completedDays(logs []model.HabitLog, habitID string) []civil.Date {
	seen := make(map[civil.Date]struct{})
	var days []civil.Date
	for _, l := range logs {
		if l.HabitID != habitID || l.Status != model.StatusCompleted {
			continue
		}
		d := e.DayOf(l.CompletedAt)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}

// CalculateStreak counts consecutive completed days for habitID ending today, or
// ending yesterday when today has no completion yet.
func (e *Engine) CalculateStreak(logs []model.HabitLog, habitID string) int {
	days := e.completedDays(logs, habitID)
	if len(days) == 0 {
		return 0
	}

	expected := e.Today()
	todayDone := false
	for _, d := range days {
		if d == expected {
			todayDone = true
			break
		}
	}
	if !todayDone {
		expected = expected.AddDays(-1)
	}

	streak := 0
	for _, d := range days {
		switch {
		case d == expected:
			streak++
			expected = expected.AddDays(-1)
		case d.Before(expected):
			return streak
		}
		// days after the anchor are skipped
	}
	return streak
}

// CurrentStreak is the weakest streak among every habit that appears in logs,
// whatever the status of its logs. Habits without any log are not considered.
func (e *Engine) CurrentStreak(logs []model.HabitLog) int {
	seen := make(map[string]struct{})
	minStreak := -1
	for _, l := range logs {
		if _, ok := seen[l.HabitID]; ok {
			continue
		}
		seen[l.HabitID] = struct{}{}
		s := e.CalculateStreak(logs, l.HabitID)
		if minStreak < 0 || s < minStreak {
			minStreak = s
		}
	}
	if minStreak < 0 {
		return 0
	}
	return minStreak
}
