package analytics

import "habitflow/internal/model"

// DidMissYesterday is true when habitID has an explicit non-completed log yesterday.
// A day without any log is not a miss.
func (e *Engine) DidMissYesterday(logs []model.HabitLog, habitID string) bool {
	yesterday := e.Yesterday()
	for _, l := range logs {
		if l.HabitID == habitID && l.Status != model.StatusCompleted && e.DayOf(l.CompletedAt) == yesterday {
			return true
		}
	}
	return false
}

func (e *Engine) IsCompletedToday(logs []model.HabitLog, habitID string) bool {
	today := e.Today()
	for _, l := range logs {
		if l.HabitID == habitID && l.Status == model.StatusCompleted && e.DayOf(l.CompletedAt) == today {
			return true
		}
	}
	return false
}
