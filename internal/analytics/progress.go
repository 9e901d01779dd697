package analytics

import "habitflow/internal/model"

// DayProgress is today's completed log count over the habits scheduled today, times 100.
//
// The numerator counts every completed log dated today, including logs of habits not
// scheduled today and repeated logs for one habit, so the result can exceed 100.
func (e *Engine) DayProgress(logs []model.HabitLog, habits []model.Habit) float64 {
	code := e.todayCode()
	scheduled := 0
	for i := range habits {
		if habits[i].ScheduledOn(code) {
			scheduled++
		}
	}
	if scheduled == 0 {
		return 0
	}

	today := e.Today()
	completed := 0
	for _, l := range logs {
		if l.Status == model.StatusCompleted && e.DayOf(l.CompletedAt) == today {
			completed++
		}
	}
	return float64(completed) / float64(scheduled) * 100
}
