package analytics

import (
	"cloud.google.com/go/civil"

	"habitflow/internal/model"
)

type HeatmapDay struct {
	Date      civil.Date `json:"date"`
	Count     int        `json:"count"`
	Total     int        `json:"total"`
	Intensity float64    `json:"intensity"`
}

// Heatmap returns one entry per day from start to end inclusive. Count is the number of
// completed logs on the day; Total is the number of active habits whose current schedule
// includes that weekday. Intensity is Count/Total, or 0 when Total is 0.
func (e *Engine) Heatmap(logs []model.HabitLog, habits []model.Habit, start, end civil.Date) []HeatmapDay {
	if start.After(end) {
		return []HeatmapDay{}
	}

	counts := make(map[civil.Date]int)
	for _, l := range logs {
		if l.Status != model.StatusCompleted {
			continue
		}
		d := e.DayOf(l.CompletedAt)
		if d.Before(start) || d.After(end) {
			continue
		}
		counts[d]++
	}

	totals := make(map[model.Weekday]int, len(model.AllWeekdays))
	for _, w := range model.AllWeekdays {
		for i := range habits {
			if habits[i].ScheduledOn(w) {
				totals[w]++
			}
		}
	}

	days := make([]HeatmapDay, 0, end.DaysSince(start)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		entry := HeatmapDay{
			Date:  d,
			Count: counts[d],
			Total: totals[WeekdayCode(d)],
		}
		if entry.Total > 0 {
			entry.Intensity = float64(entry.Count) / float64(entry.Total)
		}
		days = append(days, entry)
	}
	return days
}

// YearHeatmap covers January 1st through today.
func (e *Engine) YearHeatmap(logs []model.HabitLog, habits []model.Habit) []HeatmapDay {
	return e.Heatmap(logs, habits, e.YearStart(), e.Today())
}
