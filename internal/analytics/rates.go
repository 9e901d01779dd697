package analytics

import "habitflow/internal/model"

type CompletionRate struct {
	HabitID   string  `json:"habit_id"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Rate      float64 `json:"rate"`
}

// CompletionRates reports, per habit and in input order, completed logs over all logs.
func CompletionRates(logs []model.HabitLog, habits []model.Habit) []CompletionRate {
	type tally struct{ completed, total int }
	byHabit := make(map[string]*tally, len(habits))
	for _, l := range logs {
		t, ok := byHabit[l.HabitID]
		if !ok {
			t = &tally{}
			byHabit[l.HabitID] = t
		}
		t.total++
		if l.Status == model.StatusCompleted {
			t.completed++
		}
	}

	out := make([]CompletionRate, 0, len(habits))
	for _, h := range habits {
		r := CompletionRate{HabitID: h.ID}
		if t, ok := byHabit[h.ID]; ok {
			r.Completed, r.Total = t.completed, t.total
		}
		if r.Total > 0 {
			r.Rate = float64(r.Completed) / float64(r.Total) * 100
		}
		out = append(out, r)
	}
	return out
}

type ReflectionPrompt struct {
	Habit model.Habit `json:"habit"`
	Notes string      `json:"notes,omitempty"`
}

// ReflectionPrompts lists habits with a non-completed log today. Notes come from the
// first log of that habit found for today, whatever its status.
func (e *Engine) ReflectionPrompts(logs []model.HabitLog, habits []model.Habit) []ReflectionPrompt {
	today := e.Today()
	var out []ReflectionPrompt
	for _, h := range habits {
		var first *model.HabitLog
		friction := false
		for i := range logs {
			l := &logs[i]
			if l.HabitID != h.ID || e.DayOf(l.CompletedAt) != today {
				continue
			}
			if first == nil {
				first = l
			}
			if l.Status != model.StatusCompleted {
				friction = true
			}
		}
		if !friction {
			continue
		}
		p := ReflectionPrompt{Habit: h}
		if first.Notes != nil {
			p.Notes = *first.Notes
		}
		out = append(out, p)
	}
	return out
}
