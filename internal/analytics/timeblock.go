package analytics

import "habitflow/internal/model"

// HabitsForTimeBlock keeps the active habits in block that are scheduled today, in input order.
func (e *Engine) HabitsForTimeBlock(habits []model.Habit, block model.TimeOfDay) []model.Habit {
	code := e.todayCode()
	out := make([]model.Habit, 0, len(habits))
	for _, h := range habits {
		if h.TimeOfDay == block && h.ScheduledOn(code) {
			out = append(out, h)
		}
	}
	return out
}

// LaterHabits are today's active habits that belong to any block other than block.
func (e *Engine) LaterHabits(habits []model.Habit, block model.TimeOfDay) []model.Habit {
	code := e.todayCode()
	out := make([]model.Habit, 0, len(habits))
	for _, h := range habits {
		if h.TimeOfDay != block && h.ScheduledOn(code) {
			out = append(out, h)
		}
	}
	return out
}

// CurrentTimeBlock buckets the current hour: before noon morning, before 17:00 afternoon.
func (e *Engine) CurrentTimeBlock() model.TimeOfDay {
	return TimeBlockForHour(e.Now().Hour())
}

func TimeBlockForHour(hour int) model.TimeOfDay {
	switch {
	case hour < 12:
		return model.Morning
	case hour < 17:
		return model.Afternoon
	default:
		return model.Evening
	}
}

// Greeting matches CurrentTimeBlock.
func (e *Engine) Greeting() string {
	switch e.CurrentTimeBlock() {
	case model.Morning:
		return "Good Morning"
	case model.Afternoon:
		return "Good Afternoon"
	default:
		return "Good Evening"
	}
}
