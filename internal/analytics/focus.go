package analytics

import (
	"habitflow/internal/model"
	"habitflow/internal/store"
)

type HabitCard struct {
	Habit     model.Habit `json:"habit"`
	Completed bool        `json:"completed"`
	Emergency bool        `json:"emergency"`
}

type CardGroup struct {
	Trigger string      `json:"trigger"`
	Cards   []HabitCard `json:"cards"`
}

// FocusView is everything the "now" dashboard renders.
type FocusView struct {
	Greeting  string          `json:"greeting"`
	TimeBlock model.TimeOfDay `json:"time_block"`
	Now       []CardGroup     `json:"now"`
	Later     []model.Habit   `json:"later"`
	Remaining int             `json:"remaining"`
	BlockWon  bool            `json:"block_won"`
	Streak    int             `json:"streak"`
	Progress  float64         `json:"progress"`
}

// Focus assembles the dashboard for the current time block from snap.
func (e *Engine) Focus(snap store.Snapshot) FocusView {
	block := e.CurrentTimeBlock()
	now := e.HabitsForTimeBlock(snap.Habits, block)

	view := FocusView{
		Greeting:  e.Greeting(),
		TimeBlock: block,
		Later:     e.LaterHabits(snap.Habits, block),
		Streak:    e.CurrentStreak(snap.Logs),
		Progress:  e.DayProgress(snap.Logs, snap.Habits),
		BlockWon:  true,
	}

	for _, g := range GroupByTrigger(now) {
		group := CardGroup{Trigger: g.Trigger}
		for _, h := range g.Habits {
			done := e.IsCompletedToday(snap.Logs, h.ID)
			if !done {
				view.Remaining++
				view.BlockWon = false
			}
			group.Cards = append(group.Cards, HabitCard{
				Habit:     h,
				Completed: done,
				Emergency: !done && e.DidMissYesterday(snap.Logs, h.ID),
			})
		}
		view.Now = append(view.Now, group)
	}
	return view
}

type HabitSummary struct {
	CompletionRate
	Title  string `json:"title"`
	Streak int    `json:"streak"`
}

// Report is the analytics page: heatmap, per-habit rates and streaks, reflection prompts.
type Report struct {
	Heatmap     []HeatmapDay       `json:"heatmap"`
	Habits      []HabitSummary     `json:"habits"`
	Reflections []ReflectionPrompt `json:"reflections"`
}

// BuildReport summarizes the active habits of snap over heatmap entries.
func (e *Engine) BuildReport(snap store.Snapshot, heatmap []HeatmapDay) Report {
	active := make([]model.Habit, 0, len(snap.Habits))
	for _, h := range snap.Habits {
		if !h.Archived {
			active = append(active, h)
		}
	}

	rates := CompletionRates(snap.Logs, active)
	summaries := make([]HabitSummary, 0, len(active))
	for i, h := range active {
		summaries = append(summaries, HabitSummary{
			CompletionRate: rates[i],
			Title:          h.Title,
			Streak:         e.CalculateStreak(snap.Logs, h.ID),
		})
	}

	return Report{
		Heatmap:     heatmap,
		Habits:      summaries,
		Reflections: e.ReflectionPrompts(snap.Logs, snap.Habits),
	}
}
