package analytics

import "habitflow/internal/model"

type TriggerGroup struct {
	Trigger string        `json:"trigger"`
	Habits  []model.Habit `json:"habits"`
}

// GroupByTrigger groups habits by exact trigger_cue. Groups appear in first-seen order
// and keep input order inside each group. Cues are not normalized.
func GroupByTrigger(habits []model.Habit) []TriggerGroup {
	index := make(map[string]int)
	var groups []TriggerGroup
	for _, h := range habits {
		i, ok := index[h.TriggerCue]
		if !ok {
			i = len(groups)
			index[h.TriggerCue] = i
			groups = append(groups, TriggerGroup{Trigger: h.TriggerCue})
		}
		groups[i].Habits = append(groups[i].Habits, h)
	}
	return groups
}
