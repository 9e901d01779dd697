package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitflow/internal/model"
)

func TestStore_AddAndSnapshot(t *testing.T) {
	s := New()
	s.SetHabits([]model.Habit{{ID: "h1", Title: "Read"}})
	s.AddHabit(model.Habit{ID: "h2", Title: "Walk"})
	s.AddLog(model.HabitLog{ID: "l1", HabitID: "h1", Status: model.StatusCompleted})

	snap := s.Snapshot()
	require.Len(t, snap.Habits, 2)
	require.Len(t, snap.Logs, 1)
	assert.Equal(t, "h2", snap.Habits[1].ID)

	// mutating the snapshot must not leak back into the store
	snap.Habits[0].Title = "changed"
	assert.Equal(t, "Read", s.Habits()[0].Title)
}

func TestStore_AddLogKeepsNewestFirst(t *testing.T) {
	day := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	s := New()
	s.SetLogs([]model.HabitLog{
		{ID: "l3", CompletedAt: day.Add(9 * time.Hour)},
		{ID: "l1", CompletedAt: day.Add(7 * time.Hour)},
	})

	s.AddLog(model.HabitLog{ID: "l4", CompletedAt: day.Add(10 * time.Hour)})
	s.AddLog(model.HabitLog{ID: "l2", CompletedAt: day.Add(8 * time.Hour)})
	s.AddLog(model.HabitLog{ID: "l0", CompletedAt: day.Add(6 * time.Hour)})

	var ids []string
	for _, l := range s.Snapshot().Logs {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"l4", "l3", "l2", "l1", "l0"}, ids)
}

func TestStore_UpdateLog(t *testing.T) {
	s := New()
	s.AddLog(model.HabitLog{ID: "temp-1", HabitID: "h1", Status: model.StatusSkipped})

	realID := "4f1c"
	notes := "too tired"
	ok := s.UpdateLog("temp-1", model.LogPatch{ID: &realID, Notes: &notes})
	require.True(t, ok)

	logs := s.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, realID, logs[0].ID)
	require.NotNil(t, logs[0].Notes)
	assert.Equal(t, "too tired", *logs[0].Notes)

	assert.False(t, s.UpdateLog("missing", model.LogPatch{Notes: &notes}))
}

func TestFromSnapshot_Copies(t *testing.T) {
	habits := []model.Habit{{ID: "h1"}}
	s := FromSnapshot(Snapshot{Habits: habits})
	habits[0].ID = "mutated"
	assert.Equal(t, "h1", s.Habits()[0].ID)
	assert.Empty(t, s.Logs())
}
