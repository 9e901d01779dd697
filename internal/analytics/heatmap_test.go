package analytics

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitflow/internal/model"
)

func TestEngine_Heatmap(t *testing.T) {
	e := newTestEngine(monday)
	habits := []model.Habit{dailyHabit("h1", model.Morning)}
	start := civil.Date{Year: 2026, Month: time.October, Day: 10}
	end := civil.Date{Year: 2026, Month: time.October, Day: 12}

	logs := []model.HabitLog{
		completed("h1", time.Date(2026, time.October, 11, 9, 0, 0, 0, time.UTC)),
		withStatus("h1", time.Date(2026, time.October, 12, 9, 0, 0, 0, time.UTC), model.StatusSkipped),
	}

	days := e.Heatmap(logs, habits, start, end)
	require.Len(t, days, 3)

	intensities := make([]float64, len(days))
	for i, d := range days {
		intensities[i] = d.Intensity
		assert.Equal(t, 1, d.Total)
	}
	assert.Equal(t, []float64{0, 1, 0}, intensities)
	assert.Equal(t, start, days[0].Date)
	assert.Equal(t, end, days[2].Date)
	assert.Equal(t, 1, days[1].Count)
}

func TestEngine_Heatmap_ScheduleAndBounds(t *testing.T) {
	e := newTestEngine(monday)

	weekdays := dailyHabit("wk", model.Morning)
	weekdays.Frequency = model.Frequency{model.Mon, model.Tue, model.Wed, model.Thu, model.Fri}
	archived := dailyHabit("old", model.Morning)
	archived.Archived = true

	sat := civil.Date{Year: 2026, Month: time.October, Day: 10}
	mon := civil.Date{Year: 2026, Month: time.October, Day: 12}

	logs := []model.HabitLog{
		completed("wk", time.Date(2026, time.October, 10, 9, 0, 0, 0, time.UTC)),
		completed("wk", time.Date(2026, time.October, 9, 9, 0, 0, 0, time.UTC)),
	}

	days := e.Heatmap(logs, []model.Habit{weekdays, archived}, sat, mon)
	require.Len(t, days, 3)

	// Saturday: a completion with nothing scheduled yields 0, not NaN
	assert.Equal(t, 1, days[0].Count)
	assert.Equal(t, 0, days[0].Total)
	assert.Equal(t, 0.0, days[0].Intensity)

	assert.Equal(t, 1, days[2].Total)
	assert.Equal(t, 0.0, days[2].Intensity)

	assert.Empty(t, e.Heatmap(logs, nil, mon, sat))
	assert.Len(t, e.Heatmap(nil, nil, mon, mon), 1)
}

func TestEngine_YearHeatmap(t *testing.T) {
	e := newTestEngine(monday)
	days := e.YearHeatmap(nil, nil)
	require.NotEmpty(t, days)
	assert.Equal(t, e.YearStart(), days[0].Date)
	assert.Equal(t, e.Today(), days[len(days)-1].Date)
	assert.Len(t, days, e.Today().DaysSince(e.YearStart())+1)
}
