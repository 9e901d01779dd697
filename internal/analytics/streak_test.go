package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"habitflow/internal/model"
)

func TestEngine_CalculateStreak(t *testing.T) {
	e := newTestEngine(monday)

	tests := []struct {
		name     string
		logs     []model.HabitLog
		expected int
	}{
		{
			name:     "no logs",
			logs:     nil,
			expected: 0,
		},
		{
			name: "only non-completed logs",
			logs: []model.HabitLog{
				withStatus("h1", daysAgo(0, 8), model.StatusSkipped),
				withStatus("h1", daysAgo(1, 8), model.StatusFailed),
			},
			expected: 0,
		},
		{
			name:     "single completion today",
			logs:     []model.HabitLog{completed("h1", daysAgo(0, 8))},
			expected: 1,
		},
		{
			name:     "single completion yesterday, none today",
			logs:     []model.HabitLog{completed("h1", daysAgo(1, 21))},
			expected: 1,
		},
		{
			name: "five consecutive days including today",
			logs: []model.HabitLog{
				completed("h1", daysAgo(0, 7)),
				completed("h1", daysAgo(1, 7)),
				completed("h1", daysAgo(2, 7)),
				completed("h1", daysAgo(3, 7)),
				completed("h1", daysAgo(4, 7)),
			},
			expected: 5,
		},
		{
			name: "run ending yesterday is not zeroed by today",
			logs: []model.HabitLog{
				completed("h1", daysAgo(1, 7)),
				completed("h1", daysAgo(2, 7)),
				completed("h1", daysAgo(3, 7)),
			},
			expected: 3,
		},
		{
			name: "gap breaks the streak",
			logs: []model.HabitLog{
				completed("h1", daysAgo(0, 7)),
				completed("h1", daysAgo(3, 7)),
			},
			expected: 1,
		},
		{
			name: "duplicate same-day completions count once",
			logs: []model.HabitLog{
				completed("h1", daysAgo(0, 7)),
				completed("h1", daysAgo(0, 9)),
				completed("h1", daysAgo(1, 7)),
				completed("h1", daysAgo(1, 23)),
			},
			expected: 2,
		},
		{
			name: "unsorted input",
			logs: []model.HabitLog{
				completed("h1", daysAgo(2, 7)),
				completed("h1", daysAgo(0, 7)),
				completed("h1", daysAgo(1, 7)),
			},
			expected: 3,
		},
		{
			name: "other habits are ignored",
			logs: []model.HabitLog{
				completed("h2", daysAgo(0, 7)),
				completed("h1", daysAgo(1, 7)),
				completed("h2", daysAgo(1, 7)),
			},
			expected: 1,
		},
		{
			name: "future-dated completion is skipped",
			logs: []model.HabitLog{
				completed("h1", daysAgo(-1, 7)),
				completed("h1", daysAgo(0, 7)),
				completed("h1", daysAgo(1, 7)),
			},
			expected: 2,
		},
		{
			name: "last completion two days ago",
			logs: []model.HabitLog{
				completed("h1", daysAgo(2, 7)),
				completed("h1", daysAgo(3, 7)),
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.CalculateStreak(tt.logs, "h1"))
		})
	}
}

func TestEngine_CalculateStreak_FailedYesterday(t *testing.T) {
	e := newTestEngine(monday)
	logs := []model.HabitLog{withStatus("h1", daysAgo(1, 18), model.StatusFailed)}

	assert.Equal(t, 0, e.CalculateStreak(logs, "h1"))
	assert.True(t, e.DidMissYesterday(logs, "h1"))
}

func TestEngine_CurrentStreak(t *testing.T) {
	e := newTestEngine(monday)

	t.Run("no logs", func(t *testing.T) {
		assert.Equal(t, 0, e.CurrentStreak(nil))
	})

	t.Run("minimum across logged habits", func(t *testing.T) {
		logs := []model.HabitLog{
			completed("h1", daysAgo(0, 7)),
			completed("h1", daysAgo(1, 7)),
			completed("h1", daysAgo(2, 7)),
			completed("h2", daysAgo(0, 7)),
			completed("h2", daysAgo(1, 7)),
		}
		assert.Equal(t, 2, e.CurrentStreak(logs))
	})

	t.Run("habit with only a skip pins the streak to zero", func(t *testing.T) {
		logs := []model.HabitLog{
			completed("h1", daysAgo(0, 7)),
			withStatus("h2", daysAgo(40, 7), model.StatusSkipped),
		}
		assert.Equal(t, 0, e.CurrentStreak(logs))
	})
}
