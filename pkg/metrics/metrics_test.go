package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(HabitLogCount.WithLabelValues("completed"))
	IncrementHabitLog("completed")
	IncrementHabitLog("completed")
	assert.Equal(t, before+2, testutil.ToFloat64(HabitLogCount.WithLabelValues("completed")))

	hits := testutil.ToFloat64(SnapshotCacheCount.WithLabelValues("hit"))
	IncrementSnapshotCache("hit")
	assert.Equal(t, hits+1, testutil.ToFloat64(SnapshotCacheCount.WithLabelValues("hit")))

	archived := testutil.ToFloat64(HabitChangeCount.WithLabelValues("archived"))
	IncrementHabitChange("archived")
	assert.Equal(t, archived+1, testutil.ToFloat64(HabitChangeCount.WithLabelValues("archived")))
}
