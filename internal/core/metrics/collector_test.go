package metrics

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordAndStatistics(t *testing.T) {
	c := NewCollector(10, nil)

	c.Record(TypeInternal, "get_recipe", 2*time.Millisecond, nil)
	c.Record(TypeInternal, "get_recipe", 4*time.Millisecond, nil)
	c.Record(TypeExternal, "search_meals", 100*time.Millisecond, map[string]any{"query": "chicken"})

	stats := c.Statistics()
	assert.Equal(t, 2, stats.InternalCount)
	assert.Equal(t, 3.0, stats.InternalAvgMS)
	assert.Equal(t, 1, stats.ExternalCount)
	assert.Equal(t, 100.0, stats.ExternalAvgMS)
	assert.Equal(t, 3, stats.TotalOperations)

	op := stats.Operations["get_recipe"]
	assert.Equal(t, 2, op.Count)
	assert.Equal(t, 6.0, op.TotalMS)
	assert.Equal(t, 2.0, op.MinMS)
	assert.Equal(t, 4.0, op.MaxMS)
	assert.Equal(t, 3.0, op.AvgMS)

	recent := c.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "chicken", recent[2].Metadata["query"])
	assert.NotNil(t, recent[0].Metadata)
}

func TestCollectorRingBuffer(t *testing.T) {
	c := NewCollector(3, nil)
	for i := 1; i <= 5; i++ {
		c.Record(TypeInternal, fmt.Sprintf("op%d", i), time.Duration(i)*time.Millisecond, nil)
	}

	assert.Equal(t, 3, c.Len())
	recent := c.Recent(10)
	require.Len(t, recent, 3)
	assert.Equal(t, "op3", recent[0].OperationName)
	assert.Equal(t, "op5", recent[2].OperationName)

	last := c.Recent(2)
	require.Len(t, last, 2)
	assert.Equal(t, "op4", last[0].OperationName)

	stats := c.Statistics()
	assert.Equal(t, 3, stats.TotalOperations)
	assert.Equal(t, 4.0, stats.InternalAvgMS)
	// 累計統計不受環形緩衝影響
	assert.Len(t, stats.Operations, 5)
}

func TestCollectorComparison(t *testing.T) {
	c := NewCollector(10, nil)
	assert.Nil(t, c.Comparison())

	c.Record(TypeInternal, "get_all_recipes", time.Millisecond, nil)
	assert.Nil(t, c.Comparison())

	c.Record(TypeExternal, "search_meals", 50*time.Millisecond, nil)
	cmp := c.Comparison()
	require.NotNil(t, cmp)
	assert.Equal(t, TypeInternal, cmp.Faster)
	assert.Equal(t, 50.0, cmp.Ratio)
	assert.Equal(t, 49.0, cmp.DifferenceMS)
	assert.Contains(t, cmp.Message, "50.00x faster")
}

func TestCollectorClear(t *testing.T) {
	c := NewCollector(5, nil)
	c.Record(TypeInternal, "create_recipe", time.Millisecond, nil)
	c.Clear()

	stats := c.Statistics()
	assert.Equal(t, 0, stats.TotalOperations)
	assert.Empty(t, stats.Operations)
	assert.Empty(t, c.Recent(10))
}

func TestCollectorPrometheusHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(5, reg)
	c.Record(TypeExternal, "get_meal_by_id", 10*time.Millisecond, nil)
	c.Record(TypeExternal, "get_meal_by_id", 20*time.Millisecond, nil)

	count, err := testutil.GatherAndCount(reg, "recipe_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCollectorConcurrentRecord(t *testing.T) {
	c := NewCollector(50, nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				c.Record(TypeInternal, "search_recipes", time.Microsecond, nil)
				_ = c.Statistics()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, c.Len())
	assert.Equal(t, 200, c.Statistics().Operations["search_recipes"].Count)
}

func TestTimer(t *testing.T) {
	timer := StartTimer("test")
	assert.Equal(t, 0.0, timer.DurationMS())

	time.Sleep(2 * time.Millisecond)
	d := timer.Stop()
	assert.GreaterOrEqual(t, d, 2*time.Millisecond)
	assert.Equal(t, d, timer.Stop())
	assert.GreaterOrEqual(t, timer.DurationMS(), 2.0)

	c := NewCollector(5, nil)
	StartTimer("rec").StopAndRecord(c, TypeInternal, "delete_recipe", nil)
	assert.Equal(t, 1, c.Len())
}
