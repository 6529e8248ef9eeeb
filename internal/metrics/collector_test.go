package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Collect(t *testing.T) {
	collector := NewCollector(CollectorConfig{Timeout: time.Second})

	cpu := NewStaticSource("cpu", 85.0)
	mem := NewStaticSource("memory", 40.0)
	require.NoError(t, collector.Register(cpu, SourceSpec{
		Name: "cpu", ThresholdUp: 80, ThresholdDown: 30, Weight: 0.6,
	}))
	require.NoError(t, collector.Register(mem, SourceSpec{
		Name: "memory", ThresholdUp: 85, ThresholdDown: 20, Weight: 0.4,
	}))

	before := time.Now()
	snapshot := collector.Collect(context.Background())

	require.Len(t, snapshot, 2)
	assert.Equal(t, 85.0, snapshot["cpu"].Value)
	assert.Equal(t, 0.6, snapshot["cpu"].Weight)
	assert.Equal(t, 80.0, snapshot["cpu"].ThresholdUp)
	assert.Equal(t, 40.0, snapshot["memory"].Value)

	for _, m := range snapshot {
		assert.GreaterOrEqual(t, m.Weight, 0.0)
		assert.False(t, m.Timestamp.Before(before), "timestamp no older than the call")
	}
}

func TestCollector_Collect_PartialFailure(t *testing.T) {
	collector := NewCollector(CollectorConfig{Timeout: time.Second})

	cpu := NewStaticSource("cpu", 85.0)
	broken := NewStaticSource("latency", 0)
	broken.SetShouldFail(true, errors.New("monitor unreachable"))

	require.NoError(t, collector.Register(cpu, SourceSpec{Name: "cpu", ThresholdUp: 80, Weight: 1.0}))
	require.NoError(t, collector.Register(broken, SourceSpec{Name: "latency", ThresholdUp: 200, Weight: 0.5}))

	var failedName string
	collector.onError = func(name string, err error) { failedName = name }

	snapshot := collector.Collect(context.Background())

	require.Len(t, snapshot, 1, "failed source omitted, cycle not aborted")
	assert.Contains(t, snapshot, "cpu")
	assert.Equal(t, "latency", failedName)
}

func TestCollector_Register_RejectsInvalidSpec(t *testing.T) {
	collector := NewCollector(CollectorConfig{})
	src := NewStaticSource("cpu", 50.0)

	err := collector.Register(src, SourceSpec{Name: "cpu", ThresholdUp: 80, Weight: -1})
	assert.ErrorIs(t, err, ErrInvalidSpec)

	err = collector.Register(src, SourceSpec{Name: "cpu", ThresholdUp: 30, ThresholdDown: 80, Weight: 1})
	assert.ErrorIs(t, err, ErrInvalidSpec, "inverted thresholds rejected, not silently accepted")

	err = collector.Register(src, SourceSpec{Name: "other", ThresholdUp: 80, Weight: 1})
	assert.ErrorIs(t, err, ErrInvalidSpec, "spec name must match source name")
}

func TestCollector_Register_AcceptsLowerOnlyThreshold(t *testing.T) {
	collector := NewCollector(CollectorConfig{})
	src := NewStaticSource("cpu", 50.0)

	// A zero threshold_up means "no upper bound", not an inversion.
	err := collector.Register(src, SourceSpec{Name: "cpu", ThresholdDown: 20, Weight: 1})
	assert.NoError(t, err)
}

type slowSource struct {
	*StaticSource
	delay time.Duration
}

func (s *slowSource) Read(ctx context.Context) (float64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(s.delay):
		return s.StaticSource.Read(ctx)
	}
}

func TestCollector_Collect_SourceTimeout(t *testing.T) {
	collector := NewCollector(CollectorConfig{Timeout: 10 * time.Millisecond})

	slow := &slowSource{StaticSource: NewStaticSource("cpu", 50.0), delay: time.Second}
	fast := NewStaticSource("memory", 60.0)
	require.NoError(t, collector.Register(slow, SourceSpec{Name: "cpu", ThresholdUp: 80, Weight: 1}))
	require.NoError(t, collector.Register(fast, SourceSpec{Name: "memory", ThresholdUp: 85, Weight: 1}))

	snapshot := collector.Collect(context.Background())

	require.Len(t, snapshot, 1, "timeout applies per source, not to the whole cycle")
	assert.Contains(t, snapshot, "memory")
}
