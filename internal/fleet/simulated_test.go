package fleet

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedFleet_SetReplicas(t *testing.T) {
	f := NewSimulatedFleet(SimulatedFleetConfig{InitialReplicas: 3})
	ctx := context.Background()

	replicas, err := f.Replicas(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, replicas)

	require.NoError(t, f.SetReplicas(ctx, 5))
	replicas, _ = f.Replicas(ctx)
	assert.Equal(t, 5, replicas)

	require.NoError(t, f.SetReplicas(ctx, 2))
	replicas, _ = f.Replicas(ctx)
	assert.Equal(t, 2, replicas)

	// Resizing to the current count is a no-op.
	require.NoError(t, f.SetReplicas(ctx, 2))
	replicas, _ = f.Replicas(ctx)
	assert.Equal(t, 2, replicas)
}

func TestSimulatedFleet_DrainsNewestFirst(t *testing.T) {
	f := NewSimulatedFleet(SimulatedFleetConfig{})
	base := time.Now()
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("replica-%d", i)
		f.instances[id] = &Instance{
			ID:        id,
			State:     InstanceActive,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}

	require.NoError(t, f.SetReplicas(context.Background(), 2))

	assert.Contains(t, f.instances, "replica-0")
	assert.Contains(t, f.instances, "replica-1")
	assert.NotContains(t, f.instances, "replica-2")
	assert.NotContains(t, f.instances, "replica-3")
}

func TestSimulatedFleet_DrainFreesInstances(t *testing.T) {
	f := NewSimulatedFleet(SimulatedFleetConfig{InitialReplicas: 10})
	ctx := context.Background()

	// Repeated scale-downs must not accumulate dead entries.
	for target := 9; target >= 1; target-- {
		require.NoError(t, f.SetReplicas(ctx, target))
	}

	assert.Len(t, f.Instances(), 1)
}

func TestSimulatedFleet_RejectsNegativeTarget(t *testing.T) {
	f := NewSimulatedFleet(SimulatedFleetConfig{InitialReplicas: 1})

	err := f.SetReplicas(context.Background(), -1)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestSimulatedFleet_FailNext(t *testing.T) {
	f := NewSimulatedFleet(SimulatedFleetConfig{InitialReplicas: 3})
	ctx := context.Background()

	injected := errors.New("quota exceeded")
	f.FailNext(injected)

	require.ErrorIs(t, f.SetReplicas(ctx, 5), injected)

	replicas, _ := f.Replicas(ctx)
	assert.Equal(t, 3, replicas, "failed resize leaves the fleet unchanged")

	// The failure is one-shot.
	require.NoError(t, f.SetReplicas(ctx, 5))
	replicas, _ = f.Replicas(ctx)
	assert.Equal(t, 5, replicas)
}
