package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaigenticai/regulens-autoscaler/internal/fleet"
	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

type recordingSink struct {
	records []*models.DecisionRecord
	err     error
}

func (s *recordingSink) Record(ctx context.Context, record *models.DecisionRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func scaleUpDecision() *models.ScalingDecision {
	return &models.ScalingDecision{
		Action:          models.ActionScaleUp,
		CurrentReplicas: 3,
		TargetReplicas:  5,
		Reason:          "scale_up_threshold_breached",
		Confidence:      0.8,
		Timestamp:       time.Now(),
	}
}

func TestApplyScaleUp(t *testing.T) {
	fl := fleet.NewSimulatedFleet(fleet.SimulatedFleetConfig{InitialReplicas: 3})
	sink := &recordingSink{}
	exec := NewExecutor(fl, sink, nil, Config{})

	status, err := exec.Apply(context.Background(), scaleUpDecision())

	require.NoError(t, err)
	assert.Equal(t, models.ApplyStatusApplied, status)

	replicas, err := fl.Replicas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, replicas)

	require.Len(t, sink.records, 1)
	assert.Equal(t, models.ApplyStatusApplied, sink.records[0].Status)
	assert.Equal(t, 5, sink.records[0].ReplicasAfter)
}

func TestApplyNoActionSkipsResizeButAudits(t *testing.T) {
	fl := fleet.NewSimulatedFleet(fleet.SimulatedFleetConfig{InitialReplicas: 3})
	sink := &recordingSink{}
	exec := NewExecutor(fl, sink, nil, Config{})

	decision := &models.ScalingDecision{
		Action:          models.ActionNone,
		CurrentReplicas: 3,
		TargetReplicas:  3,
		Reason:          "within_normal_parameters",
		Timestamp:       time.Now(),
	}

	status, err := exec.Apply(context.Background(), decision)

	require.NoError(t, err)
	assert.Equal(t, models.ApplyStatusSkipped, status)

	replicas, err := fl.Replicas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, replicas)

	require.Len(t, sink.records, 1)
	assert.Equal(t, models.ApplyStatusSkipped, sink.records[0].Status)
}

func TestApplyResizeFailure(t *testing.T) {
	fl := fleet.NewSimulatedFleet(fleet.SimulatedFleetConfig{InitialReplicas: 3})
	fl.FailNext(errors.New("provider unavailable"))
	sink := &recordingSink{}
	exec := NewExecutor(fl, sink, nil, Config{})

	status, err := exec.Apply(context.Background(), scaleUpDecision())

	require.Error(t, err)
	assert.Equal(t, models.ApplyStatusFailed, status)

	// Fleet untouched on failure.
	replicas, ferr := fl.Replicas(context.Background())
	require.NoError(t, ferr)
	assert.Equal(t, 3, replicas)

	require.Len(t, sink.records, 1)
	record := sink.records[0]
	assert.Equal(t, models.ApplyStatusFailed, record.Status)
	assert.Equal(t, 3, record.ReplicasAfter)
	assert.Contains(t, record.Error, "provider unavailable")
}

func TestApplyDryRun(t *testing.T) {
	fl := fleet.NewSimulatedFleet(fleet.SimulatedFleetConfig{InitialReplicas: 3})
	sink := &recordingSink{}
	exec := NewExecutor(fl, sink, nil, Config{DryRun: true})

	status, err := exec.Apply(context.Background(), scaleUpDecision())

	require.NoError(t, err)
	assert.Equal(t, models.ApplyStatusDryRun, status)

	replicas, err := fl.Replicas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, replicas)

	require.Len(t, sink.records, 1)
	assert.Equal(t, models.ApplyStatusDryRun, sink.records[0].Status)
}

func TestApplyAuditFailureIsNonFatal(t *testing.T) {
	fl := fleet.NewSimulatedFleet(fleet.SimulatedFleetConfig{InitialReplicas: 3})
	sink := &recordingSink{err: errors.New("database down")}
	exec := NewExecutor(fl, sink, nil, Config{})

	status, err := exec.Apply(context.Background(), scaleUpDecision())

	require.NoError(t, err)
	assert.Equal(t, models.ApplyStatusApplied, status)

	replicas, err := fl.Replicas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, replicas)
}
