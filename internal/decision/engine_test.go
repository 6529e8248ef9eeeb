package decision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

var decideAt = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestState() ControllerState {
	return ControllerState{
		CurrentReplicas:   5,
		MinReplicas:       2,
		MaxReplicas:       10,
		LastScalingAction: decideAt.Add(-time.Hour),
		Cooldown:          5 * time.Minute,
	}
}

// metricWithUpScore builds a single full-weight metric whose breach of
// threshold_up produces exactly the given scale-up score.
func metricWithUpScore(score float64) map[string]models.ScalingMetric {
	return map[string]models.ScalingMetric{
		"cpu": {
			Name:        "cpu",
			Value:       100 * (1 + score),
			ThresholdUp: 100,
			Weight:      1.0,
			Timestamp:   decideAt,
		},
	}
}

func metricWithDownScore(score float64) map[string]models.ScalingMetric {
	return map[string]models.ScalingMetric{
		"cpu": {
			Name:          "cpu",
			Value:         100 * (1 - score),
			ThresholdUp:   200,
			ThresholdDown: 100,
			Weight:        1.0,
			Timestamp:     decideAt,
		},
	}
}

func TestEngine_Decide_CooldownGate(t *testing.T) {
	engine := NewEngine(Config{})
	state := newTestState()
	state.LastScalingAction = decideAt.Add(-time.Minute)

	// Heavily breached metrics must not matter during cooldown.
	result := engine.Decide(decideAt, state, metricWithUpScore(5.0))

	assert.Equal(t, models.ActionNone, result.Action)
	assert.Equal(t, "cooldown_active", result.Reason)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, state.CurrentReplicas, result.TargetReplicas)
}

func TestEngine_Decide_HysteresisAsymmetry(t *testing.T) {
	engine := NewEngine(Config{})

	up := engine.Decide(decideAt, newTestState(), metricWithUpScore(0.31))
	assert.Equal(t, models.ActionScaleUp, up.Action,
		"scale_up_score 0.31 must trigger scale up")

	down := engine.Decide(decideAt, newTestState(), metricWithDownScore(0.31))
	assert.Equal(t, models.ActionNone, down.Action,
		"scale_down_score 0.31 must not trigger scale down")

	down = engine.Decide(decideAt, newTestState(), metricWithDownScore(0.41))
	assert.Equal(t, models.ActionScaleDown, down.Action,
		"scale_down_score 0.41 must trigger scale down")
}

func TestEngine_Decide_MagnitudeTiers(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		delta int
	}{
		{"mild breach moves one replica", 0.49, 1},
		{"moderate breach moves two replicas", 0.79, 2},
		{"severe breach moves three replicas", 0.81, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(Config{})
			state := newTestState()

			up := engine.Decide(decideAt, state, metricWithUpScore(tt.score))
			require.Equal(t, models.ActionScaleUp, up.Action)
			assert.Equal(t, tt.delta, up.ReplicaDelta())

			down := engine.Decide(decideAt, state, metricWithDownScore(tt.score))
			require.Equal(t, models.ActionScaleDown, down.Action)
			assert.Equal(t, -tt.delta, down.ReplicaDelta())
		})
	}
}

func TestEngine_Decide_TargetWithinBounds(t *testing.T) {
	engine := NewEngine(Config{})

	state := newTestState()
	state.CurrentReplicas = 10
	result := engine.Decide(decideAt, state, metricWithUpScore(2.0))
	assert.Equal(t, 10, result.TargetReplicas, "scale up clamps at max")

	state = newTestState()
	state.CurrentReplicas = 2
	result = engine.Decide(decideAt, state, metricWithDownScore(2.0))
	assert.Equal(t, 2, result.TargetReplicas, "scale down clamps at min")

	for _, score := range []float64{0.31, 0.55, 0.95, 3.0} {
		result = engine.Decide(decideAt, newTestState(), metricWithUpScore(score))
		assert.GreaterOrEqual(t, result.TargetReplicas, 2)
		assert.LessOrEqual(t, result.TargetReplicas, 10)
	}
}

func TestEngine_Decide_Idempotent(t *testing.T) {
	engine := NewEngine(Config{})
	state := newTestState()
	metrics := map[string]models.ScalingMetric{
		"cpu":     {Name: "cpu", Value: 92, ThresholdUp: 80, ThresholdDown: 30, Weight: 0.5, Timestamp: decideAt},
		"latency": {Name: "latency", Value: 240, ThresholdUp: 200, ThresholdDown: 50, Weight: 0.3, Timestamp: decideAt},
		"memory":  {Name: "memory", Value: 55, ThresholdUp: 85, ThresholdDown: 20, Weight: 0.2, Timestamp: decideAt},
	}

	first := engine.Decide(decideAt, state, metrics)
	second := engine.Decide(decideAt, state, metrics)

	assert.Equal(t, first, second)
}

func TestEngine_Decide_PartialMetricsRenormalized(t *testing.T) {
	engine := NewEngine(Config{})
	metrics := map[string]models.ScalingMetric{
		"cpu":    {Name: "cpu", Value: 100, ThresholdUp: 50, Weight: 0.6, Timestamp: decideAt},
		"memory": {Name: "memory", Value: 50, ThresholdUp: 85, ThresholdDown: 20, Weight: 0.4, Timestamp: decideAt},
	}

	full := engine.Decide(decideAt, newTestState(), metrics)
	require.Equal(t, models.ActionScaleUp, full.Action)

	// Dropping the in-band metric renormalizes: cpu breach alone now
	// carries the full weight, raising the score from 0.6 to 1.0.
	delete(metrics, "memory")
	partial := engine.Decide(decideAt, newTestState(), metrics)

	require.Equal(t, models.ActionScaleUp, partial.Action)
	assert.InDelta(t, 1.0, partial.Confidence, 1e-9)
	assert.GreaterOrEqual(t, partial.TargetReplicas, 2)
	assert.LessOrEqual(t, partial.TargetReplicas, 10)
}

func TestEngine_Decide_WorkedScenario(t *testing.T) {
	engine := NewEngine(Config{})
	state := ControllerState{
		CurrentReplicas:   3,
		MinReplicas:       3,
		MaxReplicas:       20,
		LastScalingAction: decideAt.Add(-time.Hour),
		Cooldown:          5 * time.Minute,
	}
	metrics := map[string]models.ScalingMetric{
		"a": {Name: "a", Value: 100, ThresholdUp: 50, Weight: 0.6, Timestamp: decideAt},
		// b carries only a lower threshold; it still contributes its
		// weight to the normalization of the up score.
		"b": {Name: "b", Value: 10, ThresholdDown: 20, Weight: 0.4, Timestamp: decideAt},
	}

	// up score = 0.6*(100-50)/50 = 0.6, down score = 0.4*(20-10)/20 = 0.2
	result := engine.Decide(decideAt, state, metrics)

	assert.Equal(t, models.ActionScaleUp, result.Action)
	assert.Equal(t, 5, result.TargetReplicas)
	assert.InDelta(t, 0.6, result.Confidence, 1e-9)
	assert.InDelta(t, 0.6, result.ScaleUpScore, 1e-9)
	assert.InDelta(t, 0.2, result.ScaleDownScore, 1e-9)
}

func TestEngine_Decide_NoMetrics(t *testing.T) {
	engine := NewEngine(Config{})

	result := engine.Decide(decideAt, newTestState(), nil)

	assert.Equal(t, models.ActionNone, result.Action)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestEngine_Decide_InvalidMetricExcluded(t *testing.T) {
	engine := NewEngine(Config{})
	metrics := map[string]models.ScalingMetric{
		"cpu": {Name: "cpu", Value: 100, ThresholdUp: 50, Weight: 0.6, Timestamp: decideAt},
		// Inverted thresholds: flagged and left out of the sums, so cpu
		// carries all the weight.
		"bad": {Name: "bad", Value: 10, ThresholdUp: 20, ThresholdDown: 80, Weight: 0.4, Timestamp: decideAt},
	}

	result := engine.Decide(decideAt, newTestState(), metrics)

	assert.Equal(t, models.ActionScaleUp, result.Action)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9)
}

func TestEngine_Decide_NegativeWeightExcluded(t *testing.T) {
	engine := NewEngine(Config{})
	metrics := map[string]models.ScalingMetric{
		"bad": {Name: "bad", Value: 100, ThresholdUp: 50, Weight: -1.0, Timestamp: decideAt},
	}

	result := engine.Decide(decideAt, newTestState(), metrics)

	assert.Equal(t, models.ActionNone, result.Action)
}

func TestEngine_Decide_BoundsCorrection(t *testing.T) {
	engine := NewEngine(Config{})

	state := newTestState()
	state.CurrentReplicas = 1 // below min after a parameter update
	state.LastScalingAction = decideAt.Add(-time.Second)

	result := engine.Decide(decideAt, state, nil)
	assert.Equal(t, models.ActionScaleUp, result.Action, "bounds correction bypasses cooldown")
	assert.Equal(t, 2, result.TargetReplicas)
	assert.Equal(t, "replicas_below_min", result.Reason)

	state = newTestState()
	state.CurrentReplicas = 15
	result = engine.Decide(decideAt, state, nil)
	assert.Equal(t, models.ActionScaleDown, result.Action)
	assert.Equal(t, 10, result.TargetReplicas)
}
