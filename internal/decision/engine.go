package decision

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/gaigenticai/regulens-autoscaler/internal/logger"
	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

type Config struct {
	ScaleUpThreshold   float64
	ScaleDownThreshold float64
	ModerateScore      float64
	AggressiveScore    float64
}

// ControllerState is the snapshot of the controller's mutable state the
// engine evaluates against. The engine never mutates it.
type ControllerState struct {
	CurrentReplicas   int
	MinReplicas       int
	MaxReplicas       int
	LastScalingAction time.Time
	Cooldown          time.Duration
}

// Engine turns a metric snapshot into a scaling decision. Decide is a
// pure function of its arguments, so identical inputs yield identical
// decisions.
type Engine struct {
	config Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.ScaleUpThreshold == 0 {
		cfg.ScaleUpThreshold = 0.30
	}
	if cfg.ScaleDownThreshold == 0 {
		cfg.ScaleDownThreshold = 0.40
	}
	if cfg.ModerateScore == 0 {
		cfg.ModerateScore = 0.5
	}
	if cfg.AggressiveScore == 0 {
		cfg.AggressiveScore = 0.8
	}

	return &Engine{config: cfg}
}

func (e *Engine) Decide(
	now time.Time,
	state ControllerState,
	metrics map[string]models.ScalingMetric,
) *models.ScalingDecision {
	decision := &models.ScalingDecision{
		Action:          models.ActionNone,
		CurrentReplicas: state.CurrentReplicas,
		TargetReplicas:  state.CurrentReplicas,
		Metrics:         sortedMetrics(metrics),
		Timestamp:       now,
	}

	// Bounds correction - a parameter update can strand the fleet outside
	// [min, max]; correcting that bypasses the cooldown the same way the
	// bounds themselves bypass load evaluation.
	if corrected := e.correctBounds(decision, state); corrected {
		return decision
	}

	// Cooldown gate, before any metric math
	if now.Sub(state.LastScalingAction) < state.Cooldown {
		decision.Reason = "cooldown_active"
		decision.Confidence = 1.0
		logger.WithComponent("engine").Debug("Decision: no action (cooldown active)")
		return decision
	}

	scaleUpScore, scaleDownScore, err := e.score(metrics)
	decision.ScaleUpScore = scaleUpScore
	decision.ScaleDownScore = scaleDownScore
	if err != nil {
		decision.Reason = err.Error()
		decision.Confidence = 0.0
		logger.WithComponent("engine").Errorf("Decision computation failed: %v", err)
		return decision
	}

	// Scale-up is checked first and triggers at a lower score than
	// scale-down: respond quickly to load, shrink with caution.
	switch {
	case scaleUpScore > e.config.ScaleUpThreshold:
		e.applyScaleUp(decision, state, scaleUpScore)
	case scaleDownScore > e.config.ScaleDownThreshold:
		e.applyScaleDown(decision, state, scaleDownScore)
	default:
		decision.Reason = "within_normal_parameters"
		decision.Confidence = math.Min(math.Max(scaleUpScore, scaleDownScore), 1.0)
		logger.WithComponent("engine").Debugf(
			"Decision: no action (up=%.3f down=%.3f)", scaleUpScore, scaleDownScore,
		)
	}

	return decision
}

// score computes the normalized weighted breach scores. Metrics that
// fail validation are flagged and excluded from the sums for this cycle.
func (e *Engine) score(metrics map[string]models.ScalingMetric) (up, down float64, err error) {
	var totalWeight, scaleUpRaw, scaleDownRaw float64

	for _, m := range metrics {
		if verr := m.Validate(); verr != nil {
			logger.WithMetric(m.Name).Warnf("Excluding invalid metric: %v", verr)
			continue
		}

		totalWeight += m.Weight

		// The threshold predicates treat a non-positive threshold as
		// "not configured", so a metric can carry only one of the two.
		switch {
		case m.OverThresholdUp():
			scaleUpRaw += m.Weight * (m.Value - m.ThresholdUp) / m.ThresholdUp
		case m.UnderThresholdDown():
			scaleDownRaw += m.Weight * (m.ThresholdDown - m.Value) / m.ThresholdDown
		}
	}

	if totalWeight == 0 {
		return 0, 0, nil
	}

	up = scaleUpRaw / totalWeight
	down = scaleDownRaw / totalWeight

	if math.IsNaN(up) || math.IsInf(up, 0) || math.IsNaN(down) || math.IsInf(down, 0) {
		return 0, 0, fmt.Errorf("non-finite score (up=%v down=%v)", up, down)
	}

	return up, down, nil
}

func (e *Engine) applyScaleUp(decision *models.ScalingDecision, state ControllerState, score float64) {
	target := state.CurrentReplicas + e.stepFor(score)
	if target > state.MaxReplicas {
		target = state.MaxReplicas
	}
	if target < state.MinReplicas {
		target = state.MinReplicas
	}

	decision.Action = models.ActionScaleUp
	decision.TargetReplicas = target
	decision.Reason = fmt.Sprintf("scale_up_score %.3f exceeds %.2f", score, e.config.ScaleUpThreshold)
	decision.Confidence = math.Min(score, 1.0)

	logger.WithComponent("engine").Infof(
		"Decision: scale_up %d -> %d replicas (score %.3f)",
		decision.CurrentReplicas, decision.TargetReplicas, score,
	)
}

func (e *Engine) applyScaleDown(decision *models.ScalingDecision, state ControllerState, score float64) {
	target := state.CurrentReplicas - e.stepFor(score)
	if target < state.MinReplicas {
		target = state.MinReplicas
	}
	if target > state.MaxReplicas {
		target = state.MaxReplicas
	}

	decision.Action = models.ActionScaleDown
	decision.TargetReplicas = target
	decision.Reason = fmt.Sprintf("scale_down_score %.3f exceeds %.2f", score, e.config.ScaleDownThreshold)
	decision.Confidence = math.Min(score, 1.0)

	logger.WithComponent("engine").Infof(
		"Decision: scale_down %d -> %d replicas (score %.3f)",
		decision.CurrentReplicas, decision.TargetReplicas, score,
	)
}

// stepFor maps a breach score to a replica step: mild breaches move one
// replica, moderate two, severe three.
func (e *Engine) stepFor(score float64) int {
	switch {
	case score >= e.config.AggressiveScore:
		return 3
	case score >= e.config.ModerateScore:
		return 2
	default:
		return 1
	}
}

func (e *Engine) correctBounds(decision *models.ScalingDecision, state ControllerState) bool {
	switch {
	case state.CurrentReplicas < state.MinReplicas:
		decision.Action = models.ActionScaleUp
		decision.TargetReplicas = state.MinReplicas
		decision.Reason = "replicas_below_min"
		decision.Confidence = 1.0
	case state.CurrentReplicas > state.MaxReplicas:
		decision.Action = models.ActionScaleDown
		decision.TargetReplicas = state.MaxReplicas
		decision.Reason = "replicas_above_max"
		decision.Confidence = 1.0
	default:
		return false
	}

	logger.WithComponent("engine").Warnf(
		"Decision: %s %d -> %d replicas (bounds correction)",
		decision.Action, decision.CurrentReplicas, decision.TargetReplicas,
	)
	return true
}

func sortedMetrics(metrics map[string]models.ScalingMetric) []models.ScalingMetric {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]models.ScalingMetric, 0, len(names))
	for _, name := range names {
		out = append(out, metrics[name])
	}
	return out
}
