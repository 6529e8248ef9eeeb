package models

import "time"

type ScalingAction string

const (
	ActionScaleUp   ScalingAction = "SCALE_UP"
	ActionScaleDown ScalingAction = "SCALE_DOWN"
	ActionNone      ScalingAction = "NO_ACTION"
)

// ScalingDecision is the outcome of one evaluation cycle. It is created
// once by the decision engine and never mutated afterwards.
type ScalingDecision struct {
	Action          ScalingAction   `json:"action"`
	CurrentReplicas int             `json:"current_replicas"`
	TargetReplicas  int             `json:"target_replicas"`
	Reason          string          `json:"reason"`
	Confidence      float64         `json:"confidence"`
	ScaleUpScore    float64         `json:"scale_up_score"`
	ScaleDownScore  float64         `json:"scale_down_score"`
	Metrics         []ScalingMetric `json:"metrics,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

func (d *ScalingDecision) ReplicaDelta() int {
	return d.TargetReplicas - d.CurrentReplicas
}

// ShouldExecute reports whether the executor must call the fleet resizer.
func (d *ScalingDecision) ShouldExecute() bool {
	return d.Action != ActionNone
}
