package models

import "time"

type ControllerState string

const (
	ControllerStopped ControllerState = "stopped"
	ControllerRunning ControllerState = "running"
)

// ControllerStatus is the read-only snapshot served to status callers.
// MetricSnapshot is the most recent collection and may be stale relative
// to the fleet.
type ControllerStatus struct {
	State             ControllerState          `json:"state"`
	Enabled           bool                     `json:"enabled"`
	CurrentReplicas   int                      `json:"current_replicas"`
	MinReplicas       int                      `json:"min_replicas"`
	MaxReplicas       int                      `json:"max_replicas"`
	CooldownSeconds   int                      `json:"cooldown_seconds"`
	IntervalSeconds   int                      `json:"monitoring_interval_seconds"`
	LastScalingAction time.Time                `json:"last_scaling_action"`
	MetricSnapshot    map[string]ScalingMetric `json:"metric_snapshot,omitempty"`
}
