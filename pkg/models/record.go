package models

import "time"

type ApplyStatus string

const (
	ApplyStatusApplied ApplyStatus = "applied"
	ApplyStatusFailed  ApplyStatus = "failed"
	ApplyStatusSkipped ApplyStatus = "skipped"
	ApplyStatusDryRun  ApplyStatus = "dry_run"
)

// DecisionRecord is the durable audit row written for every decision,
// including NoAction cycles and resizes that failed to apply.
type DecisionRecord struct {
	ID             int           `json:"id"`
	Timestamp      time.Time     `json:"timestamp"`
	Action         ScalingAction `json:"action"`
	ReplicasBefore int           `json:"replicas_before"`
	ReplicasAfter  int           `json:"replicas_after"`
	Reason         string        `json:"reason"`
	Confidence     float64       `json:"confidence"`
	Status         ApplyStatus   `json:"status"`
	Error          string        `json:"error,omitempty"`
}

func NewDecisionRecord(decision *ScalingDecision, status ApplyStatus) *DecisionRecord {
	record := &DecisionRecord{
		Timestamp:      decision.Timestamp,
		Action:         decision.Action,
		ReplicasBefore: decision.CurrentReplicas,
		ReplicasAfter:  decision.TargetReplicas,
		Reason:         decision.Reason,
		Confidence:     decision.Confidence,
		Status:         status,
	}
	if status != ApplyStatusApplied {
		// A decision that was not applied leaves the fleet unchanged.
		record.ReplicasAfter = decision.CurrentReplicas
	}
	return record
}

func (r *DecisionRecord) WithError(err error) *DecisionRecord {
	if err != nil {
		r.Error = err.Error()
	}
	return r
}
