// Package executor applies scaling decisions to the fleet and records the
// outcome of every decision, including the ones that change nothing.
package executor

import (
	"context"
	"fmt"

	"github.com/gaigenticai/regulens-autoscaler/internal/audit"
	"github.com/gaigenticai/regulens-autoscaler/internal/events"
	"github.com/gaigenticai/regulens-autoscaler/internal/fleet"
	"github.com/gaigenticai/regulens-autoscaler/internal/logger"
	"github.com/gaigenticai/regulens-autoscaler/internal/telemetry"
	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

type Config struct {
	// DryRun records decisions without touching the fleet.
	DryRun bool
}

type Executor struct {
	resizer   fleet.Resizer
	sink      audit.Sink
	publisher *events.Publisher
	dryRun    bool
}

func NewExecutor(resizer fleet.Resizer, sink audit.Sink, publisher *events.Publisher, config Config) *Executor {
	return &Executor{
		resizer:   resizer,
		sink:      sink,
		publisher: publisher,
		dryRun:    config.DryRun,
	}
}

// Apply carries out a scaling decision. The returned status tells the
// caller whether the fleet actually changed size; only ApplyStatusApplied
// means the new replica count took effect.
func (e *Executor) Apply(ctx context.Context, decision *models.ScalingDecision) (models.ApplyStatus, error) {
	log := logger.WithComponent("executor")

	if !decision.ShouldExecute() {
		e.record(ctx, models.NewDecisionRecord(decision, models.ApplyStatusSkipped))
		return models.ApplyStatusSkipped, nil
	}

	if e.dryRun {
		log.WithFields(map[string]interface{}{
			"action":          decision.Action,
			"target_replicas": decision.TargetReplicas,
		}).Info("Dry run: scaling suppressed")
		e.record(ctx, models.NewDecisionRecord(decision, models.ApplyStatusDryRun))
		return models.ApplyStatusDryRun, nil
	}

	if err := e.resizer.SetReplicas(ctx, decision.TargetReplicas); err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"action":          decision.Action,
			"target_replicas": decision.TargetReplicas,
		}).Error("Failed to resize fleet")

		record := models.NewDecisionRecord(decision, models.ApplyStatusFailed).WithError(err)
		e.record(ctx, record)
		if e.publisher != nil {
			e.publisher.ScalingFailed(decision, err)
		}
		return models.ApplyStatusFailed, fmt.Errorf("resizing fleet to %d replicas: %w", decision.TargetReplicas, err)
	}

	log.WithFields(map[string]interface{}{
		"action":           decision.Action,
		"current_replicas": decision.CurrentReplicas,
		"target_replicas":  decision.TargetReplicas,
		"reason":           decision.Reason,
		"confidence":       decision.Confidence,
	}).Info("Scaling applied")

	record := models.NewDecisionRecord(decision, models.ApplyStatusApplied)
	e.record(ctx, record)
	if e.publisher != nil {
		e.publisher.ScalingApplied(record)
	}
	return models.ApplyStatusApplied, nil
}

// record writes the audit trail entry. Audit failures are logged but never
// abort the control cycle.
func (e *Executor) record(ctx context.Context, record *models.DecisionRecord) {
	telemetry.Get().IncApply(string(record.Status))
	if e.sink == nil {
		return
	}
	if err := e.sink.Record(ctx, record); err != nil {
		telemetry.Get().IncAuditErrors()
		logger.WithComponent("executor").WithError(err).Warn("Failed to record scaling decision")
	}
}
