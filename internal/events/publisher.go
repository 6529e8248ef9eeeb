package events

import (
	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) MetricsCollected(snapshot map[string]models.ScalingMetric) {
	event := models.NewEvent(models.EventTypeMetricsCollected, "Metrics collected").
		WithData(snapshot)
	p.publish(event)
}

func (p *Publisher) DecisionMade(decision *models.ScalingDecision) {
	msg := "Scaling decision: " + string(decision.Action)
	event := models.NewEvent(models.EventTypeDecisionMade, msg).
		WithData(decision)
	p.publish(event)
}

func (p *Publisher) ScalingApplied(record *models.DecisionRecord) {
	msg := "Scaling applied: " + string(record.Action)
	event := models.NewEvent(models.EventTypeScalingApplied, msg).
		WithData(record)
	p.publish(event)
}

func (p *Publisher) ScalingFailed(decision *models.ScalingDecision, err error) {
	event := models.NewEvent(models.EventTypeScalingFailed, "Scaling failed: "+decision.Reason).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"decision": decision,
			"error":    err.Error(),
		})
	p.publish(event)
}

func (p *Publisher) ConfigUpdated(status models.ControllerStatus) {
	event := models.NewEvent(models.EventTypeConfigUpdated, "Controller configuration updated").
		WithData(status)
	p.publish(event)
}

func (p *Publisher) Alert(severity models.EventSeverity, message string, data interface{}) {
	event := models.NewEvent(models.EventTypeAlert, message).
		WithSeverity(severity).
		WithData(data)
	p.publish(event)
}

func (p *Publisher) Error(message string, err error) {
	event := models.NewEvent(models.EventTypeError, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}
