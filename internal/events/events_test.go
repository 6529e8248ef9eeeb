package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

func receive(t *testing.T, ch <-chan *models.Event) *models.Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestPublishToSubscriber(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeDecisionMade)

	decision := &models.ScalingDecision{Action: models.ActionScaleUp}
	NewPublisher(bus).DecisionMade(decision)

	event := receive(t, ch)
	assert.Equal(t, models.EventTypeDecisionMade, event.Type)
	assert.Equal(t, decision, event.Data)
}

func TestSubscriberOnlySeesItsType(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeAlert)

	publisher := NewPublisher(bus)
	publisher.MetricsCollected(nil)
	publisher.Alert(models.SeverityWarning, "replica ceiling reached", nil)

	event := receive(t, ch)
	assert.Equal(t, models.EventTypeAlert, event.Type)
	assert.Equal(t, models.SeverityWarning, event.Severity)
	assert.Empty(t, ch)
}

func TestSubscribeAllSeesEverything(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.SubscribeAll()

	publisher := NewPublisher(bus)
	publisher.MetricsCollected(nil)
	publisher.DecisionMade(&models.ScalingDecision{Action: models.ActionNone})

	first := receive(t, ch)
	second := receive(t, ch)
	assert.Equal(t, models.EventTypeMetricsCollected, first.Type)
	assert.Equal(t, models.EventTypeDecisionMade, second.Type)
}

func TestFullChannelDropsInsteadOfBlocking(t *testing.T) {
	bus := NewEventBus(1)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeAlert)

	publisher := NewPublisher(bus)
	publisher.Alert(models.SeverityInfo, "first", nil)
	publisher.Alert(models.SeverityInfo, "second", nil) // dropped, buffer full

	event := receive(t, ch)
	assert.Equal(t, "first", event.Message)
	assert.Empty(t, ch)
}

func TestCloseStopsDelivery(t *testing.T) {
	bus := NewEventBus(10)
	ch := bus.SubscribeAll()

	bus.Close()
	bus.Publish(models.NewEvent(models.EventTypeAlert, "after close"))

	_, open := <-ch
	require.False(t, open)
}

func TestPublisherTraceID(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeError)

	NewPublisher(bus).WithTraceID("trace-123").Error("cycle failed", assert.AnError)

	event := receive(t, ch)
	assert.Equal(t, "trace-123", event.TraceID)
}
