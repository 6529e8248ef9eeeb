package websocket

import (
	"time"

	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

// StreamMessage is the envelope sent to websocket clients.
type StreamMessage struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Severity  string      `json:"severity,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// streamType maps internal event types to the names exposed on the
// stream. Unmapped events are not broadcast.
func streamType(eventType models.EventType) string {
	switch eventType {
	case models.EventTypeMetricsCollected:
		return "metrics"
	case models.EventTypeDecisionMade:
		return "decision"
	case models.EventTypeScalingApplied:
		return "scaling_event"
	case models.EventTypeScalingFailed:
		return "scaling_failed"
	case models.EventTypeConfigUpdated:
		return "config_updated"
	case models.EventTypeAlert:
		return "alert"
	case models.EventTypeError:
		return "error"
	default:
		return ""
	}
}
