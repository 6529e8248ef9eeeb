package audit

import (
	"context"

	"github.com/gaigenticai/regulens-autoscaler/internal/logger"
	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

// LogSink writes decision records to the structured log. Used standalone
// in development and alongside the postgres sink in production.
type LogSink struct{}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Record(ctx context.Context, record *models.DecisionRecord) error {
	entry := logger.WithFields(map[string]interface{}{
		"component":       "audit",
		"action":          record.Action,
		"replicas_before": record.ReplicasBefore,
		"replicas_after":  record.ReplicasAfter,
		"confidence":      record.Confidence,
		"status":          record.Status,
	})

	if record.Error != "" {
		entry = entry.WithField("error", record.Error)
	}

	entry.Info(record.Reason)
	return nil
}
