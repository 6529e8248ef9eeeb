package audit

import (
	"context"
	"database/sql"

	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

// PostgresSink persists decision records to the scaling_decisions table.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Record(ctx context.Context, record *models.DecisionRecord) error {
	query := `
		INSERT INTO scaling_decisions
			(timestamp, action, replicas_before, replicas_after, reason, confidence, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING id`

	return s.db.QueryRowContext(ctx, query,
		record.Timestamp,
		record.Action,
		record.ReplicasBefore,
		record.ReplicasAfter,
		record.Reason,
		record.Confidence,
		record.Status,
		record.Error,
	).Scan(&record.ID)
}
