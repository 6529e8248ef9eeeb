package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

type DecisionRepository struct {
	db *sql.DB
}

func NewDecisionRepository(db *sql.DB) *DecisionRepository {
	return &DecisionRepository{db: db}
}

const decisionColumns = `id, timestamp, action, replicas_before, replicas_after,
	   reason, confidence, status, error`

func (r *DecisionRepository) GetRecent(ctx context.Context, limit int) ([]models.DecisionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + decisionColumns + `
		FROM scaling_decisions
		ORDER BY timestamp DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDecisions(rows)
}

func (r *DecisionRepository) GetByRange(ctx context.Context, from, to time.Time, limit int) ([]models.DecisionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + decisionColumns + `
		FROM scaling_decisions
		WHERE timestamp >= $1 AND timestamp <= $2
		ORDER BY timestamp DESC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDecisions(rows)
}

func (r *DecisionRepository) GetStats(ctx context.Context, from, to time.Time) (*DecisionStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE action = 'SCALE_UP') AS scale_up_count,
			COUNT(*) FILTER (WHERE action = 'SCALE_DOWN') AS scale_down_count,
			COUNT(*) FILTER (WHERE status = 'applied') AS applied_count,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed_count,
			COUNT(*) FILTER (WHERE status = 'skipped') AS skipped_count
		FROM scaling_decisions
		WHERE timestamp >= $1 AND timestamp <= $2`

	var stats DecisionStats
	err := r.db.QueryRowContext(ctx, query, from, to).Scan(
		&stats.ScaleUpCount, &stats.ScaleDownCount,
		&stats.AppliedCount, &stats.FailedCount, &stats.SkippedCount,
	)

	if err != nil {
		return nil, err
	}

	stats.From = from
	stats.To = to

	return &stats, nil
}

func scanDecisions(rows *sql.Rows) ([]models.DecisionRecord, error) {
	var records []models.DecisionRecord
	for rows.Next() {
		var r models.DecisionRecord
		var errMsg sql.NullString
		err := rows.Scan(
			&r.ID, &r.Timestamp, &r.Action,
			&r.ReplicasBefore, &r.ReplicasAfter, &r.Reason,
			&r.Confidence, &r.Status, &errMsg,
		)
		if err != nil {
			return nil, err
		}
		r.Error = errMsg.String
		records = append(records, r)
	}

	return records, rows.Err()
}

type DecisionStats struct {
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	ScaleUpCount   int       `json:"scale_up_count"`
	ScaleDownCount int       `json:"scale_down_count"`
	AppliedCount   int       `json:"applied_count"`
	FailedCount    int       `json:"failed_count"`
	SkippedCount   int       `json:"skipped_count"`
}
