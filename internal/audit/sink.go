package audit

import (
	"context"

	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

// Sink is the durable log of every scaling decision. Record failures are
// never allowed to block scaling; callers log and continue.
type Sink interface {
	Record(ctx context.Context, record *models.DecisionRecord) error
}
