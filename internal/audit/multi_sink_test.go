package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

type recordingSink struct {
	records []*models.DecisionRecord
	err     error
}

func (s *recordingSink) Record(ctx context.Context, record *models.DecisionRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestMultiSink_FansOutToAllSinks(t *testing.T) {
	first := &recordingSink{err: errors.New("db down")}
	second := &recordingSink{}
	sink := NewMultiSink(first, second)

	record := &models.DecisionRecord{
		Timestamp: time.Now(),
		Action:    models.ActionScaleUp,
		Status:    models.ApplyStatusApplied,
	}

	err := sink.Record(context.Background(), record)

	assert.Error(t, err, "first sink error is surfaced")
	assert.Len(t, first.records, 1)
	assert.Len(t, second.records, 1, "a failing sink does not stop the fan-out")
}
