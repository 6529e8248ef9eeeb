package audit

import (
	"context"

	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

// MultiSink fans a record out to several sinks, returning the first
// error after all sinks have been attempted.
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (s *MultiSink) Record(ctx context.Context, record *models.DecisionRecord) error {
	var firstErr error
	for _, sink := range s.sinks {
		if err := sink.Record(ctx, record); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
