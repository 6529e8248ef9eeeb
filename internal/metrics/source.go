package metrics

import (
	"context"
	"errors"

	"github.com/gaigenticai/regulens-autoscaler/pkg/validation"
)

var (
	ErrReadFailed      = errors.New("metric read failed")
	ErrTimeout         = errors.New("metric read timeout")
	ErrInvalidResponse = errors.New("invalid response from metric source")
	ErrInvalidSpec     = errors.New("invalid metric spec")
)

// Source supplies one named numeric reading. Reads may block on I/O and
// must honor the passed context.
type Source interface {
	// Name identifies the metric this source feeds.
	Name() string

	// Read fetches the current value.
	Read(ctx context.Context) (float64, error)

	// HealthCheck verifies the source can reach its backend.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the source.
	Close() error
}

// SourceSpec attaches scoring parameters to a source's readings.
type SourceSpec struct {
	Name          string
	ThresholdUp   float64
	ThresholdDown float64
	Weight        float64
}

func (s SourceSpec) Validate() error {
	if err := validation.ValidateMetricName(s.Name); err != nil {
		return err
	}
	if s.Weight < 0 {
		return errors.New("source spec weight must be non-negative")
	}
	if s.ThresholdUp > 0 && s.ThresholdDown > s.ThresholdUp {
		return errors.New("source spec threshold_down exceeds threshold_up")
	}
	return nil
}
