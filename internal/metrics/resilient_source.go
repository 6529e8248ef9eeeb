package metrics

import (
	"context"
	"time"

	"github.com/gaigenticai/regulens-autoscaler/internal/logger"
	"github.com/gaigenticai/regulens-autoscaler/internal/resilience"
	"github.com/gaigenticai/regulens-autoscaler/internal/telemetry"
)

// ResilientSource wraps a Source with retries and a circuit breaker so a
// flapping monitoring backend stops being polled for a while instead of
// stalling every cycle on timeouts.
type ResilientSource struct {
	source         Source
	circuitBreaker *resilience.CircuitBreaker
	retryAttempts  int
	retryDelay     time.Duration
}

type ResilientSourceConfig struct {
	Source        Source
	MaxFailures   int
	OpenTimeout   time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	OnStateChange func(name string, from, to resilience.State)
}

func NewResilientSource(cfg ResilientSourceConfig) *ResilientSource {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 1 * time.Second
	}

	onStateChange := cfg.OnStateChange
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:        cfg.Source.Name(),
		MaxFailures: cfg.MaxFailures,
		Timeout:     cfg.OpenTimeout,
		OnStateChange: func(name string, from, to resilience.State) {
			telemetry.Get().SetCircuitBreakerState(name, int(to))
			if onStateChange != nil {
				onStateChange(name, from, to)
			}
		},
	})

	return &ResilientSource{
		source:         cfg.Source,
		circuitBreaker: cb,
		retryAttempts:  cfg.RetryAttempts,
		retryDelay:     cfg.RetryDelay,
	}
}

func (s *ResilientSource) Name() string {
	return s.source.Name()
}

func (s *ResilientSource) Read(ctx context.Context) (float64, error) {
	var value float64
	var lastErr error

	err := s.circuitBreaker.Execute(func() error {
		for attempt := 1; attempt <= s.retryAttempts; attempt++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var err error
			value, err = s.source.Read(ctx)
			if err == nil {
				return nil
			}

			lastErr = err
			logger.WithMetric(s.source.Name()).Warnf(
				"Read attempt %d/%d failed: %v",
				attempt, s.retryAttempts, err,
			)

			if attempt < s.retryAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(s.retryDelay):
				}
			}
		}
		return lastErr
	})

	if err != nil {
		return 0, err
	}

	return value, nil
}

func (s *ResilientSource) HealthCheck(ctx context.Context) error {
	return s.source.HealthCheck(ctx)
}

func (s *ResilientSource) Close() error {
	return s.source.Close()
}

func (s *ResilientSource) CircuitState() resilience.State {
	return s.circuitBreaker.State()
}
