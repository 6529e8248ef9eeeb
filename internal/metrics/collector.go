package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gaigenticai/regulens-autoscaler/internal/logger"
	"github.com/gaigenticai/regulens-autoscaler/internal/telemetry"
	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

// Collector gathers one snapshot of all registered metrics per cycle.
// Sources are read concurrently, each under its own timeout; a failing
// source is logged and omitted from the snapshot rather than aborting
// the cycle.
type Collector struct {
	mu      sync.RWMutex
	sources []registeredSource
	timeout time.Duration

	onError func(name string, err error)
}

type registeredSource struct {
	source Source
	spec   SourceSpec
}

type CollectorConfig struct {
	// Timeout applies to each source read, not to the whole collection.
	Timeout time.Duration

	// OnError is invoked for every failed read, after logging. Optional.
	OnError func(name string, err error)
}

func NewCollector(cfg CollectorConfig) *Collector {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &Collector{
		timeout: timeout,
		onError: cfg.OnError,
	}
}

// Register adds a source. The spec is validated here so a misconfigured
// metric is rejected at startup instead of being silently skipped on
// every cycle.
func (c *Collector) Register(source Source, spec SourceSpec) error {
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if spec.Name != source.Name() {
		return fmt.Errorf("%w: spec name %q does not match source %q",
			ErrInvalidSpec, spec.Name, source.Name())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, registeredSource{source: source, spec: spec})
	return nil
}

// Collect returns the snapshot for this cycle. Every returned metric has
// a non-negative weight and a timestamp taken at read completion.
func (c *Collector) Collect(ctx context.Context) map[string]models.ScalingMetric {
	c.mu.RLock()
	sources := make([]registeredSource, len(c.sources))
	copy(sources, c.sources)
	c.mu.RUnlock()

	var wg sync.WaitGroup
	var outMu sync.Mutex
	out := make(map[string]models.ScalingMetric, len(sources))

	for _, entry := range sources {
		wg.Add(1)
		go func(entry registeredSource) {
			defer wg.Done()

			readCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			started := time.Now()
			value, err := entry.source.Read(readCtx)
			telemetry.Get().SetCollectionLatency(entry.spec.Name, time.Since(started))
			if err != nil {
				logger.WithMetric(entry.spec.Name).Warnf("Dropping metric for this cycle: %v", err)
				telemetry.Get().IncCollectionErrors(entry.spec.Name)
				if c.onError != nil {
					c.onError(entry.spec.Name, err)
				}
				return
			}

			metric := models.ScalingMetric{
				Name:          entry.spec.Name,
				Value:         value,
				ThresholdUp:   entry.spec.ThresholdUp,
				ThresholdDown: entry.spec.ThresholdDown,
				Weight:        entry.spec.Weight,
				Timestamp:     time.Now(),
			}

			outMu.Lock()
			out[metric.Name] = metric
			outMu.Unlock()
		}(entry)
	}

	wg.Wait()

	logger.WithComponent("collector").Debugf(
		"Collected %d/%d metrics", len(out), len(sources),
	)
	return out
}

// HealthCheck reports the first unreachable source, if any.
func (c *Collector) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, entry := range c.sources {
		if err := entry.source.HealthCheck(ctx); err != nil {
			return fmt.Errorf("source %s: %w", entry.spec.Name, err)
		}
	}
	return nil
}

// Close releases all sources, keeping the first error.
func (c *Collector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for _, entry := range c.sources {
		if err := entry.source.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.sources = nil
	return firstErr
}
