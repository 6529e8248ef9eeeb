// Package controller runs the periodic scaling loop: collect metrics,
// decide, apply, repeat. All fleet-size mutations flow through this
// single loop so the replica count never has two writers.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gaigenticai/regulens-autoscaler/internal/decision"
	"github.com/gaigenticai/regulens-autoscaler/internal/events"
	"github.com/gaigenticai/regulens-autoscaler/internal/executor"
	"github.com/gaigenticai/regulens-autoscaler/internal/logger"
	"github.com/gaigenticai/regulens-autoscaler/internal/metrics"
	"github.com/gaigenticai/regulens-autoscaler/internal/telemetry"
	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

var (
	ErrDisabled        = errors.New("controller is disabled")
	ErrInvalidBounds   = errors.New("invalid replica bounds")
	ErrInvalidInterval = errors.New("invalid monitoring interval")
)

const (
	// errorBackoff is how long the loop sleeps after a cycle error
	// before trying again.
	errorBackoff = 30 * time.Second

	minIntervalSeconds = 30
	maxIntervalSeconds = 3600
	replicaFloor       = 1
	replicaCeiling     = 100
)

type Config struct {
	InitialReplicas int
	MinReplicas     int
	MaxReplicas     int
	Cooldown        time.Duration
	Interval        time.Duration
}

// Parameters carries a partial update; nil fields keep their current value.
type Parameters struct {
	MinReplicas     *int
	MaxReplicas     *int
	CooldownSeconds *int
	IntervalSeconds *int
}

type Controller struct {
	collector *metrics.Collector
	engine    *decision.Engine
	executor  *executor.Executor
	publisher *events.Publisher

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time

	mu                sync.Mutex
	state             models.ControllerState
	enabled           bool
	currentReplicas   int
	minReplicas       int
	maxReplicas       int
	cooldown          time.Duration
	interval          time.Duration
	lastScalingAction time.Time
	lastSnapshot      map[string]models.ScalingMetric

	cancel context.CancelFunc
	done   chan struct{}

	// baseCtx is the context passed to the first Start; Enable reuses it
	// to bring the loop back after a disable.
	baseCtx     context.Context
	startedOnce bool
}

func NewController(collector *metrics.Collector, engine *decision.Engine, exec *executor.Executor, publisher *events.Publisher, config Config) *Controller {
	if config.InitialReplicas < config.MinReplicas {
		config.InitialReplicas = config.MinReplicas
	}
	if config.Interval <= 0 {
		config.Interval = 60 * time.Second
	}
	if config.Cooldown <= 0 {
		config.Cooldown = 5 * time.Minute
	}
	return &Controller{
		collector:       collector,
		engine:          engine,
		executor:        exec,
		publisher:       publisher,
		now:             time.Now,
		state:           models.ControllerStopped,
		enabled:         true,
		currentReplicas: config.InitialReplicas,
		minReplicas:     config.MinReplicas,
		maxReplicas:     config.MaxReplicas,
		cooldown:        config.Cooldown,
		interval:        config.Interval,
	}
}

// Start launches the decision loop. Starting an already-running controller
// is a no-op; starting a disabled controller fails.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return ErrDisabled
	}
	if c.state == models.ControllerRunning {
		c.mu.Unlock()
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.baseCtx = ctx
	c.startedOnce = true
	c.cancel = cancel
	c.done = make(chan struct{})
	c.state = models.ControllerRunning
	done := c.done
	c.mu.Unlock()

	logger.WithComponent("controller").Info("Scaling controller started")

	go c.loop(loopCtx, done)
	return nil
}

// Stop halts the loop and waits for the in-flight cycle to finish. The
// controller stays enabled and can be started again.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state != models.ControllerRunning {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()

	cancel()
	<-done

	c.mu.Lock()
	c.state = models.ControllerStopped
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()

	logger.WithComponent("controller").Info("Scaling controller stopped")
}

// Enable re-arms a disabled controller. If the loop had been started
// before, it is brought back so the fleet is managed again without a
// separate Start call.
func (c *Controller) Enable() {
	c.mu.Lock()
	c.enabled = true
	restart := c.startedOnce && c.state != models.ControllerRunning
	ctx := c.baseCtx
	c.mu.Unlock()

	logger.WithComponent("controller").Info("Scaling controller enabled")

	if restart {
		if err := c.Start(ctx); err != nil {
			logger.WithComponent("controller").WithError(err).Error("Failed to restart scaling loop")
		}
	}

	if c.publisher != nil {
		c.publisher.ConfigUpdated(c.GetStatus())
	}
}

// Disable stops the loop if it is running and prevents future starts
// until Enable is called.
func (c *Controller) Disable() {
	c.mu.Lock()
	c.enabled = false
	running := c.state == models.ControllerRunning
	c.mu.Unlock()

	if running {
		c.Stop()
	}

	logger.WithComponent("controller").Info("Scaling controller disabled")

	if c.publisher != nil {
		c.publisher.ConfigUpdated(c.GetStatus())
	}
}

func (c *Controller) GetStatus() models.ControllerStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make(map[string]models.ScalingMetric, len(c.lastSnapshot))
	for name, metric := range c.lastSnapshot {
		snapshot[name] = metric
	}

	return models.ControllerStatus{
		State:             c.state,
		Enabled:           c.enabled,
		CurrentReplicas:   c.currentReplicas,
		MinReplicas:       c.minReplicas,
		MaxReplicas:       c.maxReplicas,
		CooldownSeconds:   int(c.cooldown.Seconds()),
		IntervalSeconds:   int(c.interval.Seconds()),
		LastScalingAction: c.lastScalingAction,
		MetricSnapshot:    snapshot,
	}
}

// SetParameters validates and applies a partial parameter update. The
// update is atomic: on any validation failure nothing changes.
func (c *Controller) SetParameters(params Parameters) error {
	c.mu.Lock()

	min := c.minReplicas
	max := c.maxReplicas
	cooldown := c.cooldown
	interval := c.interval

	if params.MinReplicas != nil {
		min = *params.MinReplicas
	}
	if params.MaxReplicas != nil {
		max = *params.MaxReplicas
	}
	if params.CooldownSeconds != nil {
		cooldown = time.Duration(*params.CooldownSeconds) * time.Second
	}
	if params.IntervalSeconds != nil {
		interval = time.Duration(*params.IntervalSeconds) * time.Second
	}

	if min < replicaFloor || max > replicaCeiling || min > max {
		c.mu.Unlock()
		return fmt.Errorf("%w: min=%d max=%d (allowed %d..%d)", ErrInvalidBounds, min, max, replicaFloor, replicaCeiling)
	}
	if interval < minIntervalSeconds*time.Second || interval > maxIntervalSeconds*time.Second {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s (allowed %ds..%ds)", ErrInvalidInterval, interval, minIntervalSeconds, maxIntervalSeconds)
	}
	if cooldown < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: negative cooldown", ErrInvalidInterval)
	}

	c.minReplicas = min
	c.maxReplicas = max
	c.cooldown = cooldown
	c.interval = interval
	c.mu.Unlock()

	logger.WithComponent("controller").WithFields(map[string]interface{}{
		"min_replicas": min,
		"max_replicas": max,
		"cooldown":     cooldown.String(),
		"interval":     interval.String(),
	}).Info("Controller parameters updated")

	if c.publisher != nil {
		c.publisher.ConfigUpdated(c.GetStatus())
	}
	return nil
}

func (c *Controller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	// First cycle runs immediately so a freshly started controller does
	// not sit idle for a full interval.
	for {
		wait := c.currentInterval()
		if err := c.runCycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.WithComponent("controller").WithError(err).Error("Scaling cycle failed")
			telemetry.Get().IncCycleErrors()
			if c.publisher != nil {
				c.publisher.Error("scaling cycle failed", err)
			}
			wait = errorBackoff
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (c *Controller) currentInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// runCycle executes one collect-decide-apply pass.
func (c *Controller) runCycle(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	started := time.Now()
	telemetry.Get().IncCycles()
	defer func() {
		telemetry.Get().SetCycleLatency(time.Since(started))
	}()

	snapshot := c.collector.Collect(ctx)

	c.mu.Lock()
	c.lastSnapshot = snapshot
	state := decision.ControllerState{
		CurrentReplicas:   c.currentReplicas,
		MinReplicas:       c.minReplicas,
		MaxReplicas:       c.maxReplicas,
		LastScalingAction: c.lastScalingAction,
		Cooldown:          c.cooldown,
	}
	c.mu.Unlock()

	if c.publisher != nil {
		c.publisher.MetricsCollected(snapshot)
	}

	d := c.engine.Decide(c.now(), state, snapshot)
	telemetry.Get().IncDecision(string(d.Action))
	telemetry.Get().SetScores(d.ScaleUpScore, d.ScaleDownScore)
	if c.publisher != nil {
		c.publisher.DecisionMade(d)
	}

	status, err := c.executor.Apply(ctx, d)
	if status == models.ApplyStatusApplied {
		c.mu.Lock()
		c.currentReplicas = d.TargetReplicas
		c.lastScalingAction = d.Timestamp
		telemetry.Get().SetCurrentReplicas(c.currentReplicas)
		c.mu.Unlock()
	}
	if err != nil {
		return fmt.Errorf("applying decision: %w", err)
	}
	return nil
}

// RunOnce executes a single cycle outside the loop. Used by tests and
// the dry-run CLI path.
func (c *Controller) RunOnce(ctx context.Context) error {
	return c.runCycle(ctx)
}
