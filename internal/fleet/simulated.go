package fleet

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gaigenticai/regulens-autoscaler/internal/logger"
	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

type InstanceState string

const (
	InstanceProvisioning InstanceState = "provisioning"
	InstanceActive       InstanceState = "active"
	InstanceDraining     InstanceState = "draining"
	InstanceTerminated   InstanceState = "terminated"
)

// Instance is one simulated replica.
type Instance struct {
	ID        string
	State     InstanceState
	CreatedAt time.Time
}

// SimulatedFleet is an in-memory Resizer for development and tests.
// New replicas pass through a provisioning delay before becoming active;
// removed replicas drain before terminating. With zero delays the
// transitions are immediate.
type SimulatedFleet struct {
	mu        sync.Mutex
	instances map[string]*Instance

	provisionDelay time.Duration
	drainDelay     time.Duration

	failNext error
}

type SimulatedFleetConfig struct {
	InitialReplicas int
	ProvisionDelay  time.Duration
	DrainDelay      time.Duration
}

func NewSimulatedFleet(cfg SimulatedFleetConfig) *SimulatedFleet {
	f := &SimulatedFleet{
		instances:      make(map[string]*Instance),
		provisionDelay: cfg.ProvisionDelay,
		drainDelay:     cfg.DrainDelay,
	}

	for i := 0; i < cfg.InitialReplicas; i++ {
		instance := f.newInstance()
		instance.State = InstanceActive
		f.instances[instance.ID] = instance
	}

	return f
}

// FailNext makes the next SetReplicas call return err. Used by tests to
// exercise the executor's failure path.
func (f *SimulatedFleet) FailNext(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = err
}

func (f *SimulatedFleet) SetReplicas(ctx context.Context, target int) error {
	if target < 0 {
		return ErrInvalidTarget
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}

	current := f.runningLocked()
	switch {
	case target > current:
		f.addLocked(target - current)
	case target < current:
		f.drainLocked(current - target)
	}

	return nil
}

func (f *SimulatedFleet) Replicas(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runningLocked(), nil
}

func (f *SimulatedFleet) HealthCheck(ctx context.Context) error {
	return nil
}

func (f *SimulatedFleet) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.instances = make(map[string]*Instance)
	return nil
}

// Instances returns a copy of the current instance set.
func (f *SimulatedFleet) Instances() []Instance {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Instance, 0, len(f.instances))
	for _, instance := range f.instances {
		out = append(out, *instance)
	}
	return out
}

func (f *SimulatedFleet) newInstance() *Instance {
	return &Instance{
		ID:        models.NewUUID(),
		State:     InstanceProvisioning,
		CreatedAt: time.Now(),
	}
}

// runningLocked counts replicas the orchestration platform would report:
// provisioning and active, but not draining.
func (f *SimulatedFleet) runningLocked() int {
	var count int
	for _, instance := range f.instances {
		if instance.State == InstanceProvisioning || instance.State == InstanceActive {
			count++
		}
	}
	return count
}

func (f *SimulatedFleet) addLocked(count int) {
	logger.WithComponent("fleet").Infof("Simulated fleet: adding %d replicas", count)

	for i := 0; i < count; i++ {
		instance := f.newInstance()
		if f.provisionDelay == 0 {
			instance.State = InstanceActive
		} else {
			go f.activateAfter(instance.ID, f.provisionDelay)
		}
		f.instances[instance.ID] = instance
	}
}

func (f *SimulatedFleet) drainLocked(count int) {
	logger.WithComponent("fleet").Infof("Simulated fleet: draining %d replicas", count)

	// Drain the newest instances first so long-lived replicas keep their
	// warm caches.
	running := make([]*Instance, 0, len(f.instances))
	for _, instance := range f.instances {
		if instance.State == InstanceActive || instance.State == InstanceProvisioning {
			running = append(running, instance)
		}
	}
	sort.Slice(running, func(i, j int) bool {
		return running[i].CreatedAt.After(running[j].CreatedAt)
	})

	if count > len(running) {
		count = len(running)
	}
	for _, instance := range running[:count] {
		if f.drainDelay == 0 {
			delete(f.instances, instance.ID)
		} else {
			instance.State = InstanceDraining
			go f.terminateAfter(instance.ID, f.drainDelay)
		}
	}
}

func (f *SimulatedFleet) activateAfter(id string, delay time.Duration) {
	time.Sleep(delay)

	f.mu.Lock()
	defer f.mu.Unlock()
	if instance, ok := f.instances[id]; ok && instance.State == InstanceProvisioning {
		instance.State = InstanceActive
	}
}

func (f *SimulatedFleet) terminateAfter(id string, delay time.Duration) {
	time.Sleep(delay)

	f.mu.Lock()
	defer f.mu.Unlock()
	if instance, ok := f.instances[id]; ok && instance.State == InstanceDraining {
		instance.State = InstanceTerminated
		delete(f.instances, id)
	}
}
