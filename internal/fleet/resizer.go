package fleet

import (
	"context"
	"errors"
)

var (
	ErrResizeFailed  = errors.New("fleet resize failed")
	ErrInvalidTarget = errors.New("invalid target replica count")
	ErrResizeTimeout = errors.New("fleet resize timeout")
)

// Resizer abstracts the orchestration platform that actually changes the
// number of running replicas.
type Resizer interface {
	// SetReplicas resizes the fleet to exactly target replicas.
	SetReplicas(ctx context.Context, target int) error

	// Replicas returns the platform's view of the current replica count.
	Replicas(ctx context.Context) (int, error)

	// HealthCheck verifies the resizer can reach the platform.
	HealthCheck(ctx context.Context) error

	// Close releases resources.
	Close() error
}
