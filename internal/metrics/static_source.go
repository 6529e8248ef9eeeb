package metrics

import (
	"context"
	"sync"
)

// StaticSource returns a settable value. Used by the fleet simulator and
// by tests that need deterministic readings.
type StaticSource struct {
	name string
	mu   sync.RWMutex

	value      float64
	shouldFail bool
	failErr    error
}

func NewStaticSource(name string, value float64) *StaticSource {
	return &StaticSource{name: name, value: value}
}

func (s *StaticSource) SetValue(value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
}

func (s *StaticSource) SetShouldFail(shouldFail bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shouldFail = shouldFail
	s.failErr = err
}

func (s *StaticSource) Name() string {
	return s.name
}

func (s *StaticSource) Read(ctx context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.shouldFail {
		if s.failErr != nil {
			return 0, s.failErr
		}
		return 0, ErrReadFailed
	}
	return s.value, nil
}

func (s *StaticSource) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.shouldFail {
		return ErrReadFailed
	}
	return nil
}

func (s *StaticSource) Close() error {
	return nil
}
