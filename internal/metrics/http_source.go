package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gaigenticai/regulens-autoscaler/internal/logger"
)

// HTTPSource reads a metric from a monitoring endpoint returning
// {"name": ..., "value": ...} JSON.
type HTTPSource struct {
	name     string
	client   *http.Client
	endpoint string
}

type HTTPSourceConfig struct {
	Name     string
	Endpoint string
	Timeout  time.Duration
}

func NewHTTPSource(cfg HTTPSourceConfig) *HTTPSource {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &HTTPSource{
		name: cfg.Name,
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: cfg.Endpoint,
	}
}

type readingResponse struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Timestamp string  `json:"timestamp"`
}

func (s *HTTPSource) Name() string {
	return s.name
}

func (s *HTTPSource) Read(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create request: %v", ErrReadFailed, err)
	}

	req.Header.Set("Accept", "application/json")

	logger.WithMetric(s.name).Debugf("Reading metric from %s", s.endpoint)

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return 0, ErrTimeout
		}
		return 0, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: unexpected status code %d", ErrReadFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read response body: %v", ErrReadFailed, err)
	}

	var reading readingResponse
	if err := json.Unmarshal(body, &reading); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return reading.Value, nil
}

func (s *HTTPSource) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
