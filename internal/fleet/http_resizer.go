package fleet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gaigenticai/regulens-autoscaler/internal/logger"
)

// HTTPResizer drives an orchestration API over HTTP: PUT /replicas with
// the desired count, GET /replicas for the current one.
type HTTPResizer struct {
	client   *http.Client
	endpoint string
}

type HTTPResizerConfig struct {
	Endpoint string
	Timeout  time.Duration
}

func NewHTTPResizer(cfg HTTPResizerConfig) *HTTPResizer {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &HTTPResizer{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: cfg.Endpoint,
	}
}

type replicasPayload struct {
	Replicas int `json:"replicas"`
}

func (r *HTTPResizer) SetReplicas(ctx context.Context, target int) error {
	if target < 0 {
		return ErrInvalidTarget
	}

	body, err := json.Marshal(replicasPayload{Replicas: target})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrResizeFailed, err)
	}

	url := r.endpoint + "/replicas"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrResizeFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.WithComponent("resizer").Infof("Requesting fleet resize to %d replicas", target)

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrResizeTimeout
		}
		return fmt.Errorf("%w: %v", ErrResizeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%w: unexpected status code %d", ErrResizeFailed, resp.StatusCode)
	}

	return nil
}

func (r *HTTPResizer) Replicas(ctx context.Context) (int, error) {
	url := r.endpoint + "/replicas"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create request: %v", ErrResizeFailed, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrResizeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: unexpected status code %d", ErrResizeFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read response body: %v", ErrResizeFailed, err)
	}

	var payload replicasPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrResizeFailed, err)
	}

	return payload.Replicas, nil
}

func (r *HTTPResizer) HealthCheck(ctx context.Context) error {
	url := r.endpoint + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

func (r *HTTPResizer) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
