package telemetry

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposition(t *testing.T) {
	m := Get()
	m.IncCycles()
	m.IncDecision("SCALE_UP")
	m.IncApply("applied")
	m.IncCollectionErrors("cpu_utilization")
	m.SetCurrentReplicas(7)
	m.SetScores(0.42, 0)
	m.SetCircuitBreakerState("cpu_utilization", 1)
	m.SetCollectionLatency("cpu_utilization", 12*time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "autoscaler_cycles_total 1")
	assert.Contains(t, body, `autoscaler_decisions_total{action="SCALE_UP"} 1`)
	assert.Contains(t, body, `autoscaler_apply_total{status="applied"} 1`)
	assert.Contains(t, body, `autoscaler_collection_errors_total{source="cpu_utilization"} 1`)
	assert.Contains(t, body, "autoscaler_current_replicas 7")
	assert.Contains(t, body, "autoscaler_scale_up_score 0.42")
	assert.Contains(t, body, `autoscaler_circuit_breaker_state{name="cpu_utilization"} 1`)
	assert.Contains(t, body, `autoscaler_collection_latency_ms{source="cpu_utilization"} 12`)
}
