package telemetry

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gaigenticai/regulens-autoscaler/internal/logger"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	cyclesTotal      int64
	cycleErrors      int64
	collectionErrors map[string]int64 // source -> count
	decisionsTotal   map[string]int64 // action -> count
	applyTotal       map[string]int64 // status -> count
	auditErrors      int64

	// Gauges
	currentReplicas     int
	scaleUpScore        float64
	scaleDownScore      float64
	circuitBreakerState map[string]int // 0=closed, 1=open, 2=half-open

	// Histograms (simplified - just track last values)
	collectionLatency map[string]time.Duration
	cycleLatency      time.Duration
}

var (
	instance *Metrics
	once     sync.Once
)

func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			collectionErrors:    make(map[string]int64),
			decisionsTotal:      make(map[string]int64),
			applyTotal:          make(map[string]int64),
			circuitBreakerState: make(map[string]int),
			collectionLatency:   make(map[string]time.Duration),
		}
	})
	return instance
}

func (m *Metrics) IncCycles() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cyclesTotal++
}

func (m *Metrics) IncCycleErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycleErrors++
}

func (m *Metrics) IncCollectionErrors(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collectionErrors[source]++
}

func (m *Metrics) IncDecision(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisionsTotal[action]++
}

func (m *Metrics) IncApply(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyTotal[status]++
}

func (m *Metrics) IncAuditErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auditErrors++
}

func (m *Metrics) SetCurrentReplicas(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentReplicas = count
}

func (m *Metrics) SetScores(up, down float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scaleUpScore = up
	m.scaleDownScore = down
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.circuitBreakerState[name] = state
}

func (m *Metrics) SetCollectionLatency(source string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collectionLatency[source] = d
}

func (m *Metrics) SetCycleLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycleLatency = d
}

func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		writeMetric(w, "autoscaler_cycles_total", nil, float64(m.cyclesTotal))
		writeMetric(w, "autoscaler_cycle_errors_total", nil, float64(m.cycleErrors))
		writeMetric(w, "autoscaler_audit_errors_total", nil, float64(m.auditErrors))

		for source, count := range m.collectionErrors {
			writeMetric(w, "autoscaler_collection_errors_total", map[string]string{"source": source}, float64(count))
		}

		for action, count := range m.decisionsTotal {
			writeMetric(w, "autoscaler_decisions_total", map[string]string{"action": action}, float64(count))
		}

		for status, count := range m.applyTotal {
			writeMetric(w, "autoscaler_apply_total", map[string]string{"status": status}, float64(count))
		}

		writeMetric(w, "autoscaler_current_replicas", nil, float64(m.currentReplicas))
		writeMetric(w, "autoscaler_scale_up_score", nil, m.scaleUpScore)
		writeMetric(w, "autoscaler_scale_down_score", nil, m.scaleDownScore)

		for name, state := range m.circuitBreakerState {
			writeMetric(w, "autoscaler_circuit_breaker_state", map[string]string{"name": name}, float64(state))
		}

		for source, latency := range m.collectionLatency {
			writeMetric(w, "autoscaler_collection_latency_ms", map[string]string{"source": source}, float64(latency.Milliseconds()))
		}

		writeMetric(w, "autoscaler_cycle_latency_ms", nil, float64(m.cycleLatency.Milliseconds()))
	})
}

func writeMetric(w http.ResponseWriter, name string, labels map[string]string, value float64) {
	labelStr := ""
	if len(labels) > 0 {
		labelStr = "{"
		first := true
		for k, v := range labels {
			if !first {
				labelStr += ","
			}
			labelStr += k + `="` + v + `"`
			first = false
		}
		labelStr += "}"
	}
	w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(value, 'f', -1, 64) + "\n"))
}

func StartServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Get().Handler())

	addr := ":" + strconv.Itoa(port)
	logger.Infof("Prometheus metrics server listening on %s", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Errorf("Prometheus server error: %v", err)
		}
	}()
}
