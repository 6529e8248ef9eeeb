package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gaigenticai/regulens-autoscaler/pkg/database"
	"github.com/gin-gonic/gin"
)

// SourceChecker reports whether the metric sources are reachable.
type SourceChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	db      *database.DB
	sources SourceChecker
}

func NewHealthHandler(db *database.DB, sources SourceChecker) *HealthHandler {
	return &HealthHandler{db: db, sources: sources}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status := "healthy"

	// Check database
	if err := h.db.HealthCheck(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	// Check metric sources
	if h.sources != nil {
		if err := h.sources.HealthCheck(ctx); err != nil {
			checks["metric_sources"] = "unhealthy: " + err.Error()
			status = "unhealthy"
		} else {
			checks["metric_sources"] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:    "not ready",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	// A reachable database with no schema is still not ready.
	if ready, err := h.db.SchemaReady(ctx); err != nil || !ready {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:    "not ready",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
