// Package fleetsim runs a standalone fake fleet: an HTTP service that
// serves metric readings shaped by a load pattern and accepts resize
// requests, so the controller can be exercised end to end without real
// infrastructure.
package fleetsim

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gaigenticai/regulens-autoscaler/internal/fleet"
	"github.com/gaigenticai/regulens-autoscaler/internal/logger"
)

type Config struct {
	Port            int
	InitialReplicas int
	Pattern         string

	// BaseLoad is the total simulated load across the fleet; per-replica
	// readings divide it by the current replica count.
	BaseLoad float64
}

type Server struct {
	fleet      *fleet.SimulatedFleet
	pattern    Pattern
	baseLoad   float64
	httpServer *http.Server
}

func New(cfg Config) *Server {
	if cfg.Port == 0 {
		cfg.Port = 9000
	}
	if cfg.InitialReplicas <= 0 {
		cfg.InitialReplicas = 3
	}
	if cfg.BaseLoad <= 0 {
		cfg.BaseLoad = 150
	}

	s := &Server{
		fleet: fleet.NewSimulatedFleet(fleet.SimulatedFleetConfig{
			InitialReplicas: cfg.InitialReplicas,
		}),
		pattern:  ParsePattern(cfg.Pattern),
		baseLoad: cfg.BaseLoad,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.handleHealth)
	router.GET("/replicas", s.handleGetReplicas)
	router.PUT("/replicas", s.handleSetReplicas)
	router.GET("/metrics/:name", s.handleMetric)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	return s
}

func (s *Server) Start() error {
	logger.Infof("Fleet simulator listening on %s (pattern: %s)", s.httpServer.Addr, s.pattern.Name())

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Fleet simulator server error: %v", err)
		}
	}()
	return nil
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleGetReplicas(c *gin.Context) {
	replicas, err := s.fleet.Replicas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"replicas": replicas})
}

type resizeRequest struct {
	Replicas *int `json:"replicas" binding:"required"`
}

func (s *Server) handleSetReplicas(c *gin.Context) {
	var req resizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.fleet.SetReplicas(c.Request.Context(), *req.Replicas); err != nil {
		status := http.StatusInternalServerError
		if err == fleet.ErrInvalidTarget {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	logger.Infof("Fleet resized to %d replicas", *req.Replicas)
	c.JSON(http.StatusOK, gin.H{"replicas": *req.Replicas})
}

// handleMetric serves a per-replica load reading: the patterned total
// load divided across the current fleet, so scaling up visibly lowers
// the value the controller sees on the next cycle.
func (s *Server) handleMetric(c *gin.Context) {
	name := c.Param("name")

	replicas, err := s.fleet.Replicas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if replicas < 1 {
		replicas = 1
	}

	total := s.pattern.Apply(s.baseLoad)
	perReplica := total / float64(replicas)

	c.JSON(http.StatusOK, gin.H{
		"name":      name,
		"value":     perReplica,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
