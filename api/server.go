package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gaigenticai/regulens-autoscaler/api/handlers"
	"github.com/gaigenticai/regulens-autoscaler/api/middleware"
	"github.com/gaigenticai/regulens-autoscaler/api/websocket"
	"github.com/gaigenticai/regulens-autoscaler/internal/auth"
	"github.com/gaigenticai/regulens-autoscaler/internal/events"
	"github.com/gaigenticai/regulens-autoscaler/pkg/config"
	"github.com/gaigenticai/regulens-autoscaler/pkg/database"
	"github.com/gaigenticai/regulens-autoscaler/pkg/database/queries"
)

// maxRequestBody bounds every request body; the largest legitimate
// payload is a parameter update of a few hundred bytes.
const maxRequestBody = 64 << 10

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      config.APIConfig
	db          *database.DB
	authService *auth.Service
	controller  handlers.ScalingController
	sources     handlers.SourceChecker
	wsHub       *websocket.Hub
	wsBridge    *websocket.EventBridge
}

type Deps struct {
	DB         *database.DB
	Controller handlers.ScalingController
	Sources    handlers.SourceChecker
	EventBus   *events.EventBus
	WebSocket  config.WebSocketConfig
}

func NewServer(cfg config.APIConfig, deps Deps) *Server {
	if cfg.JWTSecret == "" || cfg.JWTSecret == "change-me-in-production" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	jwtDuration := cfg.JWTDuration
	if jwtDuration == 0 {
		jwtDuration = 24 * time.Hour
	}

	router := gin.New()
	authService := auth.NewService(cfg.JWTSecret, jwtDuration)
	wsHub := websocket.NewHub(&deps.WebSocket)

	s := &Server{
		router:      router,
		config:      cfg,
		db:          deps.DB,
		authService: authService,
		controller:  deps.Controller,
		sources:     deps.Sources,
		wsHub:       wsHub,
	}

	s.setupMiddleware()
	s.setupRoutes()

	// Start WebSocket hub
	go wsHub.Run()

	// Forward controller events to WebSocket clients
	if deps.EventBus != nil {
		s.wsBridge = websocket.NewEventBridge(wsHub, deps.EventBus.SubscribeAll())
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.RequestSizeLimit(maxRequestBody))
	s.router.Use(middleware.CORS(s.config.CORS))
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.TraceID())

	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))
}

func (s *Server) setupRoutes() {
	// Repositories
	userRepo := queries.NewUserRepository(s.db.DB)
	decisionRepo := queries.NewDecisionRepository(s.db.DB)

	// Handlers
	healthHandler := handlers.NewHealthHandler(s.db, s.sources)
	authHandler := handlers.NewAuthHandler(userRepo, s.authService)
	controllerHandler := handlers.NewControllerHandler(s.controller)
	decisionsHandler := handlers.NewDecisionsHandler(decisionRepo, s.config.DefaultLimit, s.config.MaxLimit)

	// Public routes
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	// Auth routes
	s.router.POST("/auth/login", middleware.AuthRateLimiter(), authHandler.Login)

	// WebSocket route
	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	// Protected routes
	protected := s.router.Group("/")
	protected.Use(middleware.JWTAuth(s.authService))
	{
		// Controller; mutating routes share a stricter budget than reads.
		mutate := middleware.PerRoute(10, time.Minute)
		protected.GET("/controller/status", controllerHandler.GetStatus)
		protected.PUT("/controller/parameters", mutate, controllerHandler.SetParameters)
		protected.POST("/controller/enable", mutate, controllerHandler.Enable)
		protected.POST("/controller/disable", mutate, controllerHandler.Disable)

		// Decision history
		protected.GET("/decisions", decisionsHandler.List)
		protected.GET("/decisions/stats", decisionsHandler.Stats)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	idleTimeout := s.config.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  idleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop the event bridge first
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
