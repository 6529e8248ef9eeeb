package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gaigenticai/regulens-autoscaler/api"
	"github.com/gaigenticai/regulens-autoscaler/internal/audit"
	"github.com/gaigenticai/regulens-autoscaler/internal/auth"
	"github.com/gaigenticai/regulens-autoscaler/internal/controller"
	"github.com/gaigenticai/regulens-autoscaler/internal/decision"
	"github.com/gaigenticai/regulens-autoscaler/internal/events"
	"github.com/gaigenticai/regulens-autoscaler/internal/executor"
	"github.com/gaigenticai/regulens-autoscaler/internal/fleet"
	"github.com/gaigenticai/regulens-autoscaler/internal/logger"
	"github.com/gaigenticai/regulens-autoscaler/internal/metrics"
	"github.com/gaigenticai/regulens-autoscaler/internal/telemetry"
	"github.com/gaigenticai/regulens-autoscaler/pkg/config"
	"github.com/gaigenticai/regulens-autoscaler/pkg/database"
	"github.com/gaigenticai/regulens-autoscaler/pkg/database/queries"
	"github.com/gaigenticai/regulens-autoscaler/pkg/validation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	db, err := database.New(cfg.Database.ToDBConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	logger.Info("Database connection established")

	if *migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		logger.Info("Running database migrations")
		migrator := database.NewMigrator(db)
		if err := migrator.Run(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Migrations completed successfully")
		return nil
	}

	if err := seedAdminUser(db); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	// Event bus and publisher
	bus := events.NewEventBus(cfg.Events.BufferSize)
	defer bus.Close()
	publisher := events.NewPublisher(bus)

	// Metric sources
	collector, err := buildCollector(cfg, db)
	if err != nil {
		return fmt.Errorf("failed to build metric collector: %w", err)
	}
	defer collector.Close()

	// Fleet
	resizer, err := buildResizer(cfg.Fleet, cfg.Controller.InitialReplicas)
	if err != nil {
		return fmt.Errorf("failed to build fleet resizer: %w", err)
	}
	defer resizer.Close()

	// Audit trail: durable rows plus the structured log
	sink := audit.NewMultiSink(
		audit.NewPostgresSink(db.DB),
		audit.NewLogSink(),
	)

	engine := decision.NewEngine(decision.Config{})
	exec := executor.NewExecutor(resizer, sink, publisher, executor.Config{
		DryRun: cfg.Controller.DryRun,
	})

	ctrl := controller.NewController(collector, engine, exec, publisher, controller.Config{
		InitialReplicas: cfg.Controller.InitialReplicas,
		MinReplicas:     cfg.Controller.MinReplicas,
		MaxReplicas:     cfg.Controller.MaxReplicas,
		Cooldown:        cfg.Controller.Cooldown,
		Interval:        cfg.Controller.Interval,
	})

	if cfg.Prometheus.Enabled {
		telemetry.StartServer(cfg.Prometheus.Port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ctrl.Start(ctx); err != nil {
		return fmt.Errorf("failed to start controller: %w", err)
	}

	server := api.NewServer(cfg.API, api.Deps{
		DB:         db,
		Controller: ctrl,
		Sources:    collector,
		EventBus:   bus,
		WebSocket:  cfg.WebSocket,
	})

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	shutdownTimeout := cfg.App.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	ctrl.Stop()

	logger.Info("Server stopped gracefully")
	return nil
}

func buildCollector(cfg *config.Config, db *database.DB) (*metrics.Collector, error) {
	collector := metrics.NewCollector(metrics.CollectorConfig{
		Timeout: cfg.Collector.Timeout,
	})

	for _, src := range cfg.Collector.Sources {
		var source metrics.Source

		switch src.Type {
		case "http":
			source = metrics.NewHTTPSource(metrics.HTTPSourceConfig{
				Name:     src.Name,
				Endpoint: src.Endpoint,
				Timeout:  cfg.Collector.Timeout,
			})
		case "db_connections":
			source = metrics.NewDBConnectionsSource(src.Name, db)
		case "static":
			source = metrics.NewStaticSource(src.Name, 0)
		default:
			return nil, fmt.Errorf("unknown source type %q", src.Type)
		}

		source = metrics.NewResilientSource(metrics.ResilientSourceConfig{
			Source:        source,
			MaxFailures:   cfg.Collector.CircuitBreaker.MaxFailures,
			OpenTimeout:   cfg.Collector.CircuitBreaker.Timeout,
			RetryAttempts: cfg.Collector.RetryAttempts,
			RetryDelay:    cfg.Collector.RetryDelay,
		})

		err := collector.Register(source, metrics.SourceSpec{
			Name:          src.Name,
			ThresholdUp:   src.ThresholdUp,
			ThresholdDown: src.ThresholdDown,
			Weight:        src.Weight,
		})
		if err != nil {
			return nil, fmt.Errorf("registering source %q: %w", src.Name, err)
		}
	}

	return collector, nil
}

func buildResizer(cfg config.FleetConfig, initialReplicas int) (fleet.Resizer, error) {
	switch cfg.Type {
	case "http":
		return fleet.NewHTTPResizer(fleet.HTTPResizerConfig{
			Endpoint: cfg.Endpoint,
			Timeout:  cfg.Timeout,
		}), nil
	case "simulated":
		return fleet.NewSimulatedFleet(fleet.SimulatedFleetConfig{
			InitialReplicas: initialReplicas,
			ProvisionDelay:  cfg.ProvisionTime,
			DrainDelay:      cfg.DrainTimeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown fleet type %q", cfg.Type)
	}
}

// seedAdminUser creates a default operator account on first boot so the
// protected API is reachable before any users exist.
func seedAdminUser(db *database.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userRepo := queries.NewUserRepository(db.DB)

	count, err := userRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("REGULENS_ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
		logger.Warn("REGULENS_ADMIN_PASSWORD not set, seeding admin user with default password")
	} else if err := validation.ValidatePassword(password); err != nil {
		logger.Warnf("Seeded admin password is weak: %v", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	if _, err := userRepo.Create(ctx, "admin", hash); err != nil {
		return err
	}

	logger.Info("Seeded default admin user")
	return nil
}
