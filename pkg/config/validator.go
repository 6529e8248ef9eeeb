package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, errors.New("database.port must be between 1 and 65535"))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("database.name is required"))
	}
	if c.Database.MaxConnections <= 0 {
		errs = append(errs, errors.New("database.max_connections must be positive"))
	}

	// Controller validation
	if c.Controller.MinReplicas < 1 {
		errs = append(errs, errors.New("controller.min_replicas must be at least 1"))
	}
	if c.Controller.MaxReplicas > 100 {
		errs = append(errs, errors.New("controller.max_replicas must not exceed 100"))
	}
	if c.Controller.MaxReplicas < c.Controller.MinReplicas {
		errs = append(errs, errors.New("controller.max_replicas must be >= min_replicas"))
	}
	if c.Controller.Cooldown <= 0 {
		errs = append(errs, errors.New("controller.cooldown must be positive"))
	}
	if c.Controller.Interval.Seconds() < 30 || c.Controller.Interval.Seconds() > 3600 {
		errs = append(errs, errors.New("controller.interval must be between 30s and 1h"))
	}

	// Collector validation
	if c.Collector.Timeout <= 0 {
		errs = append(errs, errors.New("collector.timeout must be positive"))
	}
	if c.Collector.Timeout >= c.Controller.Interval {
		errs = append(errs, errors.New("collector.timeout must be less than controller.interval"))
	}
	for i, src := range c.Collector.Sources {
		if src.Name == "" {
			errs = append(errs, fmt.Errorf("collector.sources[%d].name is required", i))
		}
		if src.Weight < 0 {
			errs = append(errs, fmt.Errorf("collector.sources[%d].weight must be non-negative", i))
		}
		if src.ThresholdUp > 0 && src.ThresholdDown > src.ThresholdUp {
			errs = append(errs, fmt.Errorf("collector.sources[%d]: threshold_down exceeds threshold_up", i))
		}
		switch src.Type {
		case "http":
			if src.Endpoint == "" {
				errs = append(errs, fmt.Errorf("collector.sources[%d].endpoint is required for http sources", i))
			}
		case "db_connections", "static":
		default:
			errs = append(errs, fmt.Errorf("collector.sources[%d].type must be one of: http, db_connections, static", i))
		}
	}

	// Fleet validation
	validFleets := map[string]bool{"simulated": true, "http": true}
	if !validFleets[c.Fleet.Type] {
		errs = append(errs, errors.New("fleet.type must be one of: simulated, http"))
	}
	if c.Fleet.Type == "http" && c.Fleet.Endpoint == "" {
		errs = append(errs, errors.New("fleet.endpoint is required for http fleets"))
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.App.Mode == "production" && c.API.JWTSecret == "change-me-in-production" {
		errs = append(errs, errors.New("api.jwt_secret must be changed in production"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
