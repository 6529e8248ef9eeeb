package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3, cfg.Controller.MinReplicas)
	assert.Equal(t, 20, cfg.Controller.MaxReplicas)
	assert.Equal(t, 5*time.Minute, cfg.Controller.Cooldown)
	assert.Equal(t, time.Minute, cfg.Controller.Interval)
}

func TestValidateRejectsBadBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Controller.MinReplicas = 10
	cfg.Controller.MaxReplicas = 5

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_replicas")
}

func TestValidateRejectsShortInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Controller.Interval = 5 * time.Second

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "controller.interval")
}

func TestValidateRejectsHTTPSourceWithoutEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.Collector.Sources = []SourceConfig{
		{Name: "cpu_utilization", Type: "http", ThresholdUp: 80, Weight: 1},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint")
}

func TestValidateRejectsCrossedThresholds(t *testing.T) {
	cfg := validConfig()
	cfg.Collector.Sources = []SourceConfig{
		{Name: "cpu_utilization", Type: "static", ThresholdUp: 20, ThresholdDown: 80, Weight: 1},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "threshold_down")
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	cfg := validConfig()
	cfg.App.Mode = "production"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db.internal", Port: 5433, Name: "scaler",
		User: "svc", Password: "pw",
	}
	assert.Equal(t,
		"host=db.internal port=5433 user=svc password=pw dbname=scaler sslmode=disable",
		cfg.DSN(),
	)
}
