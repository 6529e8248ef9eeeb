package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gaigenticai/regulens-autoscaler/internal/fleetsim"
	"github.com/gaigenticai/regulens-autoscaler/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	port := flag.Int("port", 9000, "simulator server port")
	replicas := flag.Int("replicas", 3, "initial replica count")
	pattern := flag.String("pattern", "steady", "load pattern: steady, daily, random, gradual_rise, sine_wave")
	baseLoad := flag.Float64("base-load", 150, "total simulated load across the fleet")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger.Setup(*logLevel, "development")
	logger.Info("Starting fleet simulator")

	sim := fleetsim.New(fleetsim.Config{
		Port:            *port,
		InitialReplicas: *replicas,
		Pattern:         *pattern,
		BaseLoad:        *baseLoad,
	})

	if err := sim.Start(); err != nil {
		return fmt.Errorf("failed to start simulator: %w", err)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down simulator")
	return sim.Stop()
}
