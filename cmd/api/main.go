package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/api/rest"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/infrastructure/config"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/infrastructure/telemetry"
)

func main() {
	var configPath = flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel)

	ctx := context.Background()
	telConfig := telemetry.DefaultConfig()
	telConfig.ServiceVersion = cfg.Version
	telConfig.Environment = cfg.Environment
	telConfig.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	telConfig.Enabled = cfg.Telemetry.Enabled
	telConfig.SamplingRate = cfg.Telemetry.SamplingRate
	telConfig.ExportTimeout = cfg.Telemetry.ExportTimeout
	telConfig.BatchTimeout = cfg.Telemetry.BatchTimeout

	provider, err := telemetry.InitializeOpenTelemetry(ctx, telConfig)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(ctx); err != nil {
			logger.Error("failed to shutdown telemetry", "error", err)
		}
	}()

	// Prometheus scrapes a separate port so operational traffic never
	// competes with the API.
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
		logger.Info("starting metrics server", "address", addr)
		if err := http.ListenAndServe(addr, metricsMux()); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	server, err := rest.NewServer(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
