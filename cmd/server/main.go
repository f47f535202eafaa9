// Package main implements the entry point for the taskloop server,
// an HTTP host that runs fire-and-forget tasks and recurring jobs in
// the same process as request handling.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/phrazzld/taskloop/internal/config"
	"github.com/phrazzld/taskloop/internal/platform/logger"
)

// main wires configuration, logging and the application together and
// runs the server until shutdown.
func main() {
	ctx := context.Background()

	app, err := initializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration, sets up logging and builds the
// application with all dependencies injected.
func initializeApp(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"heartbeat_interval", cfg.Jobs.HeartbeatInterval,
		"stats_interval", cfg.Jobs.StatsInterval)

	return newApplication(ctx, cfg, appLogger)
}
