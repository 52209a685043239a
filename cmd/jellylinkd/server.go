package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/vmunix/jellylink/internal/app"
	"github.com/vmunix/jellylink/internal/config"
	"github.com/vmunix/jellylink/internal/server"
)

// startupAttempts bounds the Jellyfin login retries at boot.
const startupAttempts = 8

func runServer(configPath string) error {
	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Create logger
	logger, closeLog, err := app.NewLogger(os.Stdout, cfg.Server.LogLevel, cfg.Server.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, version, logger)
	if err != nil {
		return err
	}
	if err := a.Connect(ctx, startupAttempts); err != nil {
		_ = a.Close(context.Background())
		return err
	}

	addr := cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port)
	logger.Info("server starting",
		"addr", addr,
		"public_url", cfg.Server.PublicURL,
		"jellyfin", cfg.Jellyfin.URL,
		"jellyseerr", cfg.Jellyseerr.Enabled,
		"cache", cfg.Cache.Backend,
		"metrics", cfg.Metrics.Enabled,
		"log_level", cfg.Server.LogLevel,
	)

	runner := server.NewRunner(a.API.Handler(), server.Config{
		Addr:            addr,
		ShutdownTimeout: 30 * time.Second,
	}, logger)
	runner.OnShutdown("close", a.Close)

	return runner.Run(ctx)
}
