package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/amirasaad/convlog/infra/initializer"
	"github.com/amirasaad/convlog/pkg/app"
	"github.com/amirasaad/convlog/pkg/config"
	"github.com/amirasaad/convlog/webapi"
	log "github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
)

// @title Conversion Log API
// @version 1.0.0
// @description Stores unit conversions and serves the most recent history.
// @license.name MIT
// @host localhost:8000
// @BasePath /
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fiberApp, application, err := newServer(cfg)
	if err != nil {
		return err
	}
	return serve(ctx, fiberApp, application, cfg)
}

// newServer builds the dependencies once and the HTTP app on top of them.
func newServer(cfg *config.App) (*fiber.App, *app.App, error) {
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	application := app.New(deps, cfg)
	return webapi.SetupApp(application), application, nil
}

// serve listens until ctx is cancelled, then drains in-flight requests and
// releases the application's dependencies.
func serve(ctx context.Context, fiberApp *fiber.App, application *app.App, cfg *config.App) error {
	logger := application.Deps.Logger
	addr := cfg.Server.Addr()
	logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- fiberApp.Listen(addr)
	}()

	var err error
	select {
	case err = <-listenErr:
		if err != nil {
			err = fmt.Errorf("server stopped: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server", "timeout", cfg.Server.ShutdownTimeout)
		if shutdownErr := fiberApp.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); shutdownErr != nil {
			err = fmt.Errorf("shutdown: %w", shutdownErr)
		}
	}

	if closeErr := application.Close(); closeErr != nil {
		logger.Error("Failed to release dependencies", "error", closeErr)
		err = errors.Join(err, closeErr)
	}
	slog.Info("Server stopped")
	return err
}
