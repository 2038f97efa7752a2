package initializer

import (
	"context"
	"fmt"
	"time"

	"github.com/amirasaad/convlog/infra"
	infra_repository "github.com/amirasaad/convlog/infra/repository"
	"github.com/amirasaad/convlog/pkg/app"
	"github.com/amirasaad/convlog/pkg/config"
)

// InitializeDependencies initializes all the application dependencies
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	err error,
) {
	deps = &app.Deps{}
	logger := SetupLogger(cfg.Log)
	deps.Logger = logger

	// Initialize database
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}

	// Initialize unit of work and create the schema up front so a broken
	// database is reported at startup rather than on the first request.
	uow := infra_repository.NewUoW(db)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err = uow.Migrate(ctx); err != nil {
		logger.Warn("Failed to prepare schema, will retry on first request", "error", err)
	}
	deps.Uow = uow

	// Initialize history cache
	historyCache, err := GetHistoryCache(ctx, cfg, logger)
	if err != nil {
		_ = infra.CloseDB(db)
		return nil, fmt.Errorf("failed to initialize history cache: %w", err)
	}
	if historyCache != nil {
		deps.HistoryCache = historyCache
		deps.Closers = append(deps.Closers, historyCache.Close)
	}
	deps.Closers = append(deps.Closers, func() error { return infra.CloseDB(db) })

	return deps, nil
}
