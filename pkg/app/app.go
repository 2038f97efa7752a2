package app

import (
	"errors"
	"log/slog"

	"github.com/amirasaad/convlog/pkg/cache"
	"github.com/amirasaad/convlog/pkg/config"
	"github.com/amirasaad/convlog/pkg/repository"
	"github.com/amirasaad/convlog/pkg/service/conversion"
)

// Deps contains the long-lived handles the services are built from.
type Deps struct {
	Uow          repository.UnitOfWork
	HistoryCache cache.HistoryCache
	Logger       *slog.Logger
	// Closers release the handles above, in order, on shutdown.
	Closers []func() error
}

type App struct {
	Deps              *Deps
	Config            *config.App
	ConversionService *conversion.Service
}

func New(deps *Deps, cfg *config.App) *App {
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	var opts []conversion.Option
	if deps.HistoryCache != nil {
		opts = append(opts, conversion.WithCache(deps.HistoryCache, cfg.History.CacheTTL))
	}
	app.ConversionService = conversion.New(deps.Uow, deps.Logger, opts...)
	return app
}

// Close releases every dependency, reporting all failures.
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.Deps.Closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
