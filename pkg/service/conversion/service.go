// Package conversion provides the conversion log operations: submitting a
// record, listing recent history and clearing it. Every operation runs in
// its own unit of work.
package conversion

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/amirasaad/convlog/pkg/cache"
	"github.com/amirasaad/convlog/pkg/domain"
	"github.com/amirasaad/convlog/pkg/domain/conversion"
	"github.com/amirasaad/convlog/pkg/repository"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL bounds how long a cached history snapshot is served.
const DefaultCacheTTL = 5 * time.Minute

// Service provides business logic for the conversion log.
type Service struct {
	uow      repository.UnitOfWork
	cache    cache.HistoryCache
	cacheTTL time.Duration
	logger   *slog.Logger
	// loads collapses concurrent cache misses of one generation.
	loads singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables the recent-history cache.
func WithCache(c cache.HistoryCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// New creates a new Service with a UnitOfWork and logger.
func New(
	uow repository.UnitOfWork,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		uow:      uow,
		cacheTTL: DefaultCacheTTL,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit stores record, replacing every field of an existing record with the
// same ID. It is not retried on failure.
func (s *Service) Submit(
	ctx context.Context,
	record *conversion.Record,
) (outcome conversion.Outcome, err error) {
	logger := s.logger.With("handler", "Submit", "id", record.ID)
	if err = record.Validate(); err != nil {
		logger.Warn("rejected invalid record", "error", err)
		return 0, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.ConversionRepository()
		if err != nil {
			return err
		}
		created, err := repo.Upsert(ctx, record)
		if err != nil {
			return err
		}
		outcome = conversion.Replaced
		if created {
			outcome = conversion.Created
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to store conversion", "error", err)
		return 0, err
	}

	if err = s.invalidate(ctx); err != nil {
		logger.Error("stored conversion but failed to invalidate history cache", "error", err)
		return 0, err
	}

	logger.Info("conversion stored", "outcome", outcome.String())
	return outcome, nil
}

// ListRecent returns up to conversion.HistoryLimit records, newest first.
// An empty log yields an empty, non-nil slice.
//
// A cached snapshot is served only while the storage version it was read at
// is still current, so writes made through another service instance sharing
// the store are visible to the next listing.
func (s *Service) ListRecent(ctx context.Context) ([]*conversion.Record, error) {
	logger := s.logger.With("handler", "ListRecent")

	gen, version, cached, err := s.cachedHistory(ctx, logger)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	// Without a generation a load may predate a concurrent write, so it is
	// never shared.
	if gen < 0 {
		snap, err := s.load(ctx, logger, false)
		if err != nil {
			return nil, err
		}
		return snap.Records, nil
	}
	key := strconv.FormatInt(gen, 10) + "/" + version
	v, err, shared := s.loads.Do(key, func() (any, error) {
		snap, err := s.load(ctx, logger, true)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, gen, snap, s.cacheTTL); err != nil {
			logger.Warn("failed to cache history", "error", err)
		}
		return snap.Records, nil
	})
	if err != nil {
		return nil, err
	}
	records := v.([]*conversion.Record)
	if shared {
		records = copyRecords(records)
	}
	return records, nil
}

// load reads the history in one unit of work. With versioned set the storage
// version is read first, so the records are never older than the version
// they are tagged with.
func (s *Service) load(
	ctx context.Context,
	logger *slog.Logger,
	versioned bool,
) (*cache.Snapshot, error) {
	snap := &cache.Snapshot{}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.ConversionRepository()
		if err != nil {
			return err
		}
		if versioned {
			if snap.Version, err = repo.Version(ctx); err != nil {
				return err
			}
		}
		snap.Records, err = repo.ListRecent(ctx, conversion.HistoryLimit)
		return err
	})
	if err != nil {
		logger.Error("failed to list conversions", "error", err)
		return nil, err
	}
	if snap.Records == nil {
		snap.Records = []*conversion.Record{}
	}
	return snap, nil
}

// storageVersion reads the current storage version.
func (s *Service) storageVersion(ctx context.Context) (version string, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.ConversionRepository()
		if err != nil {
			return err
		}
		version, err = repo.Version(ctx)
		return err
	})
	return version, err
}

// Clear removes every record. Clearing an empty log succeeds.
func (s *Service) Clear(ctx context.Context) error {
	logger := s.logger.With("handler", "Clear")
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.ConversionRepository()
		if err != nil {
			return err
		}
		return repo.DeleteAll(ctx)
	})
	if err != nil {
		logger.Error("failed to clear conversions", "error", err)
		return err
	}
	if err := s.invalidate(ctx); err != nil {
		logger.Error("cleared conversions but failed to invalidate history cache", "error", err)
		return err
	}
	logger.Info("conversion history cleared")
	return nil
}

// Count returns the number of stored records.
func (s *Service) Count(ctx context.Context) (n int64, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.ConversionRepository()
		if err != nil {
			return err
		}
		n, err = repo.Count(ctx)
		return err
	})
	return n, err
}

// cachedHistory returns the cached records, if they are still current, and
// the generation and storage version a fresh snapshot should be stored under.
// A negative generation means the result must not be cached.
func (s *Service) cachedHistory(
	ctx context.Context,
	logger *slog.Logger,
) (gen int64, version string, records []*conversion.Record, err error) {
	if s.cache == nil {
		return -1, "", nil, nil
	}
	gen, err = s.cache.Generation(ctx)
	if err != nil {
		logger.Warn("history cache unavailable, reading storage", "error", err)
		return -1, "", nil, nil
	}
	version, err = s.storageVersion(ctx)
	if err != nil {
		logger.Error("failed to read history version", "error", err)
		return -1, "", nil, err
	}
	snap, ok, err := s.cache.Get(ctx, gen)
	if err != nil {
		logger.Warn("history cache read failed, reading storage", "error", err)
		return gen, version, nil, nil
	}
	if !ok {
		return gen, version, nil, nil
	}
	if snap.Version != version {
		logger.Debug("cached history is stale", "cached", snap.Version, "current", version)
		return gen, version, nil, nil
	}
	logger.Debug("history served from cache", "generation", gen, "records", len(snap.Records))
	records = snap.Records
	if records == nil {
		records = []*conversion.Record{}
	}
	return gen, version, records, nil
}

func (s *Service) invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("%w: invalidate history cache: %w", domain.ErrStorage, err)
	}
	return nil
}

func copyRecords(records []*conversion.Record) []*conversion.Record {
	out := make([]*conversion.Record, len(records))
	for i, r := range records {
		cp := *r
		out[i] = &cp
	}
	return out
}
