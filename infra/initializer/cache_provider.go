package initializer

import (
	"context"
	"fmt"
	"log/slog"

	infracache "github.com/amirasaad/convlog/infra/cache"
	"github.com/amirasaad/convlog/pkg/cache"
	"github.com/amirasaad/convlog/pkg/config"
)

// GetHistoryCache returns the history cache selected by
// cfg.History.CacheBackend, or nil when caching is disabled.
func GetHistoryCache(
	ctx context.Context,
	cfg *config.App,
	logger *slog.Logger,
) (cache.HistoryCache, error) {
	switch cfg.History.CacheBackend {
	case config.CacheBackendNone:
		logger.Info("History cache disabled")
		return nil, nil
	case config.CacheBackendRedis:
		c, err := infracache.NewRedisHistoryCache(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Using redis history cache",
			"key_prefix", cfg.Redis.KeyPrefix,
			"ttl", cfg.History.CacheTTL)
		return c, nil
	case config.CacheBackendMemory, "":
		logger.Info("Using in-memory history cache", "ttl", cfg.History.CacheTTL)
		return infracache.NewMemoryHistoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown history cache backend %q", cfg.History.CacheBackend)
	}
}
