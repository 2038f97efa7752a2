package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/amirasaad/convlog/pkg/cache"
	"github.com/amirasaad/convlog/pkg/config"
	"github.com/amirasaad/convlog/pkg/domain/conversion"
	"github.com/redis/go-redis/v9"
)

// RedisHistoryCache implements HistoryCache using Redis. The generation is a
// counter bumped with INCR and each snapshot lives under its own key with a TTL.
type RedisHistoryCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisHistoryCache connects to the Redis server described by cfg and
// verifies it answers a PING.
func NewRedisHistoryCache(
	ctx context.Context,
	cfg *config.Redis,
	logger *slog.Logger,
) (*RedisHistoryCache, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis history cache: invalid URL: %w", err)
	}
	opt.PoolSize = cfg.PoolSize
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis history cache: connection failed: %w", err)
	}
	return NewRedisHistoryCacheWithClient(client, cfg.KeyPrefix, logger), nil
}

// NewRedisHistoryCacheWithClient wraps an existing client.
func NewRedisHistoryCacheWithClient(
	client *redis.Client,
	prefix string,
	logger *slog.Logger,
) *RedisHistoryCache {
	return &RedisHistoryCache{
		client: client,
		prefix: prefix,
		logger: logger.With("component", "redis-history-cache"),
	}
}

func (r *RedisHistoryCache) generationKey() string {
	return r.prefix + "history:generation"
}

func (r *RedisHistoryCache) snapshotKey(gen int64) string {
	return r.prefix + "history:snapshot:" + strconv.FormatInt(gen, 10)
}

func (r *RedisHistoryCache) Generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, r.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		r.logger.Error("Redis cache get generation error", "error", err)
		return 0, err
	}
	return gen, nil
}

func (r *RedisHistoryCache) Get(ctx context.Context, gen int64) (*cache.Snapshot, bool, error) {
	key := r.snapshotKey(gen)
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", "key", key)
		return nil, false, nil
	}
	if err != nil {
		r.logger.Error("Redis cache get error", "key", key, "error", err)
		return nil, false, err
	}
	var snap cache.Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		r.logger.Error("Redis cache unmarshal error", "key", key, "error", err)
		return nil, false, err
	}
	if snap.Records == nil {
		snap.Records = []*conversion.Record{}
	}
	r.logger.Debug("Redis cache hit", "key", key, "version", snap.Version, "records", len(snap.Records))
	return &snap, true, nil
}

func (r *RedisHistoryCache) Set(
	ctx context.Context,
	gen int64,
	snap *cache.Snapshot,
	ttl time.Duration,
) error {
	key := r.snapshotKey(gen)
	if snap.Records == nil {
		snap = &cache.Snapshot{Version: snap.Version, Records: []*conversion.Record{}}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		r.logger.Error("Redis cache marshal error", "key", key, "error", err)
		return err
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		r.logger.Error("Redis cache set error", "key", key, "error", err)
		return err
	}
	r.logger.Debug("Redis cache set", "key", key, "version", snap.Version, "records", len(snap.Records), "ttl", ttl)
	return nil
}

func (r *RedisHistoryCache) Invalidate(ctx context.Context) error {
	gen, err := r.client.Incr(ctx, r.generationKey()).Result()
	if err != nil {
		r.logger.Error("Redis cache invalidate error", "error", err)
		return err
	}
	r.logger.Debug("Redis cache invalidated", "generation", gen)
	return nil
}

func (r *RedisHistoryCache) Close() error {
	return r.client.Close()
}

var _ cache.HistoryCache = (*RedisHistoryCache)(nil)
