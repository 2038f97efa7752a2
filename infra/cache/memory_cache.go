package cache

import (
	"context"
	"sync"
	"time"

	"github.com/amirasaad/convlog/pkg/cache"
	"github.com/amirasaad/convlog/pkg/domain/conversion"
)

// MemoryHistoryCache implements HistoryCache in process memory. Only the
// snapshot of the current generation is kept.
type MemoryHistoryCache struct {
	mu         sync.RWMutex
	generation int64
	entry      *cacheEntry
	now        func() time.Time
}

type cacheEntry struct {
	generation int64
	snapshot   *cache.Snapshot
	expiresAt  time.Time
}

// NewMemoryHistoryCache creates a new in-memory history cache.
func NewMemoryHistoryCache() *MemoryHistoryCache {
	return &MemoryHistoryCache{now: time.Now}
}

func (c *MemoryHistoryCache) Generation(context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation, nil
}

func (c *MemoryHistoryCache) Get(_ context.Context, gen int64) (*cache.Snapshot, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e := c.entry
	if e == nil || e.generation != gen || gen != c.generation {
		return nil, false, nil
	}
	if c.now().After(e.expiresAt) {
		return nil, false, nil
	}
	return cloneSnapshot(e.snapshot), true, nil
}

func (c *MemoryHistoryCache) Set(
	_ context.Context,
	gen int64,
	snap *cache.Snapshot,
	ttl time.Duration,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A snapshot from an older generation may predate a write.
	if gen != c.generation {
		return nil
	}
	c.entry = &cacheEntry{
		generation: gen,
		snapshot:   cloneSnapshot(snap),
		expiresAt:  c.now().Add(ttl),
	}
	return nil
}

func (c *MemoryHistoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.entry = nil
	return nil
}

func (c *MemoryHistoryCache) Close() error { return nil }

func cloneSnapshot(snap *cache.Snapshot) *cache.Snapshot {
	return &cache.Snapshot{Version: snap.Version, Records: cloneRecords(snap.Records)}
}

func cloneRecords(records []*conversion.Record) []*conversion.Record {
	out := make([]*conversion.Record, len(records))
	for i, r := range records {
		cp := *r
		out[i] = &cp
	}
	return out
}

var _ cache.HistoryCache = (*MemoryHistoryCache)(nil)
