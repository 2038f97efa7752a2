package cache

import (
	"context"
	"time"

	"github.com/amirasaad/convlog/pkg/domain/conversion"
)

// Snapshot is a cached history listing and the storage version it was read
// at. Callers compare Version with the current storage version before
// serving Records, so writes made by other processes are never hidden.
type Snapshot struct {
	Version string               `json:"version"`
	Records []*conversion.Record `json:"records"`
}

// HistoryCache caches the recent-history listing.
//
// Entries are keyed by a generation number. Invalidate moves the cache to a
// new generation, so a snapshot read from storage before a write can only be
// stored under the generation it was read in and is never served afterwards.
type HistoryCache interface {
	// Generation returns the current generation.
	Generation(ctx context.Context) (int64, error)
	// Get returns the snapshot stored for gen, if any.
	Get(ctx context.Context, gen int64) (*Snapshot, bool, error)
	// Set stores snap as the snapshot for gen.
	Set(ctx context.Context, gen int64, snap *Snapshot, ttl time.Duration) error
	// Invalidate starts a new generation.
	Invalidate(ctx context.Context) error
	// Close releases any underlying connection.
	Close() error
}
