package conversion

import (
	"context"

	"github.com/amirasaad/convlog/pkg/domain/conversion"
)

// Repository defines data access for the conversion log.
type Repository interface {
	// Upsert inserts the record or, when a record with the same ID exists,
	// overwrites every field of it. created reports which of the two happened.
	Upsert(ctx context.Context, record *conversion.Record) (created bool, err error)

	// ListRecent returns at most limit records ordered by timestamp, newest
	// first. Equal timestamps are ordered by last write, newest first, then by ID.
	ListRecent(ctx context.Context, limit int) ([]*conversion.Record, error)

	// DeleteAll removes every record.
	DeleteAll(ctx context.Context) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// Version returns a marker that changes whenever a record is written or
	// the log is cleared, by this process or any other sharing the store.
	Version(ctx context.Context) (string, error)
}
