// Package testutils holds helpers shared by tests: throwaway databases,
// record fixtures and the integration test switch.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amirasaad/convlog/infra"
	"github.com/amirasaad/convlog/pkg/config"
	"github.com/amirasaad/convlog/pkg/domain/conversion"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// IntegrationEnv enables tests that need Docker.
const IntegrationEnv = "CONVLOG_INTEGRATION"

// RequireIntegration skips the test unless IntegrationEnv is set.
func RequireIntegration(tb testing.TB) {
	tb.Helper()
	if os.Getenv(IntegrationEnv) == "" {
		tb.Skipf("set %s=1 to run integration tests", IntegrationEnv)
	}
}

// NewSQLiteDB opens a file-backed SQLite database in a temporary directory.
func NewSQLiteDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	return OpenSQLiteDB(tb, filepath.Join(tb.TempDir(), "conversions.db"))
}

// OpenSQLiteDB opens its own connection to the SQLite file at path. Opening
// one path twice gives two independent handles on the same store, the way a
// server and a CLI share it.
func OpenSQLiteDB(tb testing.TB, path string) *gorm.DB {
	tb.Helper()
	db, err := infra.NewDBConnection(&config.DB{Url: "sqlite://" + path}, "test")
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = infra.CloseDB(db) })
	return db
}

// NewPostgresDB starts a Postgres container and connects to it.
func NewPostgresDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	RequireIntegration(tb)

	ctx := context.Background()
	container, err := tcpostgres.Run(
		ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(tb, err)

	db, err := infra.NewDBConnection(&config.DB{Url: dsn, MaxOpenConns: 5, MaxIdleConns: 5}, "test")
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = infra.CloseDB(db) })
	return db
}

// NewRecord returns a valid record with the given id and timestamp.
func NewRecord(tb testing.TB, id string, ts time.Time) *conversion.Record {
	tb.Helper()
	if id == "" {
		id = uuid.NewString()
	}
	r, err := conversion.New(id, 10, "pounds", "kilograms", 4.5359237, ts)
	require.NoError(tb, err)
	return r
}
