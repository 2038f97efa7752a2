package infra

import (
	"path/filepath"
	"testing"

	"github.com/amirasaad/convlog/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatabaseURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		url        string
		wantDriver string
		wantDSN    string
		wantErr    bool
	}{
		{url: "postgres://u:p@localhost:5432/db", wantDriver: DriverPostgres, wantDSN: "postgres://u:p@localhost:5432/db"},
		{url: "postgresql://localhost/db?sslmode=disable", wantDriver: DriverPostgres, wantDSN: "postgresql://localhost/db?sslmode=disable"},
		{url: "sqlite://conversions.db", wantDriver: DriverSQLite, wantDSN: "conversions.db?_busy_timeout=5000"},
		{url: "sqlite:///var/lib/convlog/data.db", wantDriver: DriverSQLite, wantDSN: "/var/lib/convlog/data.db?_busy_timeout=5000"},
		{url: "file:test.db?cache=shared", wantDriver: DriverSQLite, wantDSN: "file:test.db?cache=shared&_busy_timeout=5000"},
		{url: "history.sqlite3", wantDriver: DriverSQLite, wantDSN: "history.sqlite3?_busy_timeout=5000"},
		{url: "sqlite://x.db?_busy_timeout=100", wantDriver: DriverSQLite, wantDSN: "x.db?_busy_timeout=100"},
		{url: "sqlite://", wantErr: true},
		{url: "mysql://localhost/db", wantErr: true},
		{url: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.url, func(t *testing.T) {
			t.Parallel()
			driver, dsn, err := ParseDatabaseURL(tc.url)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedDatabaseURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantDriver, driver)
			assert.Equal(t, tc.wantDSN, dsn)
		})
	}
}

func TestNewDBConnection_SQLite(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "conn.db")
	db, err := NewDBConnection(&config.DB{Url: "sqlite://" + path}, "development")
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB(db) })

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, sqlDB.Ping())
}

func TestNewDBConnection_Errors(t *testing.T) {
	t.Parallel()
	_, err := NewDBConnection(nil, "test")
	require.Error(t, err)

	_, err = NewDBConnection(&config.DB{Url: "mongodb://localhost"}, "test")
	require.ErrorIs(t, err, ErrUnsupportedDatabaseURL)
}

func TestCloseDB_Nil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, CloseDB(nil))
}
