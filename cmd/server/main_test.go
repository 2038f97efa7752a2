package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/amirasaad/convlog/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.App {
	t.Helper()
	return &config.App{
		Env:       "test",
		Server:    &config.Server{Scheme: "http", Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second},
		Log:       &config.Log{Format: "text", TimeFormat: time.DateTime},
		DB:        &config.DB{Url: "sqlite://" + filepath.Join(t.TempDir(), "server.db")},
		Redis:     &config.Redis{},
		RateLimit: &config.RateLimit{MaxRequests: 100, Window: time.Minute},
		History:   &config.History{CacheBackend: config.CacheBackendMemory, CacheTTL: time.Minute},
	}
}

func TestNewServer_Routes(t *testing.T) {
	fiberApp, application, err := newServer(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	for _, path := range []string{"/", "/health", "/history"} {
		resp, err := fiberApp.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestServe_ListenFailureReleasesDependencies(t *testing.T) {
	cfg := testConfig(t)
	fiberApp, application, err := newServer(cfg)
	require.NoError(t, err)

	cfg.Server.Host = "256.0.0.1"
	err = serve(context.Background(), fiberApp, application, cfg)
	require.Error(t, err)

	// The database handle is closed once serve returns.
	_, err = application.ConversionService.Count(context.Background())
	assert.Error(t, err)
}
