package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	infracache "github.com/amirasaad/convlog/infra/cache"
	infrarepo "github.com/amirasaad/convlog/infra/repository"
	"github.com/amirasaad/convlog/pkg/app"
	"github.com/amirasaad/convlog/pkg/config"
	pkgtestutils "github.com/amirasaad/convlog/pkg/testutils"
	"github.com/amirasaad/convlog/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// E2ETestSuite runs requests against the full HTTP stack. It stores records
// in a throwaway SQLite file, or in a Postgres container when integration
// tests are enabled.
type E2ETestSuite struct {
	suite.Suite
	DB  *gorm.DB
	App *app.App
	Cfg *config.App
	api *fiber.App
}

// TestConfig returns the configuration the suite runs with.
func TestConfig() *config.App {
	return &config.App{
		Env:       "test",
		Server:    &config.Server{ShutdownTimeout: time.Second},
		Log:       &config.Log{Format: "text"},
		DB:        &config.DB{},
		RateLimit: &config.RateLimit{MaxRequests: 10000, Window: time.Minute},
		History:   &config.History{CacheBackend: config.CacheBackendMemory, CacheTTL: time.Minute},
	}
}

// SetupSuite builds the application once for every test in the suite.
func (s *E2ETestSuite) SetupSuite() {
	if os.Getenv(pkgtestutils.IntegrationEnv) != "" {
		s.DB = pkgtestutils.NewPostgresDB(s.T())
	} else {
		s.DB = pkgtestutils.NewSQLiteDB(s.T())
	}
	s.Cfg = TestConfig()
	s.App = NewApp(s.DB, s.Cfg)
	s.api = webapi.SetupApp(s.App)
}

// SetupTest starts every test from an empty log.
func (s *E2ETestSuite) SetupTest() {
	s.Require().NoError(s.App.ConversionService.Clear(s.T().Context()))
}

// NewApp wires the services over db the way the server does.
func NewApp(db *gorm.DB, cfg *config.App) *app.App {
	return app.New(&app.Deps{
		Uow:          infrarepo.NewUoW(db),
		HistoryCache: infracache.NewMemoryHistoryCache(),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, cfg)
}

// MakeRequest is a helper for making HTTP requests in tests
func (s *E2ETestSuite) MakeRequest(method, path, body string) *http.Response {
	return MakeRequest(s.api, method, path, body)
}

// MakeRequest sends a request to api with a JSON body when body is non-empty.
func MakeRequest(api *fiber.App, method, path, body string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	resp, err := api.Test(req, -1)
	if err != nil {
		panic(err) // For standalone tests, panic on error
	}
	return resp
}

// DecodeJSON decodes the response body into T and closes it.
func DecodeJSON[T any](resp *http.Response) (T, error) {
	defer resp.Body.Close() //nolint: errcheck
	var out T
	err := json.NewDecoder(resp.Body).Decode(&out)
	return out, err
}
