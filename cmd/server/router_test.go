package main

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelabs/deepresearch/internal/config"
	"github.com/probelabs/deepresearch/internal/mocks"
	"github.com/probelabs/deepresearch/internal/service"
	"github.com/probelabs/deepresearch/internal/stream"
)

// newTestApplication wires an application over in-memory stores, skipping
// config loading and the database.
func newTestApplication(t *testing.T) *application {
	t.Helper()

	research := service.NewResearchService(
		mocks.NewMockTaskStore(), mocks.NewMockArtifactStore(), slog.Default())

	return &application{
		config: &config.Config{
			Server: config.ServerConfig{Port: 8080, LogLevel: "info"},
		},
		logger:     slog.Default(),
		research:   research,
		dispatcher: stream.NewDispatcher(research, 5*time.Millisecond, nil),
	}
}

func TestRouterRoutes(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	t.Run("health endpoints respond", func(t *testing.T) {
		for _, path := range []string{"/health", "/health/live", "/health/ready"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
		}
	})

	t.Run("create and fetch task through the router", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/research",
			strings.NewReader(`{"query": "router wiring check"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/research", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "router wiring check")
	})

	t.Run("unknown route answers 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("error responses carry trace IDs", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/research/not-a-uuid", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "trace_id")
	})
}
