package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelabs/deepresearch/internal/api"
	"github.com/probelabs/deepresearch/internal/mocks"
	"github.com/probelabs/deepresearch/internal/store"
)

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("health reports healthy", func(t *testing.T) {
		handler := api.NewHealthHandler(mocks.NewMockTaskStore())

		rec := httptest.NewRecorder()
		handler.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "ok", body["api"])
	})

	t.Run("health reports degraded but still 200", func(t *testing.T) {
		tasks := mocks.NewMockTaskStore()
		tasks.HealthCheckFn = func(ctx context.Context) store.HealthReport {
			return store.HealthReport{Status: "unhealthy", Database: "disconnected", Error: "connection refused"}
		}
		handler := api.NewHealthHandler(tasks)

		rec := httptest.NewRecorder()
		handler.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "degraded", body["status"])
	})

	t.Run("live always answers alive", func(t *testing.T) {
		handler := api.NewHealthHandler(mocks.NewMockTaskStore())

		rec := httptest.NewRecorder()
		handler.Live(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
	})

	t.Run("ready answers 200 when database is up", func(t *testing.T) {
		handler := api.NewHealthHandler(mocks.NewMockTaskStore())

		rec := httptest.NewRecorder()
		handler.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ready"`)
	})

	t.Run("ready answers 503 when database is down", func(t *testing.T) {
		tasks := mocks.NewMockTaskStore()
		tasks.HealthCheckFn = func(ctx context.Context) store.HealthReport {
			return store.HealthReport{Status: "unhealthy", Database: "disconnected"}
		}
		handler := api.NewHealthHandler(tasks)

		rec := httptest.NewRecorder()
		handler.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"not_ready"`)
	})
}
