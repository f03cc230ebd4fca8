package api

import (
	"context"
	"net/http"

	"github.com/probelabs/deepresearch/internal/api/shared"
	"github.com/probelabs/deepresearch/internal/store"
)

// HealthChecker is the probe surface the health endpoints need.
type HealthChecker interface {
	HealthCheck(ctx context.Context) store.HealthReport
}

// HealthHandler serves the health and orchestration probe endpoints.
type HealthHandler struct {
	checker HealthChecker
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status   string             `json:"status"`
	API      string             `json:"api"`
	Database store.HealthReport `json:"database"`
}

// readinessResponse is the body of GET /health/ready.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /health requests. The endpoint itself always answers
// 200; a failing dependency is reported as degraded in the body.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.checker.HealthCheck(r.Context())

	status := "healthy"
	if !report.Healthy() {
		status = "degraded"
	}

	shared.RespondWithJSON(w, r, http.StatusOK, healthResponse{
		Status:   status,
		API:      "ok",
		Database: report,
	})
}

// Live handles GET /health/live requests, a trivial liveness probe.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// Ready handles GET /health/ready requests. Not-ready answers 503 so
// orchestrators stop routing traffic here.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	report := h.checker.HealthCheck(r.Context())

	status := "ready"
	code := http.StatusOK
	if !report.Healthy() {
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	shared.RespondWithJSON(w, r, code, readinessResponse{
		Status: status,
		Checks: map[string]string{"database": report.Status},
	})
}
