package api

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/probelabs/deepresearch/internal/api/shared"
	"github.com/probelabs/deepresearch/internal/domain"
	"github.com/probelabs/deepresearch/internal/service"
	"github.com/probelabs/deepresearch/internal/store"
)

// defaultListLimit bounds unpaginated list requests.
const defaultListLimit = 20

// maxListLimit caps the page size a client may request.
const maxListLimit = 100

// ResearchHandler handles research task HTTP requests
type ResearchHandler struct {
	research  service.ResearchService
	validator *validator.Validate
}

// NewResearchHandler creates a new ResearchHandler
func NewResearchHandler(research service.ResearchService) *ResearchHandler {
	return &ResearchHandler{
		research:  research,
		validator: validator.New(),
	}
}

// CreateTask handles POST /api/research requests
func (h *ResearchHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateResearchRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	config := domain.Properties{}
	if req.Config.MaxIterations != 0 {
		config["max_iterations"] = req.Config.MaxIterations
	}
	if req.Config.Depth != "" {
		config["depth"] = req.Config.Depth
	}

	task, err := h.research.CreateTask(r.Context(), req.Query, config, nil)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, CreateResearchResponse{
		TaskID:    task.ID,
		Status:    task.Status,
		CreatedAt: task.CreatedAt,
	})
}

// GetTask handles GET /api/research/{id} requests
func (h *ResearchHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	task, err := h.research.GetTask(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newTaskResponse(task))
}

// ListTasks handles GET /api/research requests with limit, offset and status
// query parameters.
func (h *ResearchHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := h.research.ListTasks(r.Context(), filter)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]ResearchTaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, newTaskResponse(task))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ResearchListResponse{
		Tasks:  responses,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// GetFindings handles GET /api/research/{id}/findings requests
func (h *ResearchHandler) GetFindings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireTask(w, r)
	if !ok {
		return
	}

	findings, err := h.research.GetFindings(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, FindingsResponse{TaskID: id, Findings: findings})
}

// GetInferences handles GET /api/research/{id}/inferences requests
func (h *ResearchHandler) GetInferences(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireTask(w, r)
	if !ok {
		return
	}

	inferences, err := h.research.GetInferences(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, InferencesResponse{TaskID: id, Inferences: inferences})
}

// GetEvalResults handles GET /api/research/{id}/evals requests
func (h *ResearchHandler) GetEvalResults(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireTask(w, r)
	if !ok {
		return
	}

	results, err := h.research.GetEvalResults(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, EvalResultsResponse{TaskID: id, EvalResults: results})
}

// requireTask parses the path ID and verifies the owning task exists, writing
// the error response itself when either step fails. Child listings 404 for
// unknown tasks instead of returning empty collections.
func (h *ResearchHandler) requireTask(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return uuid.Nil, false
	}

	if _, err := h.research.GetTask(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return uuid.Nil, false
	}

	return id, true
}

func parseListFilter(r *http.Request) (store.ListFilter, error) {
	filter := store.ListFilter{Limit: defaultListLimit}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxListLimit {
			return filter, domain.NewValidationError("limit", "must be between 1 and 100", domain.ErrValidation)
		}
		filter.Limit = limit
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, domain.NewValidationError("offset", "must be non-negative", domain.ErrValidation)
		}
		filter.Offset = offset
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.TaskStatus(raw)
		if !domain.IsValidTaskStatus(status) {
			return filter, domain.NewValidationError("status", "is not a known task status", domain.ErrValidation)
		}
		filter.Status = &status
	}

	return filter, nil
}
