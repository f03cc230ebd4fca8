package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/probelabs/deepresearch/internal/domain"
)

// Common request/response structures

// ResearchConfig carries the tunable parameters of a research request.
type ResearchConfig struct {
	MaxIterations int    `json:"max_iterations" validate:"omitempty,min=1,max=20"`
	Depth         string `json:"depth"          validate:"omitempty,oneof=quick standard thorough"`
}

// CreateResearchRequest defines the payload for the task creation endpoint.
type CreateResearchRequest struct {
	Query  string         `json:"query"  validate:"required,min=1,max=5000"`
	Config ResearchConfig `json:"config"`
}

// CreateResearchResponse defines the successful response for task creation.
type CreateResearchResponse struct {
	TaskID    uuid.UUID         `json:"task_id"`
	Status    domain.TaskStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// ResearchTaskResponse is the full projection of a research task.
type ResearchTaskResponse struct {
	TaskID         uuid.UUID              `json:"task_id"`
	Status         domain.TaskStatus      `json:"status"`
	Query          string                 `json:"query"`
	Result         *domain.Result         `json:"result"`
	ReasoningTrace []domain.ReasoningStep `json:"reasoning_trace"`
	Error          *string                `json:"error"`
	CreatedAt      time.Time              `json:"created_at"`
	CompletedAt    *time.Time             `json:"completed_at"`
}

// ResearchListResponse wraps a page of task projections.
type ResearchListResponse struct {
	Tasks  []ResearchTaskResponse `json:"tasks"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

// FindingsResponse wraps a task's findings.
type FindingsResponse struct {
	TaskID   uuid.UUID         `json:"task_id"`
	Findings []*domain.Finding `json:"findings"`
}

// InferencesResponse wraps a task's inferences.
type InferencesResponse struct {
	TaskID     uuid.UUID           `json:"task_id"`
	Inferences []*domain.Inference `json:"inferences"`
}

// EvalResultsResponse wraps a task's eval results.
type EvalResultsResponse struct {
	TaskID      uuid.UUID            `json:"task_id"`
	EvalResults []*domain.EvalResult `json:"eval_results"`
}

// newTaskResponse projects a domain task into its API shape. The reasoning
// trace is never null in responses, matching the empty-list default clients
// expect.
func newTaskResponse(task *domain.Task) ResearchTaskResponse {
	trace := task.ReasoningTrace
	if trace == nil {
		trace = []domain.ReasoningStep{}
	}

	return ResearchTaskResponse{
		TaskID:         task.ID,
		Status:         task.Status,
		Query:          task.Query,
		Result:         task.Result,
		ReasoningTrace: trace,
		Error:          task.Error,
		CreatedAt:      task.CreatedAt,
		CompletedAt:    task.CompletedAt,
	}
}
