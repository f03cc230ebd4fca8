package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/probelabs/deepresearch/internal/domain"
)

// ListFilter bounds and filters a task listing. Tasks are always ordered by
// creation time descending.
type ListFilter struct {
	Limit  int
	Offset int
	Status *domain.TaskStatus
}

// TaskStore defines the interface for research task persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List retrieves tasks ordered by creation time descending,
	// bounded and filtered by the given ListFilter.
	// Returns an empty slice if no tasks match.
	List(ctx context.Context, filter ListFilter) ([]*domain.Task, error)

	// UpdateStatus applies a lifecycle transition. The first transition into
	// running stamps StartedAt; the first transition into a terminal state
	// stamps CompletedAt and records errMsg if provided. Re-applying the
	// current status is a no-op that returns the stored task unchanged.
	// Returns ErrTaskNotFound if the task does not exist and
	// ErrInvalidTransition if the task is already in a different terminal
	// state.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus, errMsg *string) (*domain.Task, error)

	// SaveResult attaches the final result (and reasoning trace, if any),
	// forces the status to completed, and stamps CompletedAt. This is the
	// sole path by which a task becomes completed. Calling it again on an
	// already completed task is a no-op returning the stored task.
	// Returns ErrTaskNotFound if the task does not exist and
	// ErrInvalidTransition if the task is pending or failed.
	SaveResult(ctx context.Context, id uuid.UUID, result *domain.Result, trace []domain.ReasoningStep) (*domain.Task, error)

	// HealthCheck executes a trivial round-trip against the backing store.
	// It never returns an error; failures are reported in the HealthReport.
	HealthCheck(ctx context.Context) HealthReport

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}

// ArtifactStore defines the interface for the append-only child artifacts of
// a task: findings, inferences, and eval results.
type ArtifactStore interface {
	// AddFinding appends a finding to its owning task.
	// Returns ErrTaskNotFound if the owning task does not exist.
	AddFinding(ctx context.Context, finding *domain.Finding) error

	// AddInference appends an inference to its owning task.
	// Returns ErrTaskNotFound if the owning task does not exist.
	AddInference(ctx context.Context, inference *domain.Inference) error

	// AddEvalResult appends an eval result to its owning task.
	// Returns ErrTaskNotFound if the owning task does not exist.
	AddEvalResult(ctx context.Context, result *domain.EvalResult) error

	// GetFindings retrieves a task's findings ordered by creation time
	// ascending. Returns an empty slice if the task has none.
	GetFindings(ctx context.Context, taskID uuid.UUID) ([]*domain.Finding, error)

	// GetInferences retrieves a task's inferences ordered by creation time
	// ascending. Returns an empty slice if the task has none.
	GetInferences(ctx context.Context, taskID uuid.UUID) ([]*domain.Inference, error)

	// GetEvalResults retrieves a task's eval results ordered by creation
	// time ascending. Returns an empty slice if the task has none.
	GetEvalResults(ctx context.Context, taskID uuid.UUID) ([]*domain.EvalResult, error)

	// WithTx returns a new ArtifactStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) ArtifactStore
}
