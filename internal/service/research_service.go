package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/probelabs/deepresearch/internal/domain"
	"github.com/probelabs/deepresearch/internal/platform/logger"
	"github.com/probelabs/deepresearch/internal/store"
)

// ResearchService is the application-facing surface over the task and
// artifact stores. The read side feeds the HTTP handlers and the stream
// dispatcher; the lifecycle side is what an external research worker drives.
// It deliberately does no caching: the dispatcher's change detection depends
// on every read hitting the store.
type ResearchService interface {
	// CreateTask registers a new research task in the pending state.
	CreateTask(ctx context.Context, query string, config, metadata domain.Properties) (*domain.Task, error)

	// GetTask retrieves a task by ID.
	// Returns store.ErrTaskNotFound if it does not exist.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListTasks retrieves tasks ordered by creation time descending.
	ListTasks(ctx context.Context, filter store.ListFilter) ([]*domain.Task, error)

	// GetFindings, GetInferences and GetEvalResults list a task's child
	// artifacts in creation order.
	GetFindings(ctx context.Context, taskID uuid.UUID) ([]*domain.Finding, error)
	GetInferences(ctx context.Context, taskID uuid.UUID) ([]*domain.Inference, error)
	GetEvalResults(ctx context.Context, taskID uuid.UUID) ([]*domain.EvalResult, error)

	// HealthCheck reports on the backing store. It never returns an error.
	HealthCheck(ctx context.Context) store.HealthReport

	// Worker lifecycle operations.

	// StartTask moves a pending task into the running state.
	StartTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// AppendFinding records evidence gathered for one sub-query.
	AppendFinding(ctx context.Context, taskID uuid.UUID, subQuery, response string, citations []domain.Citation, confidence *float64) (*domain.Finding, error)

	// AppendInference records a derived claim.
	AppendInference(ctx context.Context, taskID uuid.UUID, claim, reasoning string, degrees int, citations []domain.Citation) (*domain.Inference, error)

	// AppendEvalResult records a post-hoc quality score.
	AppendEvalResult(ctx context.Context, taskID uuid.UUID, evalType domain.EvalType, score *float64, details domain.Properties) (*domain.EvalResult, error)

	// CompleteTask attaches the final result and moves the task to
	// completed. This is the only way a task completes.
	CompleteTask(ctx context.Context, id uuid.UUID, result *domain.Result, trace []domain.ReasoningStep) (*domain.Task, error)

	// FailTask moves the task to failed with the given error message.
	// Failing a pending task (abort before start) is permitted.
	FailTask(ctx context.Context, id uuid.UUID, errMsg string) (*domain.Task, error)
}

type researchService struct {
	tasks     store.TaskStore
	artifacts store.ArtifactStore
	logger    *slog.Logger
}

// NewResearchService wires a ResearchService over the given stores.
// If log is nil, the default logger is used.
func NewResearchService(tasks store.TaskStore, artifacts store.ArtifactStore, log *slog.Logger) ResearchService {
	if tasks == nil {
		panic("tasks store cannot be nil")
	}
	if artifacts == nil {
		panic("artifacts store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &researchService{
		tasks:     tasks,
		artifacts: artifacts,
		logger:    log.With(slog.String("component", "research_service")),
	}
}

func (s *researchService) CreateTask(
	ctx context.Context,
	query string,
	config, metadata domain.Properties,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(query, config, metadata)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	log.Info("research task created",
		slog.String("task_id", task.ID.String()))
	return task, nil
}

func (s *researchService) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *researchService) ListTasks(ctx context.Context, filter store.ListFilter) ([]*domain.Task, error) {
	return s.tasks.List(ctx, filter)
}

func (s *researchService) GetFindings(ctx context.Context, taskID uuid.UUID) ([]*domain.Finding, error) {
	return s.artifacts.GetFindings(ctx, taskID)
}

func (s *researchService) GetInferences(ctx context.Context, taskID uuid.UUID) ([]*domain.Inference, error) {
	return s.artifacts.GetInferences(ctx, taskID)
}

func (s *researchService) GetEvalResults(ctx context.Context, taskID uuid.UUID) ([]*domain.EvalResult, error) {
	return s.artifacts.GetEvalResults(ctx, taskID)
}

func (s *researchService) HealthCheck(ctx context.Context) store.HealthReport {
	return s.tasks.HealthCheck(ctx)
}

func (s *researchService) StartTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.UpdateStatus(ctx, id, domain.TaskStatusRunning, nil)
	if err != nil {
		return nil, err
	}

	log.Info("research task started",
		slog.String("task_id", id.String()))
	return task, nil
}

func (s *researchService) AppendFinding(
	ctx context.Context,
	taskID uuid.UUID,
	subQuery, response string,
	citations []domain.Citation,
	confidence *float64,
) (*domain.Finding, error) {
	finding, err := domain.NewFinding(taskID, subQuery, response, citations, confidence)
	if err != nil {
		return nil, err
	}

	if err := s.artifacts.AddFinding(ctx, finding); err != nil {
		return nil, err
	}

	return finding, nil
}

func (s *researchService) AppendInference(
	ctx context.Context,
	taskID uuid.UUID,
	claim, reasoning string,
	degrees int,
	citations []domain.Citation,
) (*domain.Inference, error) {
	inference, err := domain.NewInference(taskID, claim, reasoning, degrees, citations)
	if err != nil {
		return nil, err
	}

	if err := s.artifacts.AddInference(ctx, inference); err != nil {
		return nil, err
	}

	return inference, nil
}

func (s *researchService) AppendEvalResult(
	ctx context.Context,
	taskID uuid.UUID,
	evalType domain.EvalType,
	score *float64,
	details domain.Properties,
) (*domain.EvalResult, error) {
	result, err := domain.NewEvalResult(taskID, evalType, score, details)
	if err != nil {
		return nil, err
	}

	if err := s.artifacts.AddEvalResult(ctx, result); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *researchService) CompleteTask(
	ctx context.Context,
	id uuid.UUID,
	result *domain.Result,
	trace []domain.ReasoningStep,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.SaveResult(ctx, id, result, trace)
	if err != nil {
		return nil, err
	}

	log.Info("research task completed",
		slog.String("task_id", id.String()))
	return task, nil
}

func (s *researchService) FailTask(ctx context.Context, id uuid.UUID, errMsg string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var msg *string
	if errMsg != "" {
		msg = &errMsg
	}

	task, err := s.tasks.UpdateStatus(ctx, id, domain.TaskStatusFailed, msg)
	if err != nil {
		return nil, err
	}

	log.Warn("research task failed",
		slog.String("task_id", id.String()),
		slog.String("error", errMsg))
	return task, nil
}
