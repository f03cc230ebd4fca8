package mocks

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/probelabs/deepresearch/internal/domain"
	"github.com/probelabs/deepresearch/internal/store"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn       func(ctx context.Context, task *domain.Task) error
	GetByIDFn      func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListFn         func(ctx context.Context, filter store.ListFilter) ([]*domain.Task, error)
	UpdateStatusFn func(ctx context.Context, id uuid.UUID, status domain.TaskStatus, errMsg *string) (*domain.Task, error)
	SaveResultFn   func(ctx context.Context, id uuid.UUID, result *domain.Result, trace []domain.ReasoningStep) (*domain.Task, error)
	HealthCheckFn  func(ctx context.Context) store.HealthReport

	// Data for default implementation
	Tasks       map[uuid.UUID]*domain.Task
	CreateError error
	GetError    error

	mu sync.Mutex
}

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks[task.ID] = task
	return nil
}

// GetByID implements the TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	if m.GetError != nil {
		return nil, m.GetError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	task, exists := m.Tasks[id]
	if !exists {
		return nil, store.ErrTaskNotFound
	}

	copied := *task
	return &copied, nil
}

// List implements the TaskStore interface
func (m *MockTaskStore) List(ctx context.Context, filter store.ListFilter) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]*domain.Task, 0, len(m.Tasks))
	for _, task := range m.Tasks {
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		copied := *task
		tasks = append(tasks, &copied)
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(tasks) {
			return []*domain.Task{}, nil
		}
		tasks = tasks[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(tasks) {
		tasks = tasks[:filter.Limit]
	}

	return tasks, nil
}

// UpdateStatus implements the TaskStore interface
func (m *MockTaskStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.TaskStatus,
	errMsg *string,
) (*domain.Task, error) {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, status, errMsg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, exists := m.Tasks[id]
	if !exists {
		return nil, store.ErrTaskNotFound
	}

	if task.Status == status {
		copied := *task
		return &copied, nil
	}

	if !task.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", store.ErrInvalidTransition, task.Status, status)
	}

	now := time.Now().UTC()
	task.Status = status
	switch status {
	case domain.TaskStatusRunning:
		if task.StartedAt == nil {
			task.StartedAt = &now
		}
	case domain.TaskStatusCompleted, domain.TaskStatusFailed:
		if task.CompletedAt == nil {
			task.CompletedAt = &now
		}
		if errMsg != nil {
			task.Error = errMsg
		}
	}

	copied := *task
	return &copied, nil
}

// SaveResult implements the TaskStore interface
func (m *MockTaskStore) SaveResult(
	ctx context.Context,
	id uuid.UUID,
	result *domain.Result,
	trace []domain.ReasoningStep,
) (*domain.Task, error) {
	if m.SaveResultFn != nil {
		return m.SaveResultFn(ctx, id, result, trace)
	}

	if result == nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrMissingResult)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, exists := m.Tasks[id]
	if !exists {
		return nil, store.ErrTaskNotFound
	}

	if task.Status == domain.TaskStatusCompleted {
		copied := *task
		return &copied, nil
	}

	if task.Status != domain.TaskStatusRunning {
		return nil, fmt.Errorf(
			"%w: %s -> %s", store.ErrInvalidTransition, task.Status, domain.TaskStatusCompleted)
	}

	now := time.Now().UTC()
	task.Status = domain.TaskStatusCompleted
	task.Result = result
	if trace != nil {
		task.ReasoningTrace = trace
	}
	if task.CompletedAt == nil {
		task.CompletedAt = &now
	}

	copied := *task
	return &copied, nil
}

// HealthCheck implements the TaskStore interface
func (m *MockTaskStore) HealthCheck(ctx context.Context) store.HealthReport {
	if m.HealthCheckFn != nil {
		return m.HealthCheckFn(ctx)
	}

	return store.HealthReport{Status: "healthy", Database: "connected"}
}

// WithTx implements the TaskStore interface for transaction support
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	// For mock purposes, just return the same mock
	return m
}
