package mocks

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/probelabs/deepresearch/internal/domain"
	"github.com/probelabs/deepresearch/internal/store"
)

// MockArtifactStore implements store.ArtifactStore for testing
type MockArtifactStore struct {
	// Function fields for customizable behavior
	AddFindingFn     func(ctx context.Context, finding *domain.Finding) error
	AddInferenceFn   func(ctx context.Context, inference *domain.Inference) error
	AddEvalResultFn  func(ctx context.Context, result *domain.EvalResult) error
	GetFindingsFn    func(ctx context.Context, taskID uuid.UUID) ([]*domain.Finding, error)
	GetInferencesFn  func(ctx context.Context, taskID uuid.UUID) ([]*domain.Inference, error)
	GetEvalResultsFn func(ctx context.Context, taskID uuid.UUID) ([]*domain.EvalResult, error)

	// Data for default implementation, keyed by owning task ID
	Findings    map[uuid.UUID][]*domain.Finding
	Inferences  map[uuid.UUID][]*domain.Inference
	EvalResults map[uuid.UUID][]*domain.EvalResult

	// KnownTasks, when non-nil, restricts the set of task IDs that Add*
	// accepts, mirroring the foreign key constraint.
	KnownTasks map[uuid.UUID]bool

	AddError error

	mu sync.Mutex
}

// NewMockArtifactStore creates a new mock store with initialized defaults
func NewMockArtifactStore() *MockArtifactStore {
	return &MockArtifactStore{
		Findings:    make(map[uuid.UUID][]*domain.Finding),
		Inferences:  make(map[uuid.UUID][]*domain.Inference),
		EvalResults: make(map[uuid.UUID][]*domain.EvalResult),
	}
}

func (m *MockArtifactStore) taskExists(taskID uuid.UUID) bool {
	if m.KnownTasks == nil {
		return true
	}
	return m.KnownTasks[taskID]
}

// AddFinding implements the ArtifactStore interface
func (m *MockArtifactStore) AddFinding(ctx context.Context, finding *domain.Finding) error {
	if m.AddFindingFn != nil {
		return m.AddFindingFn(ctx, finding)
	}

	if m.AddError != nil {
		return m.AddError
	}

	if err := finding.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.taskExists(finding.TaskID) {
		return store.ErrTaskNotFound
	}
	m.Findings[finding.TaskID] = append(m.Findings[finding.TaskID], finding)
	return nil
}

// AddInference implements the ArtifactStore interface
func (m *MockArtifactStore) AddInference(ctx context.Context, inference *domain.Inference) error {
	if m.AddInferenceFn != nil {
		return m.AddInferenceFn(ctx, inference)
	}

	if m.AddError != nil {
		return m.AddError
	}

	if err := inference.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.taskExists(inference.TaskID) {
		return store.ErrTaskNotFound
	}
	m.Inferences[inference.TaskID] = append(m.Inferences[inference.TaskID], inference)
	return nil
}

// AddEvalResult implements the ArtifactStore interface
func (m *MockArtifactStore) AddEvalResult(ctx context.Context, result *domain.EvalResult) error {
	if m.AddEvalResultFn != nil {
		return m.AddEvalResultFn(ctx, result)
	}

	if m.AddError != nil {
		return m.AddError
	}

	if err := result.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.taskExists(result.TaskID) {
		return store.ErrTaskNotFound
	}
	m.EvalResults[result.TaskID] = append(m.EvalResults[result.TaskID], result)
	return nil
}

// GetFindings implements the ArtifactStore interface
func (m *MockArtifactStore) GetFindings(ctx context.Context, taskID uuid.UUID) ([]*domain.Finding, error) {
	if m.GetFindingsFn != nil {
		return m.GetFindingsFn(ctx, taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	findings := make([]*domain.Finding, len(m.Findings[taskID]))
	copy(findings, m.Findings[taskID])
	return findings, nil
}

// GetInferences implements the ArtifactStore interface
func (m *MockArtifactStore) GetInferences(ctx context.Context, taskID uuid.UUID) ([]*domain.Inference, error) {
	if m.GetInferencesFn != nil {
		return m.GetInferencesFn(ctx, taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	inferences := make([]*domain.Inference, len(m.Inferences[taskID]))
	copy(inferences, m.Inferences[taskID])
	return inferences, nil
}

// GetEvalResults implements the ArtifactStore interface
func (m *MockArtifactStore) GetEvalResults(ctx context.Context, taskID uuid.UUID) ([]*domain.EvalResult, error) {
	if m.GetEvalResultsFn != nil {
		return m.GetEvalResultsFn(ctx, taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]*domain.EvalResult, len(m.EvalResults[taskID]))
	copy(results, m.EvalResults[taskID])
	return results, nil
}

// WithTx implements the ArtifactStore interface for transaction support
func (m *MockArtifactStore) WithTx(tx *sql.Tx) store.ArtifactStore {
	// For mock purposes, just return the same mock
	return m
}
