package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the execution state of a research task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// MaxQueryLength is the upper bound on research query text.
const MaxQueryLength = 5000

// Common validation errors for Task
var (
	ErrEmptyTaskID       = errors.New("task ID cannot be empty")
	ErrEmptyTaskQuery    = errors.New("task query cannot be empty")
	ErrTaskQueryTooLong  = errors.New("task query exceeds maximum length")
	ErrInvalidTaskStatus = errors.New("invalid task status")
	ErrMissingResult     = errors.New("completed task must have a result")
)

// ResearchDepth controls how exhaustively the worker explores a query.
type ResearchDepth string

// Supported research depth levels
const (
	DepthQuick    ResearchDepth = "quick"
	DepthStandard ResearchDepth = "standard"
	DepthThorough ResearchDepth = "thorough"
)

// Citation is a source reference attached to findings and results.
type Citation struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// ReasoningStep is a single entry in a task's reasoning trace.
type ReasoningStep struct {
	Step        int       `json:"step"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Result is the final payload of a completed research task.
type Result struct {
	Summary   string           `json:"summary"`
	Findings  []map[string]any `json:"findings"`
	Citations []Citation       `json:"citations"`
}

// Task represents one unit of trackable research work. It carries the query,
// its execution status, and the eventual result. Findings, inferences and
// eval results are owned children stored separately.
type Task struct {
	ID             uuid.UUID       `json:"id"`
	Query          string          `json:"query"`
	Config         Properties      `json:"config"`
	Status         TaskStatus      `json:"status"`
	Result         *Result         `json:"result,omitempty"`
	ReasoningTrace []ReasoningStep `json:"reasoning_trace,omitempty"`
	Error          *string         `json:"error,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	StartedAt      *time.Time      `json:"started_at,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	Metadata       Properties      `json:"metadata"`
}

// NewTask creates a new Task in the pending state with the given query,
// configuration, and metadata. It generates a new UUID and stamps CreatedAt.
// Returns an error if validation fails.
func NewTask(query string, config, metadata Properties) (*Task, error) {
	if config == nil {
		config = Properties{}
	}
	if metadata == nil {
		metadata = Properties{}
	}

	task := &Task{
		ID:        uuid.New(),
		Query:     query,
		Config:    config,
		Status:    TaskStatusPending,
		CreatedAt: time.Now().UTC(),
		Metadata:  metadata,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.Query == "" {
		return ErrEmptyTaskQuery
	}

	if len(t.Query) > MaxQueryLength {
		return ErrTaskQueryTooLong
	}

	if !IsValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	if t.Status == TaskStatusCompleted && t.Result == nil {
		return ErrMissingResult
	}

	if err := t.Config.Validate(); err != nil {
		return err
	}

	return t.Metadata.Validate()
}

// IsTerminal reports whether the status accepts no further transitions.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// CanTransitionTo reports whether the lifecycle permits moving from s to
// target. Re-applying the current status is always permitted as a no-op.
// Completion must not skip the running state; the only shortcut is the
// pending-to-failed early abort.
func (s TaskStatus) CanTransitionTo(target TaskStatus) bool {
	if s == target {
		return true
	}
	switch s {
	case TaskStatusPending:
		return target == TaskStatusRunning || target == TaskStatusFailed
	case TaskStatusRunning:
		return target == TaskStatusCompleted || target == TaskStatusFailed
	default:
		return false
	}
}

// IsValidTaskStatus checks if the given status is a valid TaskStatus.
func IsValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusRunning, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// IsValidResearchDepth checks if the given depth is a supported level.
func IsValidResearchDepth(depth ResearchDepth) bool {
	switch depth {
	case DepthQuick, DepthStandard, DepthThorough:
		return true
	default:
		return false
	}
}
