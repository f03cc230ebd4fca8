package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Validation errors for task artifacts
var (
	ErrEmptyFindingSubQuery  = errors.New("finding sub-query cannot be empty")
	ErrEmptyFindingResponse  = errors.New("finding response cannot be empty")
	ErrConfidenceOutOfRange  = errors.New("confidence must be between 0.0 and 1.0")
	ErrEmptyInferenceClaim   = errors.New("inference claim cannot be empty")
	ErrEmptyInferenceReasons = errors.New("inference reasoning cannot be empty")
	ErrNegativeDegrees       = errors.New("degrees of separation cannot be negative")
	ErrInvalidEvalType       = errors.New("invalid eval type")
	ErrScoreOutOfRange       = errors.New("score must be between 0.0 and 1.0")
	ErrEmptyArtifactTaskID   = errors.New("artifact task ID cannot be empty")
)

// EvalType identifies a post-hoc quality evaluation run against a task.
type EvalType string

// Supported evaluation types
const (
	EvalTypeReasoningQuality  EvalType = "reasoning_quality"
	EvalTypeHallucination     EvalType = "hallucination"
	EvalTypeCitationAccuracy  EvalType = "citation_accuracy"
	EvalTypeInferenceValidity EvalType = "inference_validity"
	EvalTypeSourceRelevance   EvalType = "source_relevance"
	EvalTypeCompleteness      EvalType = "completeness"
)

// Finding is evidence gathered for one sub-query of a task. Findings are
// append-only and ordered by creation time.
type Finding struct {
	ID         uuid.UUID  `json:"id"`
	TaskID     uuid.UUID  `json:"task_id"`
	SubQuery   string     `json:"sub_query"`
	Response   string     `json:"response"`
	Citations  []Citation `json:"citations"`
	Confidence *float64   `json:"confidence,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewFinding creates a Finding owned by the given task.
// Returns an error if validation fails.
func NewFinding(taskID uuid.UUID, subQuery, response string, citations []Citation, confidence *float64) (*Finding, error) {
	if citations == nil {
		citations = []Citation{}
	}

	finding := &Finding{
		ID:         uuid.New(),
		TaskID:     taskID,
		SubQuery:   subQuery,
		Response:   response,
		Citations:  citations,
		Confidence: confidence,
		CreatedAt:  time.Now().UTC(),
	}

	if err := finding.Validate(); err != nil {
		return nil, err
	}

	return finding, nil
}

// Validate checks if the Finding has valid data.
func (f *Finding) Validate() error {
	if f.TaskID == uuid.Nil {
		return ErrEmptyArtifactTaskID
	}

	if f.SubQuery == "" {
		return ErrEmptyFindingSubQuery
	}

	if f.Response == "" {
		return ErrEmptyFindingResponse
	}

	if f.Confidence != nil && (*f.Confidence < 0.0 || *f.Confidence > 1.0) {
		return ErrConfidenceOutOfRange
	}

	return nil
}

// Inference is a derived claim owned by a task. DegreesOfSeparation counts
// the logical inference steps between the claim and direct evidence; zero
// means the claim restates the evidence.
type Inference struct {
	ID                  uuid.UUID  `json:"id"`
	TaskID              uuid.UUID  `json:"task_id"`
	Claim               string     `json:"claim"`
	SupportingCitations []Citation `json:"supporting_citations"`
	DegreesOfSeparation int        `json:"degrees_of_separation"`
	Reasoning           string     `json:"reasoning"`
	CreatedAt           time.Time  `json:"created_at"`
}

// NewInference creates an Inference owned by the given task.
// Returns an error if validation fails.
func NewInference(taskID uuid.UUID, claim, reasoning string, degrees int, citations []Citation) (*Inference, error) {
	if citations == nil {
		citations = []Citation{}
	}

	inference := &Inference{
		ID:                  uuid.New(),
		TaskID:              taskID,
		Claim:               claim,
		SupportingCitations: citations,
		DegreesOfSeparation: degrees,
		Reasoning:           reasoning,
		CreatedAt:           time.Now().UTC(),
	}

	if err := inference.Validate(); err != nil {
		return nil, err
	}

	return inference, nil
}

// Validate checks if the Inference has valid data.
func (i *Inference) Validate() error {
	if i.TaskID == uuid.Nil {
		return ErrEmptyArtifactTaskID
	}

	if i.Claim == "" {
		return ErrEmptyInferenceClaim
	}

	if i.Reasoning == "" {
		return ErrEmptyInferenceReasons
	}

	if i.DegreesOfSeparation < 0 {
		return ErrNegativeDegrees
	}

	return nil
}

// EvalResult is a post-hoc quality score for a task.
type EvalResult struct {
	ID        uuid.UUID  `json:"id"`
	TaskID    uuid.UUID  `json:"task_id"`
	EvalType  EvalType   `json:"eval_type"`
	Score     *float64   `json:"score,omitempty"`
	Details   Properties `json:"details,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewEvalResult creates an EvalResult owned by the given task.
// Returns an error if validation fails.
func NewEvalResult(taskID uuid.UUID, evalType EvalType, score *float64, details Properties) (*EvalResult, error) {
	result := &EvalResult{
		ID:        uuid.New(),
		TaskID:    taskID,
		EvalType:  evalType,
		Score:     score,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return result, nil
}

// Validate checks if the EvalResult has valid data.
func (e *EvalResult) Validate() error {
	if e.TaskID == uuid.Nil {
		return ErrEmptyArtifactTaskID
	}

	if !IsValidEvalType(e.EvalType) {
		return ErrInvalidEvalType
	}

	if e.Score != nil && (*e.Score < 0.0 || *e.Score > 1.0) {
		return ErrScoreOutOfRange
	}

	if e.Details != nil {
		return e.Details.Validate()
	}

	return nil
}

// IsValidEvalType checks if the given eval type is in the supported set.
func IsValidEvalType(evalType EvalType) bool {
	switch evalType {
	case EvalTypeReasoningQuality, EvalTypeHallucination, EvalTypeCitationAccuracy,
		EvalTypeInferenceValidity, EvalTypeSourceRelevance, EvalTypeCompleteness:
		return true
	default:
		return false
	}
}
