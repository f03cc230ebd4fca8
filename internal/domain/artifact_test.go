package domain

import (
	"testing"

	"github.com/google/uuid"
)

func floatPtr(v float64) *float64 { return &v }

func TestNewFinding(t *testing.T) {
	t.Parallel()
	taskID := uuid.New()
	citations := []Citation{{URL: "https://example.com", Title: "Example", Snippet: "snippet"}}

	finding, err := NewFinding(taskID, "sub query", "response text", citations, floatPtr(0.8))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if finding.ID == uuid.Nil {
		t.Error("Expected non-nil UUID")
	}
	if finding.TaskID != taskID {
		t.Errorf("Expected task ID %s, got %s", taskID, finding.TaskID)
	}
	if len(finding.Citations) != 1 {
		t.Errorf("Expected 1 citation, got %d", len(finding.Citations))
	}
	if finding.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt")
	}

	// Nil citations default to an empty slice so JSON serializes as []
	finding, err = NewFinding(taskID, "sub query", "response text", nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if finding.Citations == nil {
		t.Error("Expected empty citations slice, got nil")
	}
}

func TestFindingConfidenceBounds(t *testing.T) {
	t.Parallel()
	taskID := uuid.New()

	tests := []struct {
		name       string
		confidence *float64
		wantErr    error
	}{
		{"absent", nil, nil},
		{"lower bound", floatPtr(0.0), nil},
		{"upper bound", floatPtr(1.0), nil},
		{"just below lower", floatPtr(-0.0001), ErrConfidenceOutOfRange},
		{"just above upper", floatPtr(1.0001), ErrConfidenceOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFinding(taskID, "q", "r", nil, tt.confidence)
			if err != tt.wantErr {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewInference(t *testing.T) {
	t.Parallel()
	taskID := uuid.New()

	inference, err := NewInference(taskID, "claim", "reasoning", 2, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if inference.DegreesOfSeparation != 2 {
		t.Errorf("Expected 2 degrees, got %d", inference.DegreesOfSeparation)
	}
	if inference.SupportingCitations == nil {
		t.Error("Expected empty citations slice, got nil")
	}

	// Zero degrees means the claim restates direct evidence; allowed.
	if _, err := NewInference(taskID, "claim", "reasoning", 0, nil); err != nil {
		t.Errorf("Expected zero degrees to be valid, got %v", err)
	}

	if _, err := NewInference(taskID, "claim", "reasoning", -1, nil); err != ErrNegativeDegrees {
		t.Errorf("Expected error %v, got %v", ErrNegativeDegrees, err)
	}

	if _, err := NewInference(taskID, "", "reasoning", 0, nil); err != ErrEmptyInferenceClaim {
		t.Errorf("Expected error %v, got %v", ErrEmptyInferenceClaim, err)
	}

	if _, err := NewInference(taskID, "claim", "", 0, nil); err != ErrEmptyInferenceReasons {
		t.Errorf("Expected error %v, got %v", ErrEmptyInferenceReasons, err)
	}

	if _, err := NewInference(uuid.Nil, "claim", "reasoning", 0, nil); err != ErrEmptyArtifactTaskID {
		t.Errorf("Expected error %v, got %v", ErrEmptyArtifactTaskID, err)
	}
}

func TestNewEvalResult(t *testing.T) {
	t.Parallel()
	taskID := uuid.New()

	result, err := NewEvalResult(taskID, EvalTypeReasoningQuality, floatPtr(0.9), Properties{"notes": "solid"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.EvalType != EvalTypeReasoningQuality {
		t.Errorf("Expected eval type %s, got %s", EvalTypeReasoningQuality, result.EvalType)
	}

	if _, err := NewEvalResult(taskID, "vibes", nil, nil); err != ErrInvalidEvalType {
		t.Errorf("Expected error %v, got %v", ErrInvalidEvalType, err)
	}

	tests := []struct {
		name    string
		score   *float64
		wantErr error
	}{
		{"absent", nil, nil},
		{"lower bound", floatPtr(0.0), nil},
		{"upper bound", floatPtr(1.0), nil},
		{"just below lower", floatPtr(-0.0001), ErrScoreOutOfRange},
		{"just above upper", floatPtr(1.0001), ErrScoreOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEvalResult(taskID, EvalTypeCompleteness, tt.score, nil)
			if err != tt.wantErr {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestIsValidEvalType(t *testing.T) {
	t.Parallel()
	valid := []EvalType{
		EvalTypeReasoningQuality, EvalTypeHallucination, EvalTypeCitationAccuracy,
		EvalTypeInferenceValidity, EvalTypeSourceRelevance, EvalTypeCompleteness,
	}
	for _, et := range valid {
		if !IsValidEvalType(et) {
			t.Errorf("Expected %s to be valid", et)
		}
	}
	if IsValidEvalType("sentiment") {
		t.Error("Expected unknown eval type to be invalid")
	}
}
