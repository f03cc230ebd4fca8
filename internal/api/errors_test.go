package api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/probelabs/deepresearch/internal/api"
	"github.com/probelabs/deepresearch/internal/domain"
	"github.com/probelabs/deepresearch/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"wrapped task not found", fmt.Errorf("getting task: %w", store.ErrTaskNotFound), http.StatusNotFound},
		{"generic not found", store.ErrNotFound, http.StatusNotFound},
		{"invalid transition", store.ErrInvalidTransition, http.StatusConflict},
		{"wrapped transition", fmt.Errorf("%w: failed -> running", store.ErrInvalidTransition), http.StatusConflict},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"empty query", domain.ErrEmptyTaskQuery, http.StatusBadRequest},
		{"query too long", domain.ErrTaskQueryTooLong, http.StatusBadRequest},
		{"validation error type", domain.NewValidationError("limit", "must be positive", nil), http.StatusBadRequest},
		{"invalid id", domain.NewValidationError("id", "has invalid format", domain.ErrInvalidID), http.StatusBadRequest},
		{"storage unavailable", store.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{"unknown error", errors.New("something odd"), http.StatusInternalServerError},
		{"nil error", nil, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, api.MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("known errors map to friendly messages", func(t *testing.T) {
		assert.Equal(t, "Research task not found", api.GetSafeErrorMessage(store.ErrTaskNotFound))
		assert.Equal(t, "Task is already in a terminal state", api.GetSafeErrorMessage(store.ErrInvalidTransition))
		assert.Equal(t, "Query must not be empty", api.GetSafeErrorMessage(domain.ErrEmptyTaskQuery))
	})

	t.Run("unknown errors never leak details", func(t *testing.T) {
		err := errors.New("pq: connection to postgres://user:secret@db:5432 refused")
		msg := api.GetSafeErrorMessage(err)
		assert.Equal(t, "An unexpected error occurred", msg)
	})

	t.Run("nil error", func(t *testing.T) {
		assert.Equal(t, "An unexpected error occurred", api.GetSafeErrorMessage(nil))
	})
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := errors.New(
		"Key: 'CreateResearchRequest.Query' Error:Field validation for 'Query' failed on the 'required' tag")
	assert.Equal(t, "Invalid Query: required field", api.SanitizeValidationError(err))

	assert.Equal(t, "Validation error", api.SanitizeValidationError(errors.New("boom")))
}
