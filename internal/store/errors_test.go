package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFoundError(ErrNotFound))
	assert.True(t, IsNotFoundError(ErrTaskNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", ErrTaskNotFound)))

	assert.False(t, IsNotFoundError(ErrInvalidTransition))
	assert.False(t, IsNotFoundError(errors.New("something else")))
	assert.False(t, IsNotFoundError(nil))
}

func TestErrTaskNotFoundWrapsErrNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.Is(ErrTaskNotFound, ErrNotFound))
}

func TestHealthReportHealthy(t *testing.T) {
	t.Parallel()

	healthy := HealthReport{Status: "healthy", Database: "connected"}
	assert.True(t, healthy.Healthy())

	unhealthy := HealthReport{Status: "unhealthy", Database: "disconnected", Error: "dial refused"}
	assert.False(t, unhealthy.Healthy())
}
