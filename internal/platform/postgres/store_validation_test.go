package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/probelabs/deepresearch/internal/domain"
	"github.com/probelabs/deepresearch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Validation runs before any SQL executes, so these tests need no database:
// a typed-nil *sql.DB satisfies DBTX and is never touched.
func nilDB() store.DBTX { return (*sql.DB)(nil) }

func TestTaskStoreCreateValidatesBeforeWrite(t *testing.T) {
	t.Parallel()

	taskStore := NewPostgresTaskStore(nilDB(), nil)

	invalid := &domain.Task{
		ID:       uuid.New(),
		Query:    "",
		Config:   domain.Properties{},
		Status:   domain.TaskStatusPending,
		Metadata: domain.Properties{},
	}

	err := taskStore.Create(context.Background(), invalid)
	assert.ErrorIs(t, err, domain.ErrEmptyTaskQuery)
}

func TestTaskStoreUpdateStatusRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	taskStore := NewPostgresTaskStore(nilDB(), nil)

	_, err := taskStore.UpdateStatus(context.Background(), uuid.New(), "paused", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestTaskStoreSaveResultRequiresResult(t *testing.T) {
	t.Parallel()

	taskStore := NewPostgresTaskStore(nilDB(), nil)

	_, err := taskStore.SaveResult(context.Background(), uuid.New(), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestArtifactStoreValidatesBeforeWrite(t *testing.T) {
	t.Parallel()

	artifactStore := NewPostgresArtifactStore(nilDB(), nil)
	ctx := context.Background()

	badConfidence := 1.5
	err := artifactStore.AddFinding(ctx, &domain.Finding{
		ID:         uuid.New(),
		TaskID:     uuid.New(),
		SubQuery:   "q",
		Response:   "r",
		Confidence: &badConfidence,
	})
	assert.ErrorIs(t, err, domain.ErrConfidenceOutOfRange)

	err = artifactStore.AddInference(ctx, &domain.Inference{
		ID:                  uuid.New(),
		TaskID:              uuid.New(),
		Claim:               "c",
		Reasoning:           "r",
		DegreesOfSeparation: -1,
	})
	assert.ErrorIs(t, err, domain.ErrNegativeDegrees)

	err = artifactStore.AddEvalResult(ctx, &domain.EvalResult{
		ID:       uuid.New(),
		TaskID:   uuid.New(),
		EvalType: "unknown",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEvalType)
}

func TestNewStoresPanicOnNilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewPostgresTaskStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresArtifactStore(nil, nil) })
}
