//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/probelabs/deepresearch/internal/domain"
	"github.com/probelabs/deepresearch/internal/platform/postgres"
	"github.com/probelabs/deepresearch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresArtifactStore_FindingsRoundTrip(t *testing.T) {
	t.Parallel()
	db := getTestDB(t)

	withTx(t, db, func(t *testing.T, tx *sql.Tx) {
		taskStore := postgres.NewPostgresTaskStore(tx, nil)
		artifactStore := postgres.NewPostgresArtifactStore(tx, nil)
		ctx := context.Background()

		task := mustCreateTask(ctx, t, taskStore, "query")

		confidence := 0.75
		first, err := domain.NewFinding(task.ID, "sub one", "response one",
			[]domain.Citation{{URL: "https://a.example", Title: "A", Snippet: "sa"}}, &confidence)
		require.NoError(t, err)
		second, err := domain.NewFinding(task.ID, "sub two", "response two", nil, nil)
		require.NoError(t, err)

		require.NoError(t, artifactStore.AddFinding(ctx, first))
		require.NoError(t, artifactStore.AddFinding(ctx, second))

		findings, err := artifactStore.GetFindings(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, findings, 2)

		// Creation order ascending
		assert.Equal(t, first.ID, findings[0].ID)
		assert.Equal(t, second.ID, findings[1].ID)
		require.NotNil(t, findings[0].Confidence)
		assert.InDelta(t, confidence, *findings[0].Confidence, 1e-9)
		require.Len(t, findings[0].Citations, 1)
		assert.Equal(t, "https://a.example", findings[0].Citations[0].URL)
		assert.Nil(t, findings[1].Confidence)
		assert.Empty(t, findings[1].Citations)
	})
}

func TestPostgresArtifactStore_OrphanWritesRejected(t *testing.T) {
	t.Parallel()
	db := getTestDB(t)

	withTx(t, db, func(t *testing.T, tx *sql.Tx) {
		artifactStore := postgres.NewPostgresArtifactStore(tx, nil)
		ctx := context.Background()

		finding, err := domain.NewFinding(uuid.New(), "sub", "resp", nil, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, artifactStore.AddFinding(ctx, finding), store.ErrTaskNotFound)

		inference, err := domain.NewInference(uuid.New(), "claim", "reasoning", 1, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, artifactStore.AddInference(ctx, inference), store.ErrTaskNotFound)

		eval, err := domain.NewEvalResult(uuid.New(), domain.EvalTypeCompleteness, nil, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, artifactStore.AddEvalResult(ctx, eval), store.ErrTaskNotFound)
	})
}

func TestPostgresArtifactStore_InferencesAndEvals(t *testing.T) {
	t.Parallel()
	db := getTestDB(t)

	withTx(t, db, func(t *testing.T, tx *sql.Tx) {
		taskStore := postgres.NewPostgresTaskStore(tx, nil)
		artifactStore := postgres.NewPostgresArtifactStore(tx, nil)
		ctx := context.Background()

		task := mustCreateTask(ctx, t, taskStore, "query")

		inference, err := domain.NewInference(task.ID, "claim", "reasoning", 0,
			[]domain.Citation{{URL: "https://b.example", Title: "B", Snippet: "sb"}})
		require.NoError(t, err)
		require.NoError(t, artifactStore.AddInference(ctx, inference))

		inferences, err := artifactStore.GetInferences(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, inferences, 1)
		assert.Equal(t, 0, inferences[0].DegreesOfSeparation)
		require.Len(t, inferences[0].SupportingCitations, 1)

		score := 0.9
		eval, err := domain.NewEvalResult(task.ID, domain.EvalTypeCitationAccuracy, &score,
			domain.Properties{"checked": float64(12)})
		require.NoError(t, err)
		require.NoError(t, artifactStore.AddEvalResult(ctx, eval))

		evals, err := artifactStore.GetEvalResults(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, evals, 1)
		assert.Equal(t, domain.EvalTypeCitationAccuracy, evals[0].EvalType)
		require.NotNil(t, evals[0].Score)
		assert.InDelta(t, score, *evals[0].Score, 1e-9)
	})
}

func TestSchemaEnforcesRangesIndependently(t *testing.T) {
	t.Parallel()
	db := getTestDB(t)

	withTx(t, db, func(t *testing.T, tx *sql.Tx) {
		taskStore := postgres.NewPostgresTaskStore(tx, nil)
		ctx := context.Background()

		task := mustCreateTask(ctx, t, taskStore, "query")

		// Bypass domain validation on purpose: the schema is the last line.
		_, err := tx.ExecContext(ctx, `
			INSERT INTO research_findings (id, task_id, sub_query, response, citations, confidence)
			VALUES ($1, $2, 'q', 'r', '[]'::jsonb, 1.0001)
		`, uuid.New(), task.ID)
		assert.True(t, postgres.IsCheckConstraintViolation(err),
			"expected check violation, got %v", err)
	})

	withTx(t, db, func(t *testing.T, tx *sql.Tx) {
		taskStore := postgres.NewPostgresTaskStore(tx, nil)
		ctx := context.Background()

		task := mustCreateTask(ctx, t, taskStore, "query")

		_, err := tx.ExecContext(ctx, `
			INSERT INTO inferences (id, task_id, claim, supporting_citations, degrees_of_separation, reasoning)
			VALUES ($1, $2, 'c', '[]'::jsonb, -1, 'r')
		`, uuid.New(), task.ID)
		assert.True(t, postgres.IsCheckConstraintViolation(err),
			"expected check violation, got %v", err)
	})
}

func TestDeletingTaskCascadesToChildren(t *testing.T) {
	t.Parallel()
	db := getTestDB(t)

	withTx(t, db, func(t *testing.T, tx *sql.Tx) {
		taskStore := postgres.NewPostgresTaskStore(tx, nil)
		artifactStore := postgres.NewPostgresArtifactStore(tx, nil)
		ctx := context.Background()

		task := mustCreateTask(ctx, t, taskStore, "query")
		finding, err := domain.NewFinding(task.ID, "sub", "resp", nil, nil)
		require.NoError(t, err)
		require.NoError(t, artifactStore.AddFinding(ctx, finding))

		_, err = tx.ExecContext(ctx, `DELETE FROM research_tasks WHERE id = $1`, task.ID)
		require.NoError(t, err)

		findings, err := artifactStore.GetFindings(ctx, task.ID)
		require.NoError(t, err)
		assert.Empty(t, findings)
	})
}
