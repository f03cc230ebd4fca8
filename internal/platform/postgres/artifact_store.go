package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/probelabs/deepresearch/internal/domain"
	"github.com/probelabs/deepresearch/internal/platform/logger"
	"github.com/probelabs/deepresearch/internal/store"
)

// PostgresArtifactStore implements the store.ArtifactStore interface
// using a PostgreSQL database as the storage backend.
type PostgresArtifactStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresArtifactStore creates a new PostgreSQL implementation of the
// ArtifactStore interface. If logger is nil, a default logger will be used.
func NewPostgresArtifactStore(db store.DBTX, logger *slog.Logger) *PostgresArtifactStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresArtifactStore{
		db:     db,
		logger: logger.With(slog.String("component", "artifact_store")),
	}
}

// Ensure PostgresArtifactStore implements store.ArtifactStore interface
var _ store.ArtifactStore = (*PostgresArtifactStore)(nil)

// WithTx returns a new ArtifactStore that runs on the provided transaction.
func (s *PostgresArtifactStore) WithTx(tx *sql.Tx) store.ArtifactStore {
	return &PostgresArtifactStore{
		db:     tx,
		logger: s.logger,
	}
}

// AddFinding implements store.ArtifactStore.AddFinding
// Returns store.ErrTaskNotFound if the owning task does not exist.
func (s *PostgresArtifactStore) AddFinding(ctx context.Context, finding *domain.Finding) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := finding.Validate(); err != nil {
		log.Warn("finding validation failed during add",
			slog.String("error", err.Error()),
			slog.String("task_id", finding.TaskID.String()))
		return err
	}

	citationsJSON, err := json.Marshal(finding.Citations)
	if err != nil {
		return fmt.Errorf("failed to marshal citations: %w", err)
	}

	query := `
		INSERT INTO research_findings (id, task_id, sub_query, response, citations, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		finding.ID,
		finding.TaskID,
		finding.SubQuery,
		finding.Response,
		citationsJSON,
		finding.Confidence,
		finding.CreatedAt,
	)

	if err != nil {
		log.Error("failed to add finding",
			slog.String("error", err.Error()),
			slog.String("finding_id", finding.ID.String()),
			slog.String("task_id", finding.TaskID.String()))
		return MapError(err)
	}

	log.Debug("finding added",
		slog.String("finding_id", finding.ID.String()),
		slog.String("task_id", finding.TaskID.String()))
	return nil
}

// AddInference implements store.ArtifactStore.AddInference
// Returns store.ErrTaskNotFound if the owning task does not exist.
func (s *PostgresArtifactStore) AddInference(ctx context.Context, inference *domain.Inference) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := inference.Validate(); err != nil {
		log.Warn("inference validation failed during add",
			slog.String("error", err.Error()),
			slog.String("task_id", inference.TaskID.String()))
		return err
	}

	citationsJSON, err := json.Marshal(inference.SupportingCitations)
	if err != nil {
		return fmt.Errorf("failed to marshal supporting citations: %w", err)
	}

	query := `
		INSERT INTO inferences (id, task_id, claim, supporting_citations, degrees_of_separation, reasoning, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		inference.ID,
		inference.TaskID,
		inference.Claim,
		citationsJSON,
		inference.DegreesOfSeparation,
		inference.Reasoning,
		inference.CreatedAt,
	)

	if err != nil {
		log.Error("failed to add inference",
			slog.String("error", err.Error()),
			slog.String("inference_id", inference.ID.String()),
			slog.String("task_id", inference.TaskID.String()))
		return MapError(err)
	}

	log.Debug("inference added",
		slog.String("inference_id", inference.ID.String()),
		slog.String("task_id", inference.TaskID.String()))
	return nil
}

// AddEvalResult implements store.ArtifactStore.AddEvalResult
// Returns store.ErrTaskNotFound if the owning task does not exist.
func (s *PostgresArtifactStore) AddEvalResult(ctx context.Context, result *domain.EvalResult) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := result.Validate(); err != nil {
		log.Warn("eval result validation failed during add",
			slog.String("error", err.Error()),
			slog.String("task_id", result.TaskID.String()))
		return err
	}

	var detailsJSON []byte
	if result.Details != nil {
		var err error
		detailsJSON, err = json.Marshal(result.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal eval details: %w", err)
		}
	}

	query := `
		INSERT INTO eval_results (id, task_id, eval_type, score, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		result.ID,
		result.TaskID,
		result.EvalType,
		result.Score,
		detailsJSON,
		result.CreatedAt,
	)

	if err != nil {
		log.Error("failed to add eval result",
			slog.String("error", err.Error()),
			slog.String("eval_id", result.ID.String()),
			slog.String("task_id", result.TaskID.String()))
		return MapError(err)
	}

	log.Debug("eval result added",
		slog.String("eval_id", result.ID.String()),
		slog.String("task_id", result.TaskID.String()),
		slog.String("eval_type", string(result.EvalType)))
	return nil
}

// GetFindings implements store.ArtifactStore.GetFindings
func (s *PostgresArtifactStore) GetFindings(ctx context.Context, taskID uuid.UUID) ([]*domain.Finding, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, task_id, sub_query, response, citations, confidence, created_at
		FROM research_findings
		WHERE task_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to query findings",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	findings := []*domain.Finding{}
	for rows.Next() {
		var (
			finding       domain.Finding
			citationsJSON []byte
			confidence    sql.NullFloat64
		)
		err := rows.Scan(
			&finding.ID,
			&finding.TaskID,
			&finding.SubQuery,
			&finding.Response,
			&citationsJSON,
			&confidence,
			&finding.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan finding row", slog.String("error", err.Error()))
			return nil, err
		}

		if err := json.Unmarshal(citationsJSON, &finding.Citations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal citations: %w", err)
		}
		if confidence.Valid {
			v := confidence.Float64
			finding.Confidence = &v
		}

		findings = append(findings, &finding)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return findings, nil
}

// GetInferences implements store.ArtifactStore.GetInferences
func (s *PostgresArtifactStore) GetInferences(ctx context.Context, taskID uuid.UUID) ([]*domain.Inference, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, task_id, claim, supporting_citations, degrees_of_separation, reasoning, created_at
		FROM inferences
		WHERE task_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to query inferences",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	inferences := []*domain.Inference{}
	for rows.Next() {
		var (
			inference     domain.Inference
			citationsJSON []byte
		)
		err := rows.Scan(
			&inference.ID,
			&inference.TaskID,
			&inference.Claim,
			&citationsJSON,
			&inference.DegreesOfSeparation,
			&inference.Reasoning,
			&inference.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan inference row", slog.String("error", err.Error()))
			return nil, err
		}

		if err := json.Unmarshal(citationsJSON, &inference.SupportingCitations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal supporting citations: %w", err)
		}

		inferences = append(inferences, &inference)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return inferences, nil
}

// GetEvalResults implements store.ArtifactStore.GetEvalResults
func (s *PostgresArtifactStore) GetEvalResults(ctx context.Context, taskID uuid.UUID) ([]*domain.EvalResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, task_id, eval_type, score, details, created_at
		FROM eval_results
		WHERE task_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to query eval results",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	results := []*domain.EvalResult{}
	for rows.Next() {
		var (
			result      domain.EvalResult
			evalType    string
			score       sql.NullFloat64
			detailsJSON []byte
		)
		err := rows.Scan(
			&result.ID,
			&result.TaskID,
			&evalType,
			&score,
			&detailsJSON,
			&result.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan eval result row", slog.String("error", err.Error()))
			return nil, err
		}

		result.EvalType = domain.EvalType(evalType)
		if score.Valid {
			v := score.Float64
			result.Score = &v
		}
		if detailsJSON != nil {
			if err := json.Unmarshal(detailsJSON, &result.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal eval details: %w", err)
			}
		}

		results = append(results, &result)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return results, nil
}
