package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/probelabs/deepresearch/internal/domain"
	"github.com/probelabs/deepresearch/internal/platform/logger"
	"github.com/probelabs/deepresearch/internal/store"
)

// taskColumns is the column list every task query selects, in scan order.
const taskColumns = `id, query, config, status, result, reasoning_trace, error,
	created_at, started_at, completed_at, metadata`

// reasoningEnvelope is the persisted JSONB shape of a reasoning trace.
type reasoningEnvelope struct {
	Steps []domain.ReasoningStep `json:"steps"`
}

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx returns a new TaskStore that runs on the provided transaction.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	configJSON, err := json.Marshal(task.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal task config: %w", err)
	}
	metadataJSON, err := json.Marshal(task.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal task metadata: %w", err)
	}

	query := `
		INSERT INTO research_tasks (id, query, config, status, created_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Query,
		configJSON,
		task.Status,
		task.CreatedAt,
		metadataJSON,
	)

	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`SELECT %s FROM research_tasks WHERE id = $1`, taskColumns)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return task, nil
}

// List implements store.TaskStore.List
// It retrieves tasks ordered by creation time descending, optionally
// restricted to a single status. Returns an empty slice if nothing matches.
func (s *PostgresTaskStore) List(ctx context.Context, filter store.ListFilter) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		rows *sql.Rows
		err  error
	)
	if filter.Status != nil {
		query := fmt.Sprintf(`
			SELECT %s FROM research_tasks
			WHERE status = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`, taskColumns)
		rows, err = s.db.QueryContext(ctx, query, *filter.Status, limit, offset)
	} else {
		query := fmt.Sprintf(`
			SELECT %s FROM research_tasks
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`, taskColumns)
		rows, err = s.db.QueryContext(ctx, query, limit, offset)
	}

	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return tasks, nil
}

// UpdateStatus implements store.TaskStore.UpdateStatus
//
// The transition rule, timestamp stamping, and terminal immutability are all
// enforced in one UPDATE so concurrent writers against the same row serialize
// on the database. Column references in SET expressions read the pre-update
// row, which is what keeps a re-applied terminal status from clobbering the
// stored error.
func (s *PostgresTaskStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.TaskStatus,
	errMsg *string,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.IsValidTaskStatus(status) {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidTaskStatus)
	}

	query := fmt.Sprintf(`
		UPDATE research_tasks
		SET status = $2,
			started_at = CASE
				WHEN $2 = 'running' AND started_at IS NULL THEN $3
				ELSE started_at
			END,
			completed_at = CASE
				WHEN $2 IN ('completed', 'failed') AND completed_at IS NULL THEN $3
				ELSE completed_at
			END,
			error = CASE
				WHEN status <> $2 AND $2 IN ('completed', 'failed') AND $4::text IS NOT NULL THEN $4
				ELSE error
			END
		WHERE id = $1
		  AND (status = $2
			OR (status = 'pending' AND $2 IN ('running', 'failed'))
			OR (status = 'running' AND $2 IN ('completed', 'failed')))
		RETURNING %s
	`, taskColumns)

	now := time.Now().UTC()

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, status, now, errMsg))
	if err == nil {
		log.Info("task status updated",
			slog.String("task_id", id.String()),
			slog.String("status", string(status)))
		return task, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to update task status",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()),
			slog.String("status", string(status)))
		return nil, MapError(err)
	}

	// Zero rows matched: the task is missing or the transition is illegal.
	return nil, s.classifyRejectedWrite(ctx, id, status, log)
}

// SaveResult implements store.TaskStore.SaveResult
// It attaches the result and optional reasoning trace, forces the status to
// completed, and stamps CompletedAt. Re-saving an already completed task is a
// no-op that returns the stored row untouched.
func (s *PostgresTaskStore) SaveResult(
	ctx context.Context,
	id uuid.UUID,
	result *domain.Result,
	trace []domain.ReasoningStep,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if result == nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrMissingResult)
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var traceJSON []byte
	if trace != nil {
		traceJSON, err = json.Marshal(reasoningEnvelope{Steps: trace})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal reasoning trace: %w", err)
		}
	}

	query := fmt.Sprintf(`
		UPDATE research_tasks
		SET result = CASE WHEN status = 'completed' THEN result ELSE $2 END,
			reasoning_trace = CASE
				WHEN status = 'completed' THEN reasoning_trace
				WHEN $3::jsonb IS NOT NULL THEN $3
				ELSE reasoning_trace
			END,
			status = 'completed',
			completed_at = COALESCE(completed_at, $4)
		WHERE id = $1
		  AND status IN ('running', 'completed')
		RETURNING %s
	`, taskColumns)

	now := time.Now().UTC()

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, resultJSON, traceJSON, now))
	if err == nil {
		log.Info("task result saved",
			slog.String("task_id", id.String()))
		return task, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to save task result",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return nil, s.classifyRejectedWrite(ctx, id, domain.TaskStatusCompleted, log)
}

// classifyRejectedWrite distinguishes "no such task" from "illegal
// transition" after an UPDATE matched zero rows.
func (s *PostgresTaskStore) classifyRejectedWrite(
	ctx context.Context,
	id uuid.UUID,
	target domain.TaskStatus,
	log *slog.Logger,
) error {
	var current domain.TaskStatus
	err := s.db.QueryRowContext(ctx, `SELECT status FROM research_tasks WHERE id = $1`, id).
		Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("task not found for status update", slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}
	if err != nil {
		log.Error("failed to inspect task status",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	log.Warn("rejected status transition",
		slog.String("task_id", id.String()),
		slog.String("from", string(current)),
		slog.String("to", string(target)))
	return fmt.Errorf("%w: %s -> %s", store.ErrInvalidTransition, current, target)
}

// HealthCheck implements store.TaskStore.HealthCheck
// It never returns an error; failures show up in the report because this
// feeds liveness and readiness surfaces that must always respond.
func (s *PostgresTaskStore) HealthCheck(ctx context.Context) store.HealthReport {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one)
	if err != nil {
		return store.HealthReport{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		}
	}

	report := store.HealthReport{
		Status:   "healthy",
		Database: "connected",
	}
	if db, ok := s.db.(*sql.DB); ok {
		report.PoolSize = db.Stats().MaxOpenConnections
	}
	return report
}

// rowScanner matches both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask materializes one task row, decoding the JSONB columns.
func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task         domain.Task
		status       string
		configJSON   []byte
		metadataJSON []byte
		resultJSON   []byte
		traceJSON    []byte
		errMsg       sql.NullString
		startedAt    sql.NullTime
		completedAt  sql.NullTime
	)

	err := row.Scan(
		&task.ID,
		&task.Query,
		&configJSON,
		&status,
		&resultJSON,
		&traceJSON,
		&errMsg,
		&task.CreatedAt,
		&startedAt,
		&completedAt,
		&metadataJSON,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)

	if err := json.Unmarshal(configJSON, &task.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task config: %w", err)
	}
	if err := json.Unmarshal(metadataJSON, &task.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task metadata: %w", err)
	}

	if resultJSON != nil {
		var result domain.Result
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task result: %w", err)
		}
		task.Result = &result
	}

	if traceJSON != nil {
		var envelope reasoningEnvelope
		if err := json.Unmarshal(traceJSON, &envelope); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reasoning trace: %w", err)
		}
		task.ReasoningTrace = envelope.Steps
	}

	if errMsg.Valid {
		task.Error = &errMsg.String
	}
	if startedAt.Valid {
		t := startedAt.Time
		task.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}

	return &task, nil
}
