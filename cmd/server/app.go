package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/probelabs/deepresearch/internal/config"
	"github.com/probelabs/deepresearch/internal/domain"
	"github.com/probelabs/deepresearch/internal/platform/logger"
	"github.com/probelabs/deepresearch/internal/platform/postgres"
	"github.com/probelabs/deepresearch/internal/service"
	"github.com/probelabs/deepresearch/internal/stream"
	"github.com/probelabs/deepresearch/internal/worker"
)

// application holds the wired dependencies of the running server.
type application struct {
	config     *config.Config
	logger     *slog.Logger
	db         *sql.DB
	research   service.ResearchService
	dispatcher *stream.Dispatcher
	runner     *worker.Runner
}

// newApplication loads configuration and builds the full dependency graph:
// logger, database (with migrations applied), stores, service, dispatcher,
// and, when enabled, the background runner.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("worker_enabled", cfg.Worker.Enabled))

	db, err := setupDatabase(&cfg.Database, log)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, log); err != nil {
		closeDatabase(db, log)
		return nil, err
	}

	taskStore := postgres.NewPostgresTaskStore(db, log)
	artifactStore := postgres.NewPostgresArtifactStore(db, log)

	research := service.NewResearchService(taskStore, artifactStore, log)
	dispatcher := stream.NewDispatcher(research, cfg.Stream.PollInterval, log)

	app := &application{
		config:     cfg,
		logger:     log,
		db:         db,
		research:   research,
		dispatcher: dispatcher,
	}

	if cfg.Worker.Enabled {
		app.runner = worker.NewRunner(research, defaultExecutor(), worker.RunnerConfig{
			Concurrency:  cfg.Worker.Concurrency,
			PollInterval: cfg.Worker.PollInterval,
			ReclaimAge:   cfg.Worker.ReclaimAge,
		}, log)
	}

	return app, nil
}

// defaultExecutor is the executor used when the in-process runner is enabled
// without a linked research implementation. It fails tasks explicitly rather
// than leaving them running forever; deployments embedding a real agent
// replace this wiring.
func defaultExecutor() worker.Executor {
	return worker.ExecutorFunc(func(ctx context.Context, task *domain.Task) (*domain.Result, []domain.ReasoningStep, error) {
		return nil, nil, fmt.Errorf("no research executor configured")
	})
}

// cleanup releases resources owned by the application.
func (app *application) cleanup() {
	if app.runner != nil {
		app.runner.Stop()
	}
	if app.db != nil {
		closeDatabase(app.db, app.logger)
	}
}

func closeDatabase(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Error("failed to close database connection", slog.String("error", err.Error()))
	}
}
