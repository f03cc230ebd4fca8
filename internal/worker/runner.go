package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/probelabs/deepresearch/internal/domain"
	"github.com/probelabs/deepresearch/internal/service"
	"github.com/probelabs/deepresearch/internal/store"
)

// RunnerConfig holds configuration for the research runner
type RunnerConfig struct {
	// Concurrency determines how many tasks execute at once
	Concurrency int

	// QueueSize determines the buffer size for the in-memory dispatch queue
	QueueSize int

	// PollInterval defines how often the runner scans for pending tasks.
	// If zero, defaults to 5 seconds.
	PollInterval time.Duration

	// ReclaimAge defines how long a task can sit in the running state
	// before it's considered abandoned by a crashed worker and re-dispatched
	ReclaimAge time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Concurrency:  2,
		QueueSize:    100,
		PollInterval: 5 * time.Second,
		ReclaimAge:   10 * time.Minute,
	}
}

// Runner scans the store for pending research tasks and drives each one
// through its lifecycle: Start, Execute, then Complete or Fail. Running
// tasks whose StartedAt is older than ReclaimAge are re-dispatched, on the
// assumption their worker died.
type Runner struct {
	research service.ResearchService
	executor Executor
	config   RunnerConfig
	logger   *slog.Logger

	taskChan   chan *domain.Task
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup

	mu       sync.Mutex
	inflight map[uuid.UUID]bool
}

// NewRunner creates a new Runner
func NewRunner(research service.ResearchService, executor Executor, config RunnerConfig, log *slog.Logger) *Runner {
	if research == nil {
		panic("research service cannot be nil")
	}
	if executor == nil {
		panic("executor cannot be nil")
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 100
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		research:   research,
		executor:   executor,
		config:     config,
		logger:     log.With(slog.String("component", "research_runner")),
		taskChan:   make(chan *domain.Task, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		inflight:   make(map[uuid.UUID]bool),
	}
}

// Start launches the worker goroutines and the poll loop.
func (r *Runner) Start() {
	for i := 0; i < r.config.Concurrency; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.pollLoop()

	r.logger.Info("research runner started",
		slog.Int("concurrency", r.config.Concurrency),
		slog.Duration("poll_interval", r.config.PollInterval))
}

// Stop gracefully shuts down the runner, waiting for in-flight tasks.
func (r *Runner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	r.logger.Info("research runner stopped")
}

// pollLoop periodically scans for dispatchable tasks. The first scan runs
// immediately so restarts pick up backlog without waiting an interval.
func (r *Runner) pollLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	r.dispatchPending()
	r.reclaimAbandoned()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.dispatchPending()
			r.reclaimAbandoned()
		}
	}
}

// dispatchPending enqueues pending tasks that are not already in flight.
func (r *Runner) dispatchPending() {
	pending := domain.TaskStatusPending
	tasks, err := r.research.ListTasks(r.ctx, store.ListFilter{
		Limit:  r.config.QueueSize,
		Status: &pending,
	})
	if err != nil {
		r.logger.Error("failed to list pending tasks", slog.String("error", err.Error()))
		return
	}

	for _, task := range tasks {
		r.enqueue(task)
	}
}

// reclaimAbandoned re-dispatches running tasks whose StartedAt is older than
// ReclaimAge. Re-entering Start on a running task is a no-op, so a reclaimed
// task resumes cleanly with a fresh executor call.
func (r *Runner) reclaimAbandoned() {
	if r.config.ReclaimAge <= 0 {
		return
	}

	running := domain.TaskStatusRunning
	tasks, err := r.research.ListTasks(r.ctx, store.ListFilter{
		Limit:  r.config.QueueSize,
		Status: &running,
	})
	if err != nil {
		r.logger.Error("failed to list running tasks", slog.String("error", err.Error()))
		return
	}

	cutoff := time.Now().UTC().Add(-r.config.ReclaimAge)
	for _, task := range tasks {
		if task.StartedAt == nil || task.StartedAt.After(cutoff) {
			continue
		}
		r.logger.Warn("reclaiming abandoned task",
			slog.String("task_id", task.ID.String()),
			slog.Time("started_at", *task.StartedAt))
		r.enqueue(task)
	}
}

func (r *Runner) enqueue(task *domain.Task) {
	r.mu.Lock()
	if r.inflight[task.ID] {
		r.mu.Unlock()
		return
	}
	r.inflight[task.ID] = true
	r.mu.Unlock()

	select {
	case r.taskChan <- task:
	default:
		r.mu.Lock()
		delete(r.inflight, task.ID)
		r.mu.Unlock()
		r.logger.Error("dispatch queue is full, task left for next poll",
			slog.String("task_id", task.ID.String()))
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	log := r.logger.With(slog.Int("worker_id", id))
	log.Debug("starting worker")

	for {
		select {
		case <-r.ctx.Done():
			log.Debug("stopping worker")
			return
		case task := <-r.taskChan:
			r.processTask(task, log)
		}
	}
}

// processTask drives one task through its lifecycle.
func (r *Runner) processTask(task *domain.Task, log *slog.Logger) {
	defer func() {
		r.mu.Lock()
		delete(r.inflight, task.ID)
		r.mu.Unlock()
	}()

	log = log.With(slog.String("task_id", task.ID.String()))

	started, err := r.research.StartTask(r.ctx, task.ID)
	if err != nil {
		// Another worker may have finished it between poll and dispatch.
		log.Debug("task no longer startable", slog.String("error", err.Error()))
		return
	}

	log.Info("executing research task")

	result, trace, err := r.executor.Execute(r.ctx, started)
	if err != nil {
		log.Error("research execution failed", slog.String("error", err.Error()))
		if _, failErr := r.research.FailTask(r.ctx, task.ID, err.Error()); failErr != nil {
			log.Error("failed to mark task failed", slog.String("error", failErr.Error()))
		}
		return
	}

	if _, err := r.research.CompleteTask(r.ctx, task.ID, result, trace); err != nil {
		log.Error("failed to save task result", slog.String("error", err.Error()))
		return
	}

	log.Info("research task finished")
}
