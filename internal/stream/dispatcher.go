package stream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/probelabs/deepresearch/internal/domain"
	"github.com/probelabs/deepresearch/internal/store"
)

// DefaultPollInterval is used when a Dispatcher is constructed with a
// non-positive interval.
const DefaultPollInterval = time.Second

// failedFallbackMessage is emitted for failed tasks that carry no stored
// error message.
const failedFallbackMessage = "Task failed"

// TaskReader is the narrow read surface the dispatcher polls. It is
// satisfied by service.ResearchService.
type TaskReader interface {
	// GetTask retrieves a task by ID.
	// Returns store.ErrTaskNotFound if it does not exist.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}

// Dispatcher turns the stored state of a task into an ordered event stream
// by polling the task row. Every status change produces a status event; the
// stream ends with exactly one terminal event (complete or error) unless the
// consumer cancels first.
type Dispatcher struct {
	reader   TaskReader
	interval time.Duration
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher polling through the given reader.
// A non-positive interval falls back to DefaultPollInterval. If log is nil,
// the default logger is used.
func NewDispatcher(reader TaskReader, interval time.Duration, log *slog.Logger) *Dispatcher {
	if reader == nil {
		panic("task reader cannot be nil")
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		reader:   reader,
		interval: interval,
		logger:   log.With(slog.String("component", "stream_dispatcher")),
	}
}

// Events starts streaming the task's progress. The returned channel is
// always closed: after the terminal event, after an error event, or once
// ctx is cancelled. Sends block until the consumer receives, so a slow
// consumer slows the poll loop rather than dropping events.
func (d *Dispatcher) Events(ctx context.Context, taskID uuid.UUID) <-chan Event {
	ch := make(chan Event)
	go d.run(ctx, taskID, ch)
	return ch
}

func (d *Dispatcher) run(ctx context.Context, taskID uuid.UUID, ch chan<- Event) {
	defer close(ch)

	log := d.logger.With(slog.String("task_id", taskID.String()))

	var lastStatus domain.TaskStatus

	for {
		task, err := d.reader.GetTask(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			message := fmt.Sprintf("Task %s not found", taskID)
			if !store.IsNotFoundError(err) {
				log.Error("task poll failed", slog.String("error", err.Error()))
				message = "Task streaming unavailable"
			}

			event, eventErr := newErrorEvent(message)
			if eventErr != nil {
				return
			}
			d.send(ctx, ch, event)
			return
		}

		if task.Status != lastStatus {
			event, err := newStatusEvent(taskID, task.Status)
			if err != nil {
				log.Error("failed to encode status event", slog.String("error", err.Error()))
				return
			}
			if !d.send(ctx, ch, event) {
				return
			}
			lastStatus = task.Status
		}

		switch task.Status {
		case domain.TaskStatusCompleted:
			event, err := newCompleteEvent(task)
			if err != nil {
				log.Error("failed to encode complete event", slog.String("error", err.Error()))
				return
			}
			d.send(ctx, ch, event)
			return

		case domain.TaskStatusFailed:
			message := failedFallbackMessage
			if task.Error != nil && *task.Error != "" {
				message = *task.Error
			}
			event, err := newErrorEvent(message)
			if err != nil {
				return
			}
			d.send(ctx, ch, event)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(d.interval):
		}
	}
}

// send delivers an event unless ctx is cancelled first. It reports whether
// the event was delivered.
func (d *Dispatcher) send(ctx context.Context, ch chan<- Event, event Event) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- event:
		return true
	}
}
