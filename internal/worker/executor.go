package worker

import (
	"context"

	"github.com/probelabs/deepresearch/internal/domain"
)

// Executor performs the actual research computation for one task. The
// runner owns the task lifecycle around the call: the task is already in
// the running state when Execute starts, and the returned result or error
// decides whether it completes or fails.
//
// Implementations live outside this repository; the research agent links
// the runner and plugs its computation in here.
type Executor interface {
	// Execute runs the research for the given task and returns the final
	// result and reasoning trace. A returned error fails the task with the
	// error's message.
	Execute(ctx context.Context, task *domain.Task) (*domain.Result, []domain.ReasoningStep, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, task *domain.Task) (*domain.Result, []domain.ReasoningStep, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, task *domain.Task) (*domain.Result, []domain.ReasoningStep, error) {
	return f(ctx, task)
}
