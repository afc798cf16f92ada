package core

import (
	"context"
	"errors"
)

// ErrMaxIterationsReached indicates the runner hit its iteration limit.
var ErrMaxIterationsReached = errors.New("max iterations reached")

// NullReporter discards all events (used during warmup).
var NullReporter Reporter = nullReporter{}

type nullReporter struct{}

func (nullReporter) Report(Event) {}

// RunnerConfig controls iteration-level execution behavior.
type RunnerConfig struct {
	MaxIterations int // 0 = unlimited
	WarmupIters   int // iterations before metrics count (per-actor)
}

// Runner controls iteration-level workflow execution.
// A Runner is NOT safe for concurrent use; each actor goroutine must have its own Runner.
type Runner struct {
	workflow  Workflow
	reporter  Reporter
	actorID   int
	config    RunnerConfig
	iteration int
}

// NewRunner creates a Runner for a single actor.
func NewRunner(workflow Workflow, reporter Reporter, actorID int, config RunnerConfig) *Runner {
	return &Runner{
		workflow: workflow,
		reporter: reporter,
		actorID:  actorID,
		config:   config,
	}
}

// RunIteration executes one complete workflow iteration.
// Returns nil on success, ErrMaxIterationsReached when the limit is hit, or
// the workflow's retirement error.
func (r *Runner) RunIteration(ctx context.Context) error {
	if r.config.MaxIterations > 0 && r.iteration >= r.config.MaxIterations {
		return ErrMaxIterationsReached
	}

	rep := r.reporter
	if r.iteration < r.config.WarmupIters {
		rep = NullReporter
	}

	err := r.workflow.Run(ctx, r.actorID, rep)
	r.iteration++
	return err
}

// Iteration returns the number of completed iterations.
func (r *Runner) Iteration() int {
	return r.iteration
}

// IsWarmup returns true if still in the warmup phase.
func (r *Runner) IsWarmup() bool {
	return r.iteration < r.config.WarmupIters
}
