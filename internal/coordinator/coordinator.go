// Package coordinator manages actor lifecycle: spawning, phase-driven
// scaling, and graceful retirement.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"nooshload/internal/config"
	"nooshload/internal/core"
	"nooshload/internal/progress"
	"nooshload/internal/ratelimit"
)

const (
	// phaseTickInterval is how often the actor population is compared to
	// the load profile's current target and adjusted.
	phaseTickInterval = 100 * time.Millisecond
)

type Coordinator struct {
	nextID      atomic.Int64
	wg          sync.WaitGroup
	reporter    core.Reporter
	activeCount atomic.Int32
	stopChans   []chan struct{}
	stopMu      sync.Mutex
}

func NewCoordinator(reporter core.Reporter) *Coordinator {
	return &Coordinator{
		reporter: reporter,
	}
}

// Spawn starts count actors running the workflow until the context is done
// or the runner's iteration limit is reached.
func (c *Coordinator) Spawn(ctx context.Context, count int, workflow core.Workflow, runnerCfg core.RunnerConfig) {
	for i := 0; i < count; i++ {
		actorID := int(c.nextID.Add(1))
		c.activeCount.Add(1)
		c.wg.Add(1)
		go func(id int) {
			defer func() {
				c.wg.Done()
				c.activeCount.Add(-1)
			}()
			defer c.recoverPanic(id)
			c.runActor(ctx, nil, id, workflow, runnerCfg)
		}(actorID)
	}
}

// runActor is the actor loop: one iteration per pass, until the context is
// cancelled, the stop channel closes, or the iteration limit is hit.
func (c *Coordinator) runActor(ctx context.Context, stop chan struct{}, id int, workflow core.Workflow, runnerCfg core.RunnerConfig) {
	runner := core.NewRunner(workflow, c.reporter, id, runnerCfg)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		default:
			if err := runner.RunIteration(ctx); err != nil {
				if errors.Is(err, core.ErrMaxIterationsReached) {
					return
				}
				return
			}
		}
	}
}

func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// WaitGrace waits for in-flight iterations to finish, up to the grace
// period. It returns true if all actors retired in time.
func (c *Coordinator) WaitGrace(grace time.Duration) bool {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(grace):
		return false
	}
}

func (c *Coordinator) ActiveActors() int {
	return int(c.activeCount.Load())
}

func (c *Coordinator) spawnWithStop(ctx context.Context, workflow core.Workflow, runnerCfg core.RunnerConfig) {
	stopCh := make(chan struct{})
	actorID := int(c.nextID.Add(1))
	c.activeCount.Add(1)
	c.wg.Add(1)

	c.stopMu.Lock()
	c.stopChans = append(c.stopChans, stopCh)
	c.stopMu.Unlock()

	go func(id int, stop chan struct{}) {
		defer func() {
			c.wg.Done()
			c.activeCount.Add(-1)
		}()
		defer c.recoverPanic(id)
		c.runActor(ctx, stop, id, workflow, runnerCfg)
	}(actorID, stopCh)
}

// recoverPanic recovers from panics in actor goroutines and reports them as
// failed iteration events.
func (c *Coordinator) recoverPanic(actorID int) {
	if r := recover(); r != nil {
		c.reporter.Report(core.Event{
			ActorID: actorID,
			Step:    "panic",
			Kind:    core.KindIteration,
			Success: false,
			Error:   fmt.Sprintf("panic: %v", r),
		})
	}
}

func (c *Coordinator) stopActors(n int) {
	c.stopMu.Lock()
	defer c.stopMu.Unlock()
	toStop := n
	if toStop > len(c.stopChans) {
		toStop = len(c.stopChans)
	}
	for i := 0; i < toStop; i++ {
		close(c.stopChans[i])
	}
	c.stopChans = c.stopChans[toStop:]
}

func (c *Coordinator) stopAllActors() {
	c.stopMu.Lock()
	for _, ch := range c.stopChans {
		close(ch)
	}
	c.stopChans = nil
	c.stopMu.Unlock()
}

// RunWithProfile drives the actor population through the load profile's
// phases, adjusting toward each phase's target on every tick. When the
// profile completes (or the context is cancelled) actors are told to stop;
// in-flight iterations finish within the caller's grace period.
func (c *Coordinator) RunWithProfile(ctx context.Context, profile *config.LoadProfile, workflow core.Workflow, rateLimiter *ratelimit.RateLimiter, prog *progress.Progress, runnerCfg core.RunnerConfig) {
	pm := ratelimit.NewPhaseManager(profile.Phases)

	printMsg := func(format string, args ...interface{}) {
		if prog != nil {
			prog.Printf(format, args...)
		} else {
			fmt.Printf(format+"\n", args...)
		}
	}

	printMsg("Starting load profile with %d phases, total duration: %v",
		len(profile.Phases), profile.TotalDuration())

	currentPhaseIdx := -1
	ticker := time.NewTicker(phaseTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.stopAllActors()
			return
		case <-ticker.C:
			if pm.IsComplete() {
				c.stopAllActors()
				return
			}
			newPhaseIdx := pm.CurrentPhaseIndex()
			if newPhaseIdx != currentPhaseIdx {
				currentPhaseIdx = newPhaseIdx
				phase := pm.CurrentPhase()
				if phase != nil {
					if phase.RPS > 0 {
						printMsg("Phase: %s (duration: %v, target actors: %d, rps: %d)",
							phase.Name, phase.Duration, pm.TargetActors(), phase.RPS)
					} else {
						printMsg("Phase: %s (duration: %v, target actors: %d)",
							phase.Name, phase.Duration, pm.TargetActors())
					}
				}
			}
			target := pm.TargetActors()
			current := c.ActiveActors()
			if current < target {
				for i := current; i < target; i++ {
					c.spawnWithStop(ctx, workflow, runnerCfg)
				}
			} else if current > target {
				c.stopActors(current - target)
			}
			if rateLimiter != nil {
				rateLimiter.SetRate(pm.CurrentRPS())
			}
		}
	}
}
