package coordinator

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nooshload/internal/config"
	"nooshload/internal/core"
	"nooshload/internal/ratelimit"
)

// trackingWorkflow counts iterations and the peak concurrent actor count.
type trackingWorkflow struct {
	iterations atomic.Int64
	active     atomic.Int32
	peak       atomic.Int32
	delay      time.Duration
	block      chan struct{}
}

func (w *trackingWorkflow) Run(ctx context.Context, actorID int, rep core.Reporter) error {
	cur := w.active.Add(1)
	defer w.active.Add(-1)
	for {
		prev := w.peak.Load()
		if cur <= prev || w.peak.CompareAndSwap(prev, cur) {
			break
		}
	}

	w.iterations.Add(1)
	if w.block != nil {
		select {
		case <-w.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if w.delay > 0 {
		select {
		case <-time.After(w.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return ctx.Err()
}

func TestCoordinator_SpawnRunsMaxIterations(t *testing.T) {
	wf := &trackingWorkflow{}
	coord := NewCoordinator(core.NullReporter)

	coord.Spawn(context.Background(), 5, wf, core.RunnerConfig{MaxIterations: 3})
	coord.Wait()

	if got := wf.iterations.Load(); got != 15 {
		t.Errorf("expected 15 iterations (5 actors x 3), got %d", got)
	}
	if coord.ActiveActors() != 0 {
		t.Errorf("expected all actors retired, got %d active", coord.ActiveActors())
	}
}

func TestCoordinator_ContextCancelStopsActors(t *testing.T) {
	wf := &trackingWorkflow{delay: 5 * time.Millisecond}
	coord := NewCoordinator(core.NullReporter)

	ctx, cancel := context.WithCancel(context.Background())
	coord.Spawn(ctx, 3, wf, core.RunnerConfig{})

	time.Sleep(20 * time.Millisecond)
	cancel()
	coord.Wait()

	if coord.ActiveActors() != 0 {
		t.Errorf("expected 0 active actors after cancel, got %d", coord.ActiveActors())
	}
}

func TestCoordinator_PanicRecoveredAsFailedIteration(t *testing.T) {
	panicWf := panicWorkflow{}
	sink := &core.EventSink{}
	coord := NewCoordinator(sink)

	coord.Spawn(context.Background(), 1, panicWf, core.RunnerConfig{MaxIterations: 1})
	coord.Wait()

	events := sink.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event from panic recovery, got %d", len(events))
	}
	if events[0].Success || events[0].Kind != core.KindIteration {
		t.Errorf("expected a failed iteration event, got %+v", events[0])
	}
	if events[0].Error == "" {
		t.Error("expected the panic message in the event")
	}
}

type panicWorkflow struct{}

func (panicWorkflow) Run(ctx context.Context, actorID int, rep core.Reporter) error {
	panic("workflow blew up")
}

func TestCoordinator_WaitGrace(t *testing.T) {
	wf := &trackingWorkflow{block: make(chan struct{})}
	coord := NewCoordinator(core.NullReporter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	coord.Spawn(ctx, 2, wf, core.RunnerConfig{MaxIterations: 1})

	// Actors are blocked inside their iteration, so the grace period lapses.
	if coord.WaitGrace(30 * time.Millisecond) {
		t.Error("expected WaitGrace to time out while iterations are in flight")
	}

	close(wf.block)
	if !coord.WaitGrace(time.Second) {
		t.Error("expected WaitGrace to succeed once iterations finish")
	}
}

func TestRunWithProfile_ScalesAndStops(t *testing.T) {
	wf := &trackingWorkflow{delay: time.Millisecond}
	coord := NewCoordinator(core.NullReporter)

	profile := &config.LoadProfile{Phases: []config.Phase{
		{Name: "steady", Duration: 500 * time.Millisecond, Actors: 4},
	}}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		coord.RunWithProfile(context.Background(), profile, wf,
			ratelimit.NewRateLimiter(0), nil, core.RunnerConfig{})
	}()

	time.Sleep(300 * time.Millisecond)
	if got := coord.ActiveActors(); got != 4 {
		t.Errorf("expected 4 active actors mid-phase, got %d", got)
	}

	wg.Wait()
	if !coord.WaitGrace(time.Second) {
		t.Fatal("actors did not retire after the profile completed")
	}
	if got := wf.peak.Load(); got > 4 {
		t.Errorf("actor population exceeded the profile target: peak %d", got)
	}
	if wf.iterations.Load() == 0 {
		t.Error("expected iterations to have run")
	}
}

func TestRunWithProfile_CancelledContext(t *testing.T) {
	wf := &trackingWorkflow{delay: time.Millisecond}
	coord := NewCoordinator(core.NullReporter)

	profile := &config.LoadProfile{Phases: []config.Phase{
		{Name: "steady", Duration: time.Hour, Actors: 2},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		coord.RunWithProfile(ctx, profile, wf, ratelimit.NewRateLimiter(0), nil, core.RunnerConfig{})
		close(done)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunWithProfile did not return after context cancellation")
	}
	coord.Wait()
}
