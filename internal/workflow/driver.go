package workflow

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"nooshload/internal/config"
	"nooshload/internal/core"
	"nooshload/internal/namegen"
	"nooshload/internal/noosh"
	"nooshload/internal/ratelimit"
)

// ProjectFlow is the actor workflow: session acquisition, project creation,
// and optional best-effort spec creation. It implements core.Workflow.
//
// A required-step failure (authentication, create-project) marks the
// iteration failed; a spec failure does not. Failures never propagate past
// the driver: sibling actors and the coordinator are unaffected.
type ProjectFlow struct {
	Client    *noosh.Client
	EnvPrefix string
	Sessions  SessionSource

	// AuthOnly stops after session acquisition (authentication profiles).
	AuthOnly bool
	// WithSpec enables the create-spec step after create-project.
	WithSpec bool
	// Verify runs the account-verification diagnostic each iteration. A
	// session missing its subject id triggers verification regardless, as
	// the fallback resolution path.
	Verify bool

	Think   config.ThinkTimeConfig
	Limiter *ratelimit.RateLimiter
	Log     *zap.Logger
}

// Run executes one iteration. It returns an error only when the actor
// should retire; failed iterations are reported and absorbed.
func (f *ProjectFlow) Run(ctx context.Context, actorID int, rep core.Reporter) error {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	ctx = core.ContextWithActorID(ctx, actorID)
	start := time.Now()
	ok := f.iterate(ctx, actorID, rep)

	if ctx.Err() != nil {
		// Cut short by shutdown; don't count a truncated iteration.
		return ctx.Err()
	}

	rep.Report(core.Event{
		ActorID:   actorID,
		Timestamp: start,
		Step:      "iteration",
		Kind:      core.KindIteration,
		Duration:  time.Since(start),
		Success:   ok,
	})

	f.think(ctx)
	return ctx.Err()
}

func (f *ProjectFlow) iterate(ctx context.Context, actorID int, rep core.Reporter) bool {
	session, err := f.Sessions.Acquire(ctx)
	reportCheck(rep, actorID, "authenticated", err == nil)
	if err != nil {
		if ctx.Err() == nil {
			f.Log.Warn("authentication failed",
				zap.Int("actor", actorID),
				zap.Error(err))
		}
		return false
	}

	if f.AuthOnly {
		reportCheck(rep, actorID, "subject id resolved", session.SubjectID != "")
		return true
	}

	if f.Verify || session.SubjectID == "" {
		subj, verified := f.Client.VerifyAccount(ctx, session)
		reportCheck(rep, actorID, "account verified", verified)
		if verified && session.SubjectID == "" && subj != "" {
			session.SubjectID = subj
			f.Sessions.FillSubjectID(subj)
		}
	}

	label := fmt.Sprintf("VU%d", actorID)
	projectName := namegen.ProjectName(f.EnvPrefix, label)
	project, err := f.Client.CreateProject(ctx, session, projectName)
	reportCheck(rep, actorID, "project created", err == nil)
	if err != nil {
		if ctx.Err() == nil {
			f.Log.Warn("project creation failed",
				zap.Int("actor", actorID),
				zap.Error(err))
		}
		return false
	}

	if f.WithSpec {
		specName := namegen.SpecName(f.EnvPrefix, label)
		result := f.Client.CreateSpec(ctx, session, project.ID, specName)
		reportCheck(rep, actorID, "spec created", result.Created)
	}

	return true
}

// think pauses for a randomized delay within the configured bounds,
// returning early on cancellation.
func (f *ProjectFlow) think(ctx context.Context) {
	delay := f.Think.Min
	if span := f.Think.Max - f.Think.Min; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func reportCheck(rep core.Reporter, actorID int, name string, ok bool) {
	rep.Report(core.Event{
		ActorID:   actorID,
		Timestamp: time.Now(),
		Step:      name,
		Kind:      core.KindCheck,
		Success:   ok,
	})
}
