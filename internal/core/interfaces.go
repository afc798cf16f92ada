// Package core defines the fundamental interfaces and types shared by the
// load driver: the event model, the workflow contract actors execute, and
// the session state produced by the delegation flow.
package core

import (
	"context"
	"time"
)

// Kind classifies an event sample. Request events feed latency and failure
// metrics, check events feed the check pass rate, iteration events count
// complete passes through an actor's workflow.
type Kind string

const (
	KindRequest   Kind = "request"
	KindCheck     Kind = "check"
	KindIteration Kind = "iteration"
)

// Event is a single measurement reported by an actor.
type Event struct {
	ActorID    int
	Timestamp  time.Time
	Step       string
	Kind       Kind
	Duration   time.Duration
	Success    bool
	Error      string
	StatusCode int
	BytesSent  int64
	BytesRecv  int64
}

// Workflow is one complete actor iteration: acquire a session, run the
// dependent action chain, report outcomes. Run returns an error only when
// the actor should retire (context cancelled); a failed iteration is
// reported, not returned.
type Workflow interface {
	Run(ctx context.Context, actorID int, rep Reporter) error
}

// Reporter is the interface actors use to send events to the aggregator.
type Reporter interface {
	Report(Event)
}

// Context key for passing actor ID down to API client calls.
type contextKey string

const actorIDContextKey contextKey = "actorID"

func ContextWithActorID(ctx context.Context, actorID int) context.Context {
	return context.WithValue(ctx, actorIDContextKey, actorID)
}

func ActorIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(actorIDContextKey).(int); ok {
		return id
	}
	return 0
}
