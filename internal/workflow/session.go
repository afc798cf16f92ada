// Package workflow implements one simulated actor's iteration: acquire or
// reuse a session, run the dependent chain (create project, then best-effort
// create spec), record per-step outcomes, and pause for think time. The
// iteration repeats until the coordinator retires the actor.
package workflow

import (
	"context"

	"nooshload/internal/config"
	"nooshload/internal/core"
	"nooshload/internal/noosh"
)

// SessionSource supplies the session an actor uses for one iteration.
type SessionSource interface {
	// Acquire returns a session owned by the caller for this iteration.
	Acquire(ctx context.Context) (core.Session, error)
	// FillSubjectID records a lazily resolved subject id for future
	// acquisitions. Implementations without shared state ignore it.
	FillSubjectID(id string)
}

// SharedSource hands every actor a copy of one pre-established session,
// skipping the delegation flow entirely. Used by sustained load profiles to
// keep authentication traffic off the delegation endpoints.
type SharedSource struct {
	shared *core.SharedSession
}

func NewSharedSource(shared *core.SharedSession) *SharedSource {
	return &SharedSource{shared: shared}
}

func (s *SharedSource) Acquire(ctx context.Context) (core.Session, error) {
	return s.shared.Snapshot(), nil
}

func (s *SharedSource) FillSubjectID(id string) {
	s.shared.FillSubjectID(id)
}

// DelegationSource authenticates per acquisition, exercising the full
// three-step delegation flow every iteration. Credentials come from the
// user pool so runs can spread load across accounts.
type DelegationSource struct {
	client *noosh.Client
	users  *config.UserPool
}

func NewDelegationSource(client *noosh.Client, users *config.UserPool) *DelegationSource {
	return &DelegationSource{client: client, users: users}
}

func (s *DelegationSource) Acquire(ctx context.Context) (core.Session, error) {
	u := s.users.Next()
	return s.client.Authenticate(ctx, u.Username, u.Password)
}

func (s *DelegationSource) FillSubjectID(string) {}
