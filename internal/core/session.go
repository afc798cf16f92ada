package core

import "sync"

// Session is the immutable bundle of authenticated state produced by the
// delegation flow. Actors work with value copies, so one actor can never
// observe another's in-flight mutations.
type Session struct {
	Token       string
	SubjectID   string
	WorkgroupID string
	ExpiresIn   int
}

// SharedSession holds a session established once during the setup phase and
// read by every actor. Snapshot hands out value copies. The only write after
// creation is the one-time SubjectID fill, which is idempotent: it applies
// only while the field is still empty, so concurrent resolvers all converge
// on the first resolved value.
type SharedSession struct {
	mu sync.RWMutex
	s  Session
}

func NewSharedSession(s Session) *SharedSession {
	return &SharedSession{s: s}
}

// Snapshot returns a copy of the current session state.
func (ss *SharedSession) Snapshot() Session {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.s
}

// FillSubjectID records a lazily resolved subject id. It is a no-op when the
// id is empty or a subject id has already been recorded.
func (ss *SharedSession) FillSubjectID(id string) {
	if id == "" {
		return
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.s.SubjectID == "" {
		ss.s.SubjectID = id
	}
}
