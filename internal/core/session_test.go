package core

import (
	"sync"
	"testing"
)

func TestSharedSession_SnapshotIsCopy(t *testing.T) {
	shared := NewSharedSession(Session{Token: "tok", WorkgroupID: "wg"})

	snap := shared.Snapshot()
	snap.SubjectID = "mutated"

	if got := shared.Snapshot().SubjectID; got != "" {
		t.Errorf("mutating a snapshot leaked into shared state: %q", got)
	}
}

func TestSharedSession_FillSubjectID(t *testing.T) {
	shared := NewSharedSession(Session{Token: "tok"})

	shared.FillSubjectID("")
	if got := shared.Snapshot().SubjectID; got != "" {
		t.Errorf("empty fill should be a no-op, got %q", got)
	}

	shared.FillSubjectID("100")
	shared.FillSubjectID("200")
	if got := shared.Snapshot().SubjectID; got != "100" {
		t.Errorf("expected first fill to win, got %q", got)
	}
}

func TestSharedSession_ConcurrentFill(t *testing.T) {
	shared := NewSharedSession(Session{Token: "tok"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shared.FillSubjectID("42")
			_ = shared.Snapshot()
		}()
	}
	wg.Wait()

	if got := shared.Snapshot().SubjectID; got != "42" {
		t.Errorf("expected subject id 42 after concurrent fills, got %q", got)
	}
}
