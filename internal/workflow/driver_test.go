package workflow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nooshload/internal/config"
	"nooshload/internal/core"
	"nooshload/internal/mockapi"
	"nooshload/internal/noosh"
)

func testEnv(baseURL string) config.Environment {
	return config.Environment{
		Name:        "TEST",
		BaseURL:     baseURL,
		Domain:      "qa2.noosh.com",
		WorkgroupID: "5018408",
		OAuth:       config.OAuthClient{ClientID: "cid", ClientSecret: "csecret"},
	}
}

// fixedSource hands out a fixed session and records subject id fills.
type fixedSource struct {
	mu      sync.Mutex
	session core.Session
	err     error
	fills   []string
}

func (s *fixedSource) Acquire(ctx context.Context) (core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.err
}

func (s *fixedSource) FillSubjectID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fills = append(s.fills, id)
}

func checkEvents(events []core.Event) map[string]bool {
	out := make(map[string]bool)
	for _, e := range events {
		if e.Kind == core.KindCheck {
			out[e.Step] = e.Success
		}
	}
	return out
}

func iterationEvents(events []core.Event) []core.Event {
	var out []core.Event
	for _, e := range events {
		if e.Kind == core.KindIteration {
			out = append(out, e)
		}
	}
	return out
}

func newTestFlow(t *testing.T, ts *httptest.Server, sessions SessionSource) (*ProjectFlow, *core.EventSink) {
	t.Helper()
	sink := &core.EventSink{}
	client := noosh.NewClient(testEnv(ts.URL), zap.NewNop(), noosh.WithReporter(sink))
	return &ProjectFlow{
		Client:    client,
		EnvPrefix: "QA2",
		Sessions:  sessions,
		Log:       zap.NewNop(),
	}, sink
}

func TestProjectFlow_SuccessfulIteration(t *testing.T) {
	api := mockapi.NewServer()
	ts := httptest.NewServer(api.Handler())
	defer ts.Close()

	src := &fixedSource{session: core.Session{Token: "tok", SubjectID: "88271", WorkgroupID: "5018408"}}
	flow, sink := newTestFlow(t, ts, src)
	flow.WithSpec = true

	err := flow.Run(context.Background(), 1, sink)
	require.NoError(t, err)

	checks := checkEvents(sink.Events())
	assert.True(t, checks["authenticated"])
	assert.True(t, checks["project created"])
	assert.True(t, checks["spec created"])
	_, verified := checks["account verified"]
	assert.False(t, verified, "verification should be skipped when the subject id is known")

	iters := iterationEvents(sink.Events())
	require.Len(t, iters, 1)
	assert.True(t, iters[0].Success)
}

func TestProjectFlow_AuthOnly(t *testing.T) {
	api := mockapi.NewServer()
	ts := httptest.NewServer(api.Handler())
	defer ts.Close()

	src := &fixedSource{session: core.Session{Token: "tok", SubjectID: "88271"}}
	flow, sink := newTestFlow(t, ts, src)
	flow.AuthOnly = true

	err := flow.Run(context.Background(), 1, sink)
	require.NoError(t, err)

	checks := checkEvents(sink.Events())
	assert.True(t, checks["authenticated"])
	assert.True(t, checks["subject id resolved"])
	_, created := checks["project created"]
	assert.False(t, created, "auth-only iterations must not create projects")

	// No HTTP requests at all: the session came from the source.
	for _, e := range sink.Events() {
		assert.NotEqual(t, core.KindRequest, e.Kind)
	}
}

func TestProjectFlow_AcquireFailureFailsIteration(t *testing.T) {
	api := mockapi.NewServer()
	ts := httptest.NewServer(api.Handler())
	defer ts.Close()

	src := &fixedSource{err: errors.New("delegation refused")}
	flow, sink := newTestFlow(t, ts, src)

	err := flow.Run(context.Background(), 1, sink)
	require.NoError(t, err, "a failed iteration must not retire the actor")

	checks := checkEvents(sink.Events())
	assert.False(t, checks["authenticated"])

	iters := iterationEvents(sink.Events())
	require.Len(t, iters, 1)
	assert.False(t, iters[0].Success)
}

func TestProjectFlow_ProjectFailureFailsIteration(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/nooshenterprise/noosh/cloud/api/project/createProject", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	src := &fixedSource{session: core.Session{Token: "tok", SubjectID: "88271", WorkgroupID: "5018408"}}
	flow, sink := newTestFlow(t, ts, src)

	err := flow.Run(context.Background(), 1, sink)
	require.NoError(t, err)

	checks := checkEvents(sink.Events())
	assert.True(t, checks["authenticated"])
	assert.False(t, checks["project created"])

	iters := iterationEvents(sink.Events())
	require.Len(t, iters, 1)
	assert.False(t, iters[0].Success)
}

func TestProjectFlow_SpecFailureDoesNotFailIteration(t *testing.T) {
	api := mockapi.NewServer()
	api.FailSpecTypes.Store(true)
	ts := httptest.NewServer(api.Handler())
	defer ts.Close()

	src := &fixedSource{session: core.Session{Token: "tok", SubjectID: "88271", WorkgroupID: "5018408"}}
	flow, sink := newTestFlow(t, ts, src)
	flow.WithSpec = true

	err := flow.Run(context.Background(), 1, sink)
	require.NoError(t, err)

	checks := checkEvents(sink.Events())
	assert.True(t, checks["project created"])
	assert.False(t, checks["spec created"])

	iters := iterationEvents(sink.Events())
	require.Len(t, iters, 1)
	assert.True(t, iters[0].Success, "spec creation is best-effort")
}

func TestProjectFlow_MissingSubjectTriggersVerification(t *testing.T) {
	api := mockapi.NewServer()
	ts := httptest.NewServer(api.Handler())
	defer ts.Close()

	shared := core.NewSharedSession(core.Session{Token: "tok", WorkgroupID: "5018408"})
	flow, sink := newTestFlow(t, ts, NewSharedSource(shared))

	err := flow.Run(context.Background(), 1, sink)
	require.NoError(t, err)

	checks := checkEvents(sink.Events())
	assert.True(t, checks["account verified"])

	// The resolved subject id is filled back into the shared session.
	assert.Equal(t, api.SubjectID, shared.Snapshot().SubjectID)
}

func TestProjectFlow_CancelledIterationNotCounted(t *testing.T) {
	api := mockapi.NewServer()
	ts := httptest.NewServer(api.Handler())
	defer ts.Close()

	src := &fixedSource{session: core.Session{Token: "tok", SubjectID: "88271", WorkgroupID: "5018408"}}
	flow, sink := newTestFlow(t, ts, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := flow.Run(ctx, 1, sink)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, iterationEvents(sink.Events()), "a truncated iteration must not be counted")
}

func TestSharedSource_SnapshotPerAcquire(t *testing.T) {
	shared := core.NewSharedSession(core.Session{Token: "tok"})
	src := NewSharedSource(shared)

	s1, err := src.Acquire(context.Background())
	require.NoError(t, err)
	s1.SubjectID = "mutated"

	s2, err := src.Acquire(context.Background())
	require.NoError(t, err)
	assert.Empty(t, s2.SubjectID)

	src.FillSubjectID("42")
	s3, _ := src.Acquire(context.Background())
	assert.Equal(t, "42", s3.SubjectID)
}

func TestDelegationSource_RotatesUsers(t *testing.T) {
	api := mockapi.NewServer()
	ts := httptest.NewServer(api.Handler())
	defer ts.Close()

	client := noosh.NewClient(testEnv(ts.URL), zap.NewNop())
	pool := config.NewUserPool([]config.User{
		{Username: "alice", Password: "p1"},
		{Username: "bob", Password: "p2"},
	}, config.ModeSequential)
	src := NewDelegationSource(client, pool)

	for i := 0; i < 2; i++ {
		session, err := src.Acquire(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
	}
}
