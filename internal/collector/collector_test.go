package collector

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"nooshload/internal/core"
)

func TestCollector_ConcurrentReport(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for actor := 0; actor < 10; actor++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				c.Report(requestEvent("step", time.Millisecond, true))
			}
		}(actor)
	}
	wg.Wait()
	c.Close()

	if got := len(c.Events()); got != 100 {
		t.Errorf("expected 100 events, got %d", got)
	}
}

func TestCollector_ComputeAfterClose(t *testing.T) {
	c := NewCollector()
	c.Report(requestEvent("step", time.Millisecond, true))
	c.Close()

	m := c.Compute()
	if m.TotalRequests != 1 {
		t.Errorf("expected 1 request, got %d", m.TotalRequests)
	}
}

func TestCollector_DurationFrozenByClose(t *testing.T) {
	c := NewCollector()
	c.Close()

	d1 := c.Duration()
	time.Sleep(10 * time.Millisecond)
	d2 := c.Duration()
	if d1 != d2 {
		t.Errorf("duration should be frozen after Close: %v != %v", d1, d2)
	}
}

func TestFormatText(t *testing.T) {
	events := []core.Event{
		requestEvent("create_project", 100*time.Millisecond, true),
		requestEvent("create_project", 200*time.Millisecond, false),
		{Kind: core.KindCheck, Step: "project created", Success: true},
		{Kind: core.KindIteration, Step: "iteration", Success: true},
	}
	m := ComputeMetrics(events, time.Second)
	verdict := (&Thresholds{HTTPReqFailed: &FailureThresholds{Rate: "1%"}}).Check(m)

	var buf bytes.Buffer
	FormatText(&buf, m, verdict)
	out := buf.String()

	for _, want := range []string{
		"Total Requests: 2",
		"Iterations:     1",
		"Checks:         100.0%",
		"create_project",
		"http_req_failed.rate",
		"✗",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatText_NoEvents(t *testing.T) {
	var buf bytes.Buffer
	FormatText(&buf, ComputeMetrics(nil, time.Second), nil)
	if !strings.Contains(buf.String(), "No events collected") {
		t.Errorf("unexpected empty-run output: %s", buf.String())
	}
}

func TestFormatJSON(t *testing.T) {
	events := []core.Event{
		requestEvent("client_token", 50*time.Millisecond, true),
		{Kind: core.KindCheck, Step: "authenticated", Success: true},
	}
	m := ComputeMetrics(events, time.Second)

	var buf bytes.Buffer
	FormatJSON(&buf, m, nil)

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if out["totalRequests"].(float64) != 1 {
		t.Errorf("expected totalRequests 1, got %v", out["totalRequests"])
	}
	if out["checksTotal"].(float64) != 1 {
		t.Errorf("expected checksTotal 1, got %v", out["checksTotal"])
	}
	if _, ok := out["steps"].(map[string]any)["client_token"]; !ok {
		t.Error("expected client_token step in JSON output")
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[int]string{
		7:       "7",
		999:     "999",
		1000:    "1,000",
		12345:   "12,345",
		1234567: "1,234,567",
	}
	for n, want := range cases {
		if got := formatNumber(n); got != want {
			t.Errorf("formatNumber(%d) = %q, want %q", n, got, want)
		}
	}
}
