package collector

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nooshload/internal/core"
)

func TestWriteReports(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	events := []core.Event{
		{ActorID: 1, Timestamp: time.Now(), Step: "create_project", Kind: core.KindRequest,
			Duration: 120 * time.Millisecond, Success: true, StatusCode: 201},
		{ActorID: 1, Timestamp: time.Now(), Step: "project created", Kind: core.KindCheck, Success: true},
	}
	m := ComputeMetrics(events, time.Second)
	thresholds := (&Thresholds{HTTPReqFailed: &FailureThresholds{Rate: "1%"}}).Check(m)

	rep, err := WriteReports(dir, "smoke", m, thresholds, events)
	if err != nil {
		t.Fatalf("WriteReports failed: %v", err)
	}

	if len(rep.RunID) != 8 {
		t.Errorf("expected 8-char run id, got %q", rep.RunID)
	}
	if !strings.HasSuffix(rep.SummaryPath, "smoke-"+rep.RunID+"-summary.json") {
		t.Errorf("unexpected summary path %q", rep.SummaryPath)
	}

	summary, err := os.ReadFile(rep.SummaryPath)
	if err != nil {
		t.Fatalf("reading summary: %v", err)
	}
	if !json.Valid(summary) {
		t.Error("summary file is not valid JSON")
	}

	dump, err := os.ReadFile(rep.EventsPath)
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(dump, &raw); err != nil {
		t.Fatalf("events file is not a JSON array: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("expected 2 raw events, got %d", len(raw))
	}
	if raw[0]["step"] != "create_project" || raw[0]["kind"] != "request" {
		t.Errorf("unexpected first raw event: %+v", raw[0])
	}
	if raw[0]["durationMs"].(float64) != 120 {
		t.Errorf("expected durationMs 120, got %v", raw[0]["durationMs"])
	}
}

func TestWriteReports_UniqueRunIDs(t *testing.T) {
	dir := t.TempDir()
	m := ComputeMetrics(nil, time.Second)
	verdict := (*Thresholds)(nil).Check(m)

	a, err := WriteReports(dir, "load", m, verdict, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := WriteReports(dir, "load", m, verdict, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.RunID == b.RunID {
		t.Errorf("two runs produced the same run id %q", a.RunID)
	}
}
