package collector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"nooshload/internal/core"
)

// Report bundles the artifacts written for one run: a summary JSON and a
// raw-sample dump. Rendering beyond these files (HTML and the like) is left
// to external tooling consuming them.
type Report struct {
	RunID       string
	SummaryPath string
	EventsPath  string
}

type rawEvent struct {
	ActorID    int       `json:"actorId"`
	Timestamp  time.Time `json:"timestamp"`
	Step       string    `json:"step"`
	Kind       string    `json:"kind"`
	DurationMS float64   `json:"durationMs"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	StatusCode int       `json:"statusCode,omitempty"`
	BytesSent  int64     `json:"bytesSent,omitempty"`
	BytesRecv  int64     `json:"bytesRecv,omitempty"`
}

// WriteReports writes the summary and raw-event files for a run into dir,
// creating it if needed. Files are named {profile}-{runid}-summary.json and
// {profile}-{runid}-events.json.
func WriteReports(dir, profile string, m *Metrics, thresholds *ThresholdResults, events []core.Event) (*Report, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating report dir: %w", err)
	}

	runID := uuid.NewString()[:8]
	rep := &Report{
		RunID:       runID,
		SummaryPath: filepath.Join(dir, fmt.Sprintf("%s-%s-summary.json", profile, runID)),
		EventsPath:  filepath.Join(dir, fmt.Sprintf("%s-%s-events.json", profile, runID)),
	}

	summary, err := json.MarshalIndent(buildJSONSummary(m, thresholds), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding summary: %w", err)
	}
	if err := os.WriteFile(rep.SummaryPath, summary, 0o640); err != nil {
		return nil, fmt.Errorf("writing summary: %w", err)
	}

	raw := make([]rawEvent, 0, len(events))
	for _, e := range events {
		raw = append(raw, rawEvent{
			ActorID:    e.ActorID,
			Timestamp:  e.Timestamp,
			Step:       e.Step,
			Kind:       string(e.Kind),
			DurationMS: float64(e.Duration) / float64(time.Millisecond),
			Success:    e.Success,
			Error:      e.Error,
			StatusCode: e.StatusCode,
			BytesSent:  e.BytesSent,
			BytesRecv:  e.BytesRecv,
		})
	}
	dump, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding events: %w", err)
	}
	if err := os.WriteFile(rep.EventsPath, dump, 0o640); err != nil {
		return nil, fmt.Errorf("writing events: %w", err)
	}

	return rep, nil
}
