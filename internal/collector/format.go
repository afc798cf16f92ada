package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// FormatText writes metrics in human-readable form.
func FormatText(w io.Writer, m *Metrics, thresholds *ThresholdResults) {
	if m.TotalRequests == 0 {
		fmt.Fprintln(w, "No events collected")
		return
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "nooshload - Load Test Results")
	fmt.Fprintln(w, "==============================")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Duration:       %v\n", m.TestDuration.Round(time.Millisecond))
	fmt.Fprintf(w, "Iterations:     %s (%s failed)\n",
		formatNumber(m.Iterations), formatNumber(m.IterationFailures))
	fmt.Fprintf(w, "Total Requests: %s\n", formatNumber(m.TotalRequests))
	fmt.Fprintf(w, "Success Rate:   %.1f%% (%s / %s)\n",
		m.SuccessRate, formatNumber(m.SuccessCount), formatNumber(m.TotalRequests))
	if m.ChecksTotal > 0 {
		fmt.Fprintf(w, "Checks:         %.1f%% (%s / %s)\n",
			m.CheckRate, formatNumber(m.ChecksPassed), formatNumber(m.ChecksTotal))
	}
	fmt.Fprintf(w, "Requests/sec:   %.1f\n", m.RequestsPerSec)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Response Times:")
	fmt.Fprintf(w, "  Min:    %s\n", FormatDuration(m.Duration.Min))
	fmt.Fprintf(w, "  Avg:    %s\n", FormatDuration(m.Duration.Avg))
	fmt.Fprintf(w, "  P50:    %s\n", FormatDuration(m.Duration.P50))
	fmt.Fprintf(w, "  P90:    %s\n", FormatDuration(m.Duration.P90))
	fmt.Fprintf(w, "  P95:    %s\n", FormatDuration(m.Duration.P95))
	fmt.Fprintf(w, "  P99:    %s\n", FormatDuration(m.Duration.P99))
	fmt.Fprintf(w, "  Max:    %s\n", FormatDuration(m.Duration.Max))
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "By Step:")
	for step, sm := range m.Steps {
		fmt.Fprintf(w, "  %-20s %s reqs   avg=%s  p95=%s  p99=%s\n",
			step, formatNumber(sm.Count),
			FormatDuration(sm.Duration.Avg),
			FormatDuration(sm.Duration.P95),
			FormatDuration(sm.Duration.P99))
	}

	if thresholds != nil && len(thresholds.Results) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Thresholds:")
		for _, result := range thresholds.Results {
			symbol := "✓"
			if !result.Passed {
				symbol = "✗"
			}
			fmt.Fprintf(w, "  %s %s (threshold: %s, actual: %s)\n",
				symbol, result.Name, result.Threshold, result.Actual)
		}
	}
}

type jsonDurationMetrics struct {
	Min string `json:"min"`
	Max string `json:"max"`
	Avg string `json:"avg"`
	P50 string `json:"p50"`
	P90 string `json:"p90"`
	P95 string `json:"p95"`
	P99 string `json:"p99"`
}

type jsonStepMetrics struct {
	Count     int                 `json:"count"`
	Success   int                 `json:"success"`
	Failed    int                 `json:"failed"`
	Durations jsonDurationMetrics `json:"durations"`
}

type jsonSummary struct {
	Duration          string                     `json:"duration"`
	Iterations        int                        `json:"iterations"`
	IterationFailures int                        `json:"iterationFailures"`
	TotalRequests     int                        `json:"totalRequests"`
	SuccessCount      int                        `json:"successCount"`
	FailureCount      int                        `json:"failureCount"`
	SuccessRate       float64                    `json:"successRate"`
	ChecksTotal       int                        `json:"checksTotal"`
	ChecksPassed      int                        `json:"checksPassed"`
	CheckRate         float64                    `json:"checkRate"`
	RequestsPerSec    float64                    `json:"requestsPerSec"`
	Durations         jsonDurationMetrics        `json:"durations"`
	Steps             map[string]jsonStepMetrics `json:"steps"`
	Thresholds        *ThresholdResults          `json:"thresholds,omitempty"`
}

func toJSONDurations(d DurationMetrics) jsonDurationMetrics {
	return jsonDurationMetrics{
		Min: FormatDuration(d.Min),
		Max: FormatDuration(d.Max),
		Avg: FormatDuration(d.Avg),
		P50: FormatDuration(d.P50),
		P90: FormatDuration(d.P90),
		P95: FormatDuration(d.P95),
		P99: FormatDuration(d.P99),
	}
}

func buildJSONSummary(m *Metrics, thresholds *ThresholdResults) jsonSummary {
	out := jsonSummary{
		Duration:          m.TestDuration.Round(time.Millisecond).String(),
		Iterations:        m.Iterations,
		IterationFailures: m.IterationFailures,
		TotalRequests:     m.TotalRequests,
		SuccessCount:      m.SuccessCount,
		FailureCount:      m.FailureCount,
		SuccessRate:       m.SuccessRate,
		ChecksTotal:       m.ChecksTotal,
		ChecksPassed:      m.ChecksPassed,
		CheckRate:         m.CheckRate,
		RequestsPerSec:    m.RequestsPerSec,
		Durations:         toJSONDurations(m.Duration),
		Steps:             make(map[string]jsonStepMetrics, len(m.Steps)),
		Thresholds:        thresholds,
	}
	for name, sm := range m.Steps {
		out.Steps[name] = jsonStepMetrics{
			Count:     sm.Count,
			Success:   sm.Success,
			Failed:    sm.Failed,
			Durations: toJSONDurations(sm.Duration),
		}
	}
	return out
}

// FormatJSON writes metrics as indented JSON.
func FormatJSON(w io.Writer, m *Metrics, thresholds *ThresholdResults) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(buildJSONSummary(m, thresholds))
}

func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d,%03d,%03d", n/1000000, (n/1000)%1000, n%1000)
}
