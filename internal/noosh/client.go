// Package noosh is the client for the Noosh multi-tenant API: the three-step
// credential-delegation flow and the project/spec business actions driven by
// the load workflows. Every HTTP call is timed and reported as a request
// event.
package noosh

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"nooshload/internal/config"
	"nooshload/internal/core"
)

const (
	// maxBodySize limits how much of a response body is read for parsing.
	maxBodySize = 10 * 1024 * 1024
	// maxDebugBodySize limits response body logged in verbose mode.
	maxDebugBodySize = 4096
)

// StepError describes a protocol-step failure: a delegation or required
// business call that returned a non-success status or an unusable body. It
// carries enough context to diagnose against the target API.
type StepError struct {
	Step       string
	StatusCode int
	Body       string
	Err        error
}

func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Step, e.StatusCode, e.Body)
}

func (e *StepError) Unwrap() error { return e.Err }

// Client talks to one Noosh environment.
type Client struct {
	baseURL     string
	domain      string
	workgroupID string
	oauth       config.OAuthClient

	hc    *http.Client
	rep   core.Reporter
	debug *DebugLogger
	log   *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithReporter routes per-request events to rep.
func WithReporter(rep core.Reporter) Option {
	return func(c *Client) { c.rep = rep }
}

// WithDebugLogger enables request/response wire logging.
func WithDebugLogger(d *DebugLogger) Option {
	return func(c *Client) { c.debug = d }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// NewClient creates a client for the given environment.
func NewClient(env config.Environment, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:     env.BaseURL,
		domain:      env.Domain,
		workgroupID: env.WorkgroupID,
		oauth:       env.OAuth,
		hc:          &http.Client{Timeout: 30 * time.Second},
		log:         log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Domain returns the environment's domain.
func (c *Client) Domain() string { return c.domain }

// WorkgroupID returns the environment's tenant identifier.
func (c *Client) WorkgroupID() string { return c.workgroupID }

type callResult struct {
	status   int
	body     []byte
	duration time.Duration
}

// do executes one HTTP call, reports it as a request event named step, and
// returns the status and body. Transport errors are returned as StepErrors;
// a non-success status is NOT an error here, callers apply their own success
// criteria.
func (c *Client) do(ctx context.Context, step, method, url, contentType string, payload []byte, bearer string) (callResult, error) {
	actorID := core.ActorIDFromContext(ctx)
	start := time.Now()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return callResult{}, &StepError{Step: step, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	c.debug.LogRequest(actorID, step, req)

	resp, err := c.hc.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.debug.LogError(actorID, step, err.Error(), duration)
		c.report(core.Event{
			ActorID:   actorID,
			Timestamp: start,
			Step:      step,
			Kind:      core.KindRequest,
			Duration:  duration,
			Success:   false,
			Error:     err.Error(),
			BytesSent: int64(len(payload)),
		})
		return callResult{}, &StepError{Step: step, Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	_, _ = io.Copy(io.Discard, resp.Body)

	success := resp.StatusCode < 400
	errStr := ""
	if !success {
		errStr = resp.Status
	}

	debugBody := respBody
	if len(debugBody) > maxDebugBodySize {
		debugBody = debugBody[:maxDebugBodySize]
	}
	c.debug.LogResponse(actorID, step, resp, debugBody, duration)

	c.report(core.Event{
		ActorID:    actorID,
		Timestamp:  start,
		Step:       step,
		Kind:       core.KindRequest,
		Duration:   duration,
		Success:    success,
		Error:      errStr,
		StatusCode: resp.StatusCode,
		BytesSent:  int64(len(payload)),
		BytesRecv:  int64(len(respBody)),
	})

	return callResult{status: resp.StatusCode, body: respBody, duration: duration}, nil
}

func (c *Client) report(e core.Event) {
	if c.rep != nil {
		c.rep.Report(e)
	}
}
