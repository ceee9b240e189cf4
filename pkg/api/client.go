// Package api is the HTTP client for the travel-assistant backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	tderrors "github.com/odvcencio/tripdesk/pkg/errors"
	"github.com/odvcencio/tripdesk/pkg/logging"
	"github.com/odvcencio/tripdesk/pkg/telemetry"
)

// HeaderRequestID correlates a request across client and backend logs.
const HeaderRequestID = "X-Request-ID"

const (
	maxResponseBytes  int64 = 4 << 20
	maxErrorBodyBytes int64 = 4 << 10
)

// Client talks to the backend. It never retries; every call is one attempt.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logging.Logger
	requestID  func() string
	closers    []io.Closer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the HTTP client timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRateLimit caps outgoing requests at rps per second. rps <= 0 leaves the client unlimited.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger attaches a structured logger for network events.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithNetworkLog wraps the transport so every exchange is appended to logPath.
func WithNetworkLog(logPath string) Option {
	return func(c *Client) {
		lt := NewLoggingTransport(c.httpClient.Transport, logPath)
		c.httpClient.Transport = lt
		c.closers = append(c.closers, lt)
	}
}

// WithRequestIDFunc overrides request id generation.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}

// NewClient creates a client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Transport: http.DefaultTransport},
		requestID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases the network log, if any.
func (c *Client) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

// PlanTrip posts a trip request. A status "error" reply is returned as a
// decoded response, not as an error.
func (c *Client) PlanTrip(ctx context.Context, req TripRequest) (*TripResponse, error) {
	var out TripResponse
	if err := c.do(ctx, "api.plan_trip", http.MethodPost, PathPlanTrip, req, &out); err != nil {
		return nil, err
	}
	if !out.Succeeded() {
		metricBusinessFailures.WithLabelValues(PathPlanTrip).Inc()
	}
	return &out, nil
}

// Chat posts one utterance for the given session.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	sessionAttr := trace.WithAttributes(telemetry.AttrSessionID.String(req.SessionID))
	if err := c.do(ctx, "api.chat", http.MethodPost, PathChat, req, &out, sessionAttr); err != nil {
		return nil, err
	}
	out.Normalize()
	if !out.Succeeded() {
		metricBusinessFailures.WithLabelValues(PathChat).Inc()
	}
	return &out, nil
}

// Health probes the backend.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.do(ctx, "api.health", http.MethodGet, PathHealth, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) newRequest(ctx context.Context, method, p string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+p, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, c.requestID())
	return req, nil
}

func (c *Client) do(ctx context.Context, spanName, method, path string, in, out any, spanOpts ...trace.SpanStartOption) (err error) {
	ctx, span := telemetry.StartSpan(ctx, spanName, spanOpts...)
	defer span.End()

	start := time.Now()
	outcome := outcomeOK
	status := 0
	requestID := ""
	defer func() {
		metricRequests.WithLabelValues(path, outcome).Inc()
		metricLatency.WithLabelValues(path).Observe(time.Since(start).Seconds())
		telemetry.SetAttributes(ctx,
			telemetry.AttrEndpoint.String(path),
			telemetry.AttrOutcome.String(outcome),
			telemetry.AttrHTTPStatus.Int(status),
		)
		telemetry.RecordError(ctx, err)

		details := map[string]any{
			"endpoint":    path,
			"outcome":     outcome,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		level := logging.LevelDebug
		msg := "request completed"
		if err != nil {
			level = logging.LevelWarn
			msg = err.Error()
		}
		_ = c.logger.Log(logging.Event{
			Level:     level,
			Category:  logging.CategoryNetwork,
			EventType: spanName,
			RequestID: requestID,
			Message:   msg,
			Details:   details,
		})
	}()

	if c.limiter != nil {
		if waitErr := c.limiter.Wait(ctx); waitErr != nil {
			outcome = outcomeRateLimited
			return tderrors.Wrap(waitErr, tderrors.ErrCodeTransport, "rate limiter").
				WithContext("endpoint", path)
		}
	}

	var body io.Reader
	if in != nil {
		payload, marshalErr := json.Marshal(in)
		if marshalErr != nil {
			outcome = outcomeTransport
			return tderrors.Wrap(marshalErr, tderrors.ErrCodeInternal, "encoding request").
				WithContext("endpoint", path)
		}
		body = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		outcome = outcomeTransport
		return tderrors.Wrap(err, tderrors.ErrCodeTransport, "building request").
			WithContext("endpoint", path)
	}
	requestID = req.Header.Get(HeaderRequestID)
	telemetry.SetAttributes(ctx, telemetry.AttrRequestID.String(requestID))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = outcomeTransport
		return tderrors.Wrap(err, tderrors.ErrCodeTransport, "request failed").
			WithContext("endpoint", path)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = outcomeHTTPStatus
		e := tderrors.New(tderrors.ErrCodeTransport, fmt.Sprintf("unexpected status %s", resp.Status)).
			WithContext("endpoint", path).
			WithContext("status", resp.StatusCode)
		if snippet := strings.TrimSpace(string(readBodyLimited(resp.Body, maxErrorBodyBytes))); snippet != "" {
			e.WithContext("body", snippet)
		}
		return e
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		outcome = outcomeTransport
		return tderrors.Wrap(err, tderrors.ErrCodeTransport, "reading response").
			WithContext("endpoint", path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		outcome = outcomeDecode
		return tderrors.Wrap(err, tderrors.ErrCodeDecode, "response is not JSON").
			WithContext("endpoint", path)
	}
	return nil
}

func readBodyLimited(r io.Reader, maxBytes int64) []byte {
	if r == nil || maxBytes <= 0 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(r, maxBytes))
	return data
}
