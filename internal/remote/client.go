// ABOUTME: HTTP client for the remote schedule API.
// ABOUTME: Fetches schedules and week names with a bearer token from a TokenSource.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/workouts/internal/logging"
	"github.com/harperreed/workouts/internal/models"
)

// DefaultBaseURL is the API root used when none is configured.
const DefaultBaseURL = "http://localhost:3000/api"

const (
	defaultTimeout = 15 * time.Second

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 8 << 20
)

// TokenSource supplies the current bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the remote schedule API.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	timeout time.Duration
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. A nil client keeps
// the default. The caller's client is never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout. It applies to a copy of
// whichever http.Client the client ends up with.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger for request lifecycle events.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client rooted at baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logging.Default("remote"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

type schedulesEnvelope struct {
	Success bool               `json:"success"`
	Data    []*models.Schedule `json:"data"`
	Count   int                `json:"count"`
	Error   string             `json:"error,omitempty"`
}

// FetchSchedules returns every schedule the remote knows about.
func (c *Client) FetchSchedules(ctx context.Context) ([]*models.Schedule, error) {
	const op = "fetch schedules"

	var env schedulesEnvelope
	endpoint, err := c.get(ctx, op, &env, "schedules")
	if err != nil {
		return nil, err
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "server reported failure"
		}
		return nil, &NetworkError{Kind: KindRemote, Op: op, URL: endpoint, Err: errors.New(msg)}
	}

	schedules := make([]*models.Schedule, 0, len(env.Data))
	for _, s := range env.Data {
		if s == nil {
			continue
		}
		prepare(s)
		schedules = append(schedules, s)
	}
	c.logger.Info("schedules fetched", "count", len(schedules))
	return schedules, nil
}

// FetchSchedule returns the schedule for one week name.
func (c *Client) FetchSchedule(ctx context.Context, week string) (*models.Schedule, error) {
	const op = "fetch schedule"

	var s models.Schedule
	if _, err := c.get(ctx, op, &s, "workouts", url.PathEscape(week)); err != nil {
		return nil, err
	}
	prepare(&s)
	return &s, nil
}

// FetchWeekNames returns the names of every schedule on the remote.
func (c *Client) FetchWeekNames(ctx context.Context) ([]string, error) {
	const op = "fetch week names"

	var names []string
	if _, err := c.get(ctx, op, &names, "weekNames"); err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func prepare(s *models.Schedule) {
	s.Normalize()
	s.EnsureIDs()
}

// get performs an authenticated GET and decodes the JSON body into out.
// It returns the resolved endpoint for error reporting.
func (c *Client) get(ctx context.Context, op string, out any, segments ...string) (string, error) {
	reqID := uuid.NewString()[:8]
	start := time.Now()

	endpoint, err := c.endpoint(segments...)
	if err != nil {
		c.logger.Debug("request failed", "id", reqID, "op", op, "err", err)
		return c.baseURL, &NetworkError{Kind: KindInvalidURL, Op: op, URL: c.baseURL, Err: err}
	}
	c.logger.Debug("request started", "id", reqID, "op", op, "url", endpoint)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Debug("token unavailable", "id", reqID, "err", err)
		return endpoint, &NetworkError{Kind: KindAuth, Op: op, URL: endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return endpoint, &NetworkError{Kind: KindInvalidURL, Op: op, URL: endpoint, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "id", reqID, "err", err, "elapsed", time.Since(start))
		return endpoint, &NetworkError{Kind: KindTransport, Op: op, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return endpoint, &NetworkError{Kind: KindTransport, Op: op, URL: endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	if len(body) > maxBodyBytes {
		c.logger.Debug("response too large", "id", reqID, "limit", maxBodyBytes)
		return endpoint, &NetworkError{
			Kind:       KindTooLarge,
			Op:         op,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("response body exceeds %d bytes", maxBodyBytes),
		}
	}
	c.logger.Debug("response received", "id", reqID, "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return endpoint, &NetworkError{
			Kind:       KindHTTPStatus,
			Op:         op,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Err:        errors.New(snippet(body)),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Debug("decode failed", "id", reqID, "err", err)
		return endpoint, &NetworkError{Kind: KindDecode, Op: op, URL: endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debug("request done", "id", reqID, "elapsed", time.Since(start))
	return endpoint, nil
}

func (c *Client) endpoint(segments ...string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return "", errors.New("base URL must be http or https")
	}
	if base.Host == "" {
		return "", errors.New("base URL has no host")
	}
	return base.JoinPath(segments...).String(), nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		s = "empty response body"
	}
	return s
}
