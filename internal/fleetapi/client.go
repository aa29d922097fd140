// Package fleetapi is a typed client for the Fleet REST API. Each exported method
// issues exactly one HTTP call and returns either a decoded payload or an error;
// there is no caching and no retrying at this layer.
package fleetapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fleet-console/fleet-console/internal/metrics"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseSize = 16 << 20 // 16 MiB
	maxErrorMessage = 300

	apiPrefix = "/api/latest/fleet"
)

// ErrInvalidPayload marks a response body that does not have the expected shape.
var ErrInvalidPayload = errors.New("fleet api: invalid payload")

// Client talks to a single Fleet server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Limiter, when set, paces outgoing requests. Calls wait for a token and
	// fail with the context error when the wait is cut short.
	Limiter *rate.Limiter
}

// NewLimiter returns a limiter for rps requests per second, or nil when rps is
// not positive.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), max(1, int(math.Ceil(rps))))
}

// New creates a client that authenticates every request with the given API token.
func New(baseURL, token string, timeout time.Duration) (*Client, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("fleet api token is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return &Client{
		BaseURL: base,
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: &oauth2.Transport{Source: src, Base: http.DefaultTransport},
		},
	}, nil
}

// NewUnauthenticated creates a client for endpoints that do not take a token (login).
func NewUnauthenticated(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{BaseURL: base, HTTP: &http.Client{Timeout: timeout}}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	if base == "" {
		return "", errors.New("fleet base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse fleet base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("fleet base URL must be http or https, got %q", u.Scheme)
	}
	return base, nil
}

// APIError is a non-2xx response from the Fleet server.
type APIError struct {
	Operation  string
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("fleet api %s failed: %d %s: %s", e.Operation, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("fleet api %s failed: %d %s", e.Operation, e.StatusCode, http.StatusText(e.StatusCode))
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsStatus reports whether err is an APIError with one of the given statuses.
// Call sites use it to whitelist statuses that should render as an empty state.
func IsStatus(err error, codes ...int) bool {
	status := StatusOf(err)
	if status == 0 {
		return false
	}
	for _, code := range codes {
		if status == code {
			return true
		}
	}
	return false
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	schema string
}

func (c *Client) ensureClient() error {
	if c == nil || c.BaseURL == "" {
		return errors.New("fleet base URL is required")
	}
	if c.HTTP == nil {
		return errors.New("fleet http client is not configured")
	}
	return nil
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	if err := c.ensureClient(); err != nil {
		return err
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("fleet api %s: %w", r.op, err)
		}
	}

	endpoint := c.BaseURL + apiPrefix + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var reqBody io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("fleet api %s: encode request: %w", r.op, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "fleet-console")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	metrics.APIRequestDuration.WithLabelValues(r.op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(r.op, "error").Inc()
		return fmt.Errorf("fleet api %s: %w", r.op, err)
	}
	defer resp.Body.Close()
	metrics.APIRequestsTotal.WithLabelValues(r.op, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("fleet api %s: read response: %w", r.op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Operation:  r.op,
			Method:     r.method,
			Path:       r.path,
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(body),
			Body:       body,
		}
	}

	if out == nil {
		return nil
	}
	if r.schema != "" {
		if err := validatePayload(r.schema, body); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, r.op, err)
		}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, r.op, err)
	}
	return nil
}

func extractErrorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Errors  []struct {
			Name   string `json:"name"`
			Reason string `json:"reason"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.Errors) > 0 && strings.TrimSpace(payload.Errors[0].Reason) != "" {
			return truncate(strings.TrimSpace(payload.Errors[0].Reason))
		}
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return truncate(msg)
		}
	}

	msg := strings.TrimSpace(string(body))
	if strings.HasPrefix(msg, "<!DOCTYPE html") || strings.HasPrefix(msg, "<html") {
		return ""
	}
	return truncate(strings.Join(strings.Fields(msg), " "))
}

func truncate(msg string) string {
	if len(msg) > maxErrorMessage {
		return msg[:maxErrorMessage] + "..."
	}
	return msg
}

func teamQuery(teamID *uint) url.Values {
	q := url.Values{}
	if teamID != nil {
		q.Set("team_id", strconv.FormatUint(uint64(*teamID), 10))
	}
	return q
}

func idPath(format string, ids ...any) string {
	escaped := make([]any, 0, len(ids))
	for _, id := range ids {
		switch v := id.(type) {
		case string:
			escaped = append(escaped, url.PathEscape(v))
		default:
			escaped = append(escaped, v)
		}
	}
	return fmt.Sprintf(format, escaped...)
}
