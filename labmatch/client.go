package labmatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the LabMatch backend over HTTP/JSON and SSE.
type Client struct {
	baseURL    string
	httpClient *http.Client
	// streamClient has no overall timeout; streams stay open for the whole crawl.
	streamClient *http.Client
	logger       *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the client used for REST calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the REST request timeout. The HTTP client is copied so a
// shared client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithLogger sets the logger used for swallowed errors.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		streamClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateSession starts a crawl.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (SessionResponse, error) {
	var out SessionResponse
	body, err := json.Marshal(req)
	if err != nil {
		return out, fmt.Errorf("encode session request: %w", err)
	}
	err = c.doJSON(ctx, "create session", http.MethodPost, "/sessions", bytes.NewReader(body), "application/json", &out)
	return out, err
}

// GetSession fetches a session and its cards.
func (c *Client) GetSession(ctx context.Context, sessionID string) (SessionResponse, error) {
	var out SessionResponse
	err := c.doJSON(ctx, "get session", http.MethodGet, "/sessions/"+url.PathEscape(sessionID), nil, "", &out)
	return out, err
}

// CheckHealth requests the backend root. 503 means the backend is up but its
// database is not; anything else that is not 200 counts as down.
func (c *Client) CheckHealth(ctx context.Context) Health {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return HealthDown
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthDown
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	switch resp.StatusCode {
	case http.StatusOK:
		return HealthHealthy
	case http.StatusServiceUnavailable:
		return HealthSupabaseDown
	default:
		return HealthDown
	}
}

type swipeRequest struct {
	UserID   string   `json:"user_id"`
	CardID   string   `json:"card_id"`
	Decision Decision `json:"decision"`
}

// RecordSwipe reports a swipe decision. The backend route is optional;
// callers treat failures as telemetry loss only.
func (c *Client) RecordSwipe(ctx context.Context, userID, cardID string, decision Decision) error {
	body, err := json.Marshal(swipeRequest{UserID: userID, CardID: cardID, Decision: decision})
	if err != nil {
		return fmt.Errorf("encode swipe: %w", err)
	}
	return c.doJSON(ctx, "record swipe", http.MethodPost, "/swipes", bytes.NewReader(body), "application/json", nil)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &HTTPError{Op: op, StatusCode: resp.StatusCode, Status: statusText(resp)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ParseError{Op: op, Err: err}
	}
	return nil
}

func statusText(resp *http.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
