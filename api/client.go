// Package api is the REST client for the analytics service.
//
// Every response uses the same JSON envelope: {"code": 0, "data": ...}
// on success, a non-zero code plus message on failure. Failures are
// returned as *types.APIError so callers can branch on well-known codes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/powerdrillai/powerdrill-flow-sub000/iox"
	"github.com/powerdrillai/powerdrill-flow-sub000/log"
	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://ai.data.cloud/api/v2/team"

// DefaultTimeout is the per-request timeout for non-streaming calls.
// Streaming requests use no client timeout; they end with the stream.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response body is read back for
// diagnostics.
const maxErrorBody = 64 * 1024

// Config configures a Client.
type Config struct {
	// BaseURL is the API root (default DefaultBaseURL).
	BaseURL string
	// APIKey is the team API key (required).
	APIKey string
	// UserID identifies the acting user within the team (required).
	UserID string
	// Timeout is the per-request timeout for non-streaming calls.
	Timeout time.Duration
	// Logger receives request-level diagnostics (default no-op).
	Logger *log.Logger
}

// Client talks to the analytics REST API.
// Safe for concurrent use.
type Client struct {
	baseURL   string
	apiKey    string
	userID    string
	logger    *log.Logger
	client    *http.Client
	streaming *http.Client
}

// NewClient creates a client from the given config.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api: API key is required")
	}
	if cfg.UserID == "" {
		return nil, errors.New("api: user id is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Nop()
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		userID:    cfg.UserID,
		logger:    logger,
		client:    &http.Client{Timeout: cfg.Timeout},
		streaming: &http.Client{},
	}, nil
}

// UserID returns the acting user id the client was configured with.
func (c *Client) UserID() string { return c.userID }

// envelope is the wire shape wrapping every REST response.
type envelope struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"msg"`
}

// newRequest builds a request with auth headers and the user id query
// parameter applied.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("user_id", c.userID)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query.Encode(), body)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set("x-pd-api-key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do performs one JSON round trip. in is marshaled as the request body
// when non-nil; the envelope's data is unmarshaled into out when out is
// non-nil. Envelope codes other than zero come back as *types.APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer iox.DrainClose(resp.Body)

	c.logger.Debug("api request", map[string]any{
		"method":  method,
		"path":    path,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).String(),
	})

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read %s %s response: %w", method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &types.APIError{
				Status:  resp.StatusCode,
				Message: strings.TrimSpace(string(raw)),
			}
		}
		return fmt.Errorf("api: decode %s %s response: %w", method, path, err)
	}
	if env.Code != 0 {
		return &types.APIError{
			Code:    env.Code,
			Message: env.Message,
			Status:  resp.StatusCode,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &types.APIError{
			Status:  resp.StatusCode,
			Message: env.Message,
		}
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("api: decode %s %s data: %w", method, path, err)
		}
	}
	return nil
}

// decodeError extracts an API error from a failed streaming response.
func decodeError(status int, body io.Reader) error {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return &types.APIError{Status: status}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && (env.Code != 0 || env.Message != "") {
		return &types.APIError{Code: env.Code, Message: env.Message, Status: status}
	}
	return &types.APIError{Status: status, Message: strings.TrimSpace(string(raw))}
}

// pagination is the common list-response wrapper.
type pagination[T any] struct {
	Count      int `json:"count"`
	TotalCount int `json:"total_count"`
	PageNumber int `json:"page_number"`
	PageSize   int `json:"page_size"`
	Records    []T `json:"records"`
}

// collectPages repeatedly fetches list pages until the server runs out of
// records.
func collectPages[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	const pageSize = 100

	var all []T
	for page := 1; ; page++ {
		q := url.Values{}
		for k, vs := range query {
			q[k] = vs
		}
		q.Set("page_number", fmt.Sprint(page))
		q.Set("page_size", fmt.Sprint(pageSize))

		var pg pagination[T]
		if err := c.do(ctx, http.MethodGet, path, q, nil, &pg); err != nil {
			return nil, err
		}
		all = append(all, pg.Records...)
		if len(pg.Records) < pageSize || len(all) >= pg.TotalCount {
			return all, nil
		}
	}
}
