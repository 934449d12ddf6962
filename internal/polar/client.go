// Package polar provides a REST client for the Polar API.
// Methods return normalized domain types; wire structs stay private to this package.
package polar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/h0rv/polardash/internal/idgen"
)

// DefaultBaseURL is the public Polar API.
const DefaultBaseURL = "https://api.polar.sh"

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	Retry      RetryPolicy
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is a Polar REST API client.
type Client struct {
	baseURL    string
	token      string
	retry      RetryPolicy
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client. Zero-valued options fall back to defaults.
func New(opts Options) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		retry:      opts.Retry,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.retry.Attempts == 0 {
		c.retry = DefaultRetry()
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// doJSON performs a request and decodes a JSON response into out (if non-nil).
// GET requests go through the retry policy; other methods are sent once.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
	}

	reqID, err := idgen.RequestID()
	if err != nil {
		return err
	}

	policy := c.retry
	if method != http.MethodGet {
		policy = NoRetry()
	}

	return policy.Do(ctx, func(attempt int) error {
		if attempt > 1 {
			c.logger.Warn("retrying request", "method", method, "path", path, "attempt", attempt, "request_id", reqID)
		}
		return c.send(ctx, method, path, reqID, payload, out)
	})
}

func (c *Client) send(ctx context.Context, method, path, reqID string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("polar request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", reqID,
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp, method, path)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w: %w", method, path, ErrMalformedResponse, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response, method, path string) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Method: method, Path: path}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	// FastAPI errors carry {"detail": "..."} or {"detail": [{"msg": "..."}]}.
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(data, &body) == nil && len(body.Detail) > 0 {
		var s string
		if json.Unmarshal(body.Detail, &s) == nil {
			apiErr.Detail = s
		} else {
			var items []struct {
				Msg string `json:"msg"`
			}
			if json.Unmarshal(body.Detail, &items) == nil && len(items) > 0 {
				msgs := make([]string, 0, len(items))
				for _, it := range items {
					msgs = append(msgs, it.Msg)
				}
				apiErr.Detail = strings.Join(msgs, "; ")
			}
		}
	}
	return apiErr
}
