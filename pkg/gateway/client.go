// Package gateway is a typed client for the Play with LLM backend REST
// surface. It wraps request/response calls only; realtime delivery lives in
// pkg/session. All durable state is server-owned — this client never caches
// anything beyond the cookie jar that carries the auth session.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/playwithllm/console/pkg/version"
)

// APIError is a structured non-2xx response from the gateway. Message is the
// server-supplied text when the body carried one, else a generic fallback.
// Reason is a machine-readable discriminator some auth failures carry
// (e.g. "email-not-verified").
type APIError struct {
	StatusCode int
	Message    string
	Reason     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway: %s (status %d)", e.Message, e.StatusCode)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// Client issues typed calls against the gateway. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	// useDefaultKey omits the x-api-key header on inference calls so the
	// server applies its default key. Never combined with apiKey.
	useDefaultKey bool
	apiKey        string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAPIKey sets the explicit per-request inference key.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithDefaultAPIKey makes inference calls rely on the server-default key.
// Takes precedence over WithAPIKey: the header is omitted entirely.
func WithDefaultAPIKey() Option {
	return func(c *Client) { c.useDefaultKey = true }
}

// NewClient creates a gateway client for the given base URL. The client
// carries a cookie jar so the auth session cookie set by login flows to
// subsequent calls.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// getJSON issues a GET and decodes the 2xx response body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.doJSON(req, out)
}

// postJSON issues a POST with a JSON body and decodes the 2xx response into
// out (out may be nil when the response body is irrelevant).
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	req.Header.Set("User-Agent", version.Full())
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError converts a non-2xx response into an *APIError, preferring the
// server-supplied message when the body decodes as one of the known shapes.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("request failed with status %d", resp.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Message      string `json:"message"`
		ErrorMessage string `json:"errorMessage"`
		Reason       string `json:"reason"`
	}
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Message != "":
			apiErr.Message = payload.Message
		case payload.ErrorMessage != "":
			apiErr.Message = payload.ErrorMessage
		}
		apiErr.Reason = payload.Reason
	}
	return apiErr
}
