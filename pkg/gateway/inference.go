package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/playwithllm/console/pkg/models"
)

// GenerateRequest is the body for a one-shot inference submission.
type GenerateRequest struct {
	Prompt   string            `json:"prompt"`
	Model    string            `json:"model,omitempty"`
	Messages []GenerateMessage `json:"messages,omitempty"`
	Image    string            `json:"image,omitempty"`
}

// GenerateMessage is one prior turn supplied as inference context.
type GenerateMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProgressFunc receives the full response buffer after each growth event.
// The buffer is monotonic by construction — each call carries a superset of
// the previous one, so no de-duplication is needed on this path.
type ProgressFunc func(buffer string)

// Generate submits an inference request and consumes the incrementally
// growing text response, reporting every growth through onProgress.
// Returns the complete response text.
func (c *Client) Generate(ctx context.Context, req GenerateRequest, onProgress ProgressFunc) (string, error) {
	return c.generate(ctx, "/api/v1/inference/generate", req, onProgress)
}

// GenerateLegacy is Generate against the legacy /api/generate path, kept
// for gateways that have not migrated.
func (c *Client) GenerateLegacy(ctx context.Context, req GenerateRequest, onProgress ProgressFunc) (string, error) {
	return c.generate(ctx, "/api/generate", req, onProgress)
}

func (c *Client) generate(ctx context.Context, path string, genReq GenerateRequest, onProgress ProgressFunc) (string, error) {
	data, err := json.Marshal(genReq)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// The header is omitted entirely when the server-default key is in use;
	// the two key sources are never sent together.
	if !c.useDefaultKey && c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", decodeError(resp)
	}

	// Append-only read of the growing body. Every read that yields bytes
	// republishes the whole buffer for re-rendering.
	var buf bytes.Buffer
	chunk := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if onProgress != nil {
				onProgress(buf.String())
			}
		}
		if readErr == io.EOF {
			return buf.String(), nil
		}
		if readErr != nil {
			return buf.String(), fmt.Errorf("read response stream: %w", readErr)
		}
	}
}

// SearchInference lists the account's inference history.
func (c *Client) SearchInference(ctx context.Context) ([]models.InferenceRequest, error) {
	var reqs []models.InferenceRequest
	if err := c.getJSON(ctx, "/api/v1/inference/search", &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// AvailableModels lists the models the gateway exposes.
func (c *Client) AvailableModels(ctx context.Context) ([]models.Model, error) {
	var ms []models.Model
	if err := c.getJSON(ctx, "/api/v1/models/available", &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// UsageSummary fetches the account-wide usage aggregates for the dashboards.
func (c *Client) UsageSummary(ctx context.Context) (*models.UsageSummary, error) {
	var summary models.UsageSummary
	if err := c.getJSON(ctx, "/api/v1/usage/summary", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
