// Package client talks to the voting API and holds the client-side state
// that drives the voting form and the results view.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/langvote/internal/domain/model"
	"github.com/okian/langvote/internal/domain/types"
)

// DefaultBaseURL points at a locally running server.
const DefaultBaseURL = "http://localhost:9080/api"

const defaultTimeout = 10 * time.Second

// APIError is returned for non-2xx responses and unreadable bodies.
type APIError struct {
	Message string
	Status  int
	Details string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client calls the submissions and results endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a client for baseURL, e.g. "http://localhost:9080/api".
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// SubmitVote posts a vote.
func (c *Client) SubmitVote(ctx context.Context, in model.SubmissionInput) (types.SubmitResponse, error) {
	var out types.SubmitResponse
	err := c.do(ctx, http.MethodPost, "/submissions", in, &out)
	return out, err
}

// GetResults fetches the raw tally and submissions.
func (c *Client) GetResults(ctx context.Context) (types.ResultsResponse, error) {
	var out types.ResultsResponse
	if err := c.do(ctx, http.MethodGet, "/results", nil, &out); err != nil {
		return types.ResultsResponse{}, err
	}
	if out.LanguageCounts == nil {
		out.LanguageCounts = map[string]int{}
	}
	if out.AllSubmissions == nil {
		out.AllSubmissions = []model.Submission{}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Message: "Failed to parse response JSON", Status: resp.StatusCode}
	}
	return nil
}

// responseError prefers the body's error field, then its message field,
// then the status line.
func responseError(resp *http.Response, raw []byte) *APIError {
	apiErr := &APIError{
		Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		Status:  resp.StatusCode,
	}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Details string `json:"details"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return apiErr
	}
	switch {
	case body.Error != "":
		apiErr.Message = body.Error
	case body.Message != "":
		apiErr.Message = body.Message
	}
	apiErr.Details = body.Details
	return apiErr
}
