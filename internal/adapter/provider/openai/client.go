// Package openai is a thin HTTP client for the transcription and chat
// completion endpoints used by the enrichment pipeline.
package openai

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
	"unicode/utf8"

	"github.com/heartmarshall/matterdesk-backend/internal/config"
)

// ErrNotConfigured is returned when a call is made without an API key.
var ErrNotConfigured = errors.New("openai: api key not configured")

// maxErrorSnippet bounds, in characters, the raw body quoted in an APIError
// when the body is not a structured error.
const maxErrorSnippet = 200

// APIError is a non-success response from the API.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// Retryable reports whether the request may succeed if repeated.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client calls the OpenAI-compatible API at cfg.BaseURL.
type Client struct {
	cfg        config.AIConfig
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a client. A client without an API key is valid; every
// call on it fails with ErrNotConfigured.
func NewClient(cfg config.AIConfig, logger *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "openai"),
	}
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool { return c.cfg.Configured() }

// apiErrorBody is the error envelope returned by the API.
type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// newRequestFunc builds a fresh request for every attempt so the body can be
// replayed.
type newRequestFunc func(ctx context.Context) (*http.Request, error)

// do executes the request with retries and returns the response body of the
// first successful attempt.
func (c *Client) do(ctx context.Context, op string, newReq newRequestFunc) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * c.cfg.RetryBackoff
			c.log.WarnContext(ctx, "retrying request",
				slog.String("op", op),
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait),
				slog.String("error", lastErr.Error()))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, err := c.attempt(ctx, op, newReq)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, op string, newReq newRequestFunc) ([]byte, error) {
	req, err := newReq(ctx)
	if err != nil {
		return nil, fmt.Errorf("openai %s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai %s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body),
		}
	}
	return body, nil
}

// errorMessage extracts error.message from body, falling back to a truncated
// raw snippet, then to the status text.
func errorMessage(status int, body []byte) string {
	var env apiErrorBody
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Error.Message != "" {
			return env.Error.Message
		}
		return http.StatusText(status)
	}
	snippet := strings.TrimSpace(truncate(strings.ToValidUTF8(string(body), "\uFFFD"), maxErrorSnippet))
	if snippet == "" {
		return http.StatusText(status)
	}
	return snippet
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func (c *Client) jsonRequest(path string, payload any) (newRequestFunc, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	url := c.baseURL + path
	return func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, nil
}
