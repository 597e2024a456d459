// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama talks to a local Ollama runtime.
package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jeranaias/llmpad/internal/progress"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches any ClientError of the same Type, so errors.Is(err, ErrNotRunning)
// holds for every not-running failure regardless of cause.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	return ok && t.Type == e.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeModelNotFound
	ErrTypeConnection
	ErrTypeInvalidResponse
	ErrTypePullFailed
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning    = &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrModelNotFound = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
)

// IsNotRunning reports whether err means Ollama could not be reached.
func IsNotRunning(err error) bool { return errors.Is(err, ErrNotRunning) }

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsModelNotFound reports whether err means the model does not exist.
func IsModelNotFound(err error) bool { return errors.Is(err, ErrModelNotFound) }

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// DefaultBaseURL is the Ollama API root. The explicit IPv4 address avoids
// slow IPv6 fallbacks on some Windows setups.
const DefaultBaseURL = "http://127.0.0.1:11434"

// ClientConfig holds configuration options for the Ollama client.
type ClientConfig struct {
	// BaseURL is the Ollama API root, without /api or /v1.
	BaseURL string

	// Timeout for non-streaming requests (default: 30s).
	Timeout time.Duration

	// UserAgent sent with every request.
	UserAgent string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   DefaultBaseURL,
		Timeout:   30 * time.Second,
		UserAgent: "llmpad",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Ollama HTTP API. It is safe for
// concurrent use.
type Client struct {
	config *ClientConfig
	http   *resty.Client
}

// NewClient creates a new Ollama client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new Ollama client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "llmpad"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		config: &cfg,
		http: resty.New().
			SetHeader("User-Agent", cfg.UserAgent).
			SetHeader("Accept", "application/json"),
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.config.BaseURL }

// ForAPI returns a client for the Ollama instance behind an OpenAI-style
// base URL such as "http://localhost:11434/v1". The HTTP transport is shared.
func (c *Client) ForAPI(apiURL string) *Client {
	cfg := *c.config
	cfg.BaseURL = BaseURLFromAPI(apiURL)
	return &Client{config: &cfg, http: c.http}
}

// BaseURLFromAPI strips a trailing "/v1" and slashes from an OpenAI-style URL.
func BaseURLFromAPI(apiURL string) string {
	u := strings.TrimRight(strings.TrimSpace(apiURL), "/")
	u = strings.TrimSuffix(u, "/v1")
	return strings.TrimRight(u, "/")
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

// withTimeout bounds a non-streaming call by the configured timeout.
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.config.Timeout)
}

// transportError maps a failed round trip to a ClientError.
func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &ClientError{Type: ErrTypeNotRunning, Message: ErrNotRunning.Message, Cause: err}
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that Ollama is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.request(ctx).Get(c.config.BaseURL)
	if err != nil {
		return transportError(ctx, err)
	}
	if resp.IsError() {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from Ollama: " + resp.Status(),
		}
	}
	return nil
}

// =============================================================================
// MODEL OPERATIONS
// =============================================================================

// ListModels retrieves all installed models.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var result ListModelsResponse
	resp, err := c.request(ctx).
		SetResult(&result).
		ForceContentType("application/json").
		Get(c.config.BaseURL + "/api/tags")
	if err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
		}
		return nil, transportError(ctx, err)
	}
	if resp.IsError() {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: fmt.Sprintf("failed to list models: %s: %s", resp.Status(), strings.TrimSpace(resp.String())),
		}
	}
	return result.Models, nil
}

// ModelNames returns the names of all installed models.
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}
	return names, nil
}

// HasModel reports whether name is installed (exact match).
func (c *Client) HasModel(ctx context.Context, name string) (bool, error) {
	names, err := c.ModelNames(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// =============================================================================
// PULL
// =============================================================================

// Pull downloads a model through POST /api/pull, calling onStatus with one
// human-readable status line per progress record. The call is not bounded by
// the client timeout; cancel ctx to abort.
func (c *Client) Pull(ctx context.Context, name string, onStatus func(line string)) error {
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(PullRequest{Model: name, Stream: true}).
		SetDoNotParseResponse(true).
		Post(c.config.BaseURL + "/api/pull")
	if err != nil {
		return transportError(ctx, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(body).Decode(&apiErr)
		if resp.StatusCode() == 404 {
			return &ClientError{Type: ErrTypeModelNotFound, Message: ErrModelNotFound.Message + ": " + name}
		}
		msg := apiErr.Error
		if msg == "" {
			msg = resp.Status()
		}
		return &ClientError{Type: ErrTypePullFailed, Message: "pull failed: " + msg}
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	success := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec PullResponse
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode pull progress", Cause: err}
		}
		if rec.Error != "" {
			return &ClientError{Type: ErrTypePullFailed, Message: "pull failed: " + rec.Error}
		}
		if rec.Status == "success" {
			success = true
		}
		if onStatus != nil {
			onStatus(rec.StatusLine())
		}
	}
	if err := scanner.Err(); err != nil {
		return transportError(ctx, err)
	}
	if !success {
		return &ClientError{Type: ErrTypePullFailed, Message: "pull ended without success status"}
	}
	return nil
}

// StatusLine renders a progress record the way the ollama CLI prints it,
// with a size pair that progress.Parse understands.
func (r PullResponse) StatusLine() string {
	if r.Total > 0 {
		return fmt.Sprintf("%s: %s", r.Status, progress.Format(r.Completed, r.Total))
	}
	return r.Status
}
