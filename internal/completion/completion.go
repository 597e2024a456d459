// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package completion sends chat turns to an OpenAI-compatible
// /chat/completions endpoint such as Ollama's /v1 API.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/jeranaias/llmpad/internal/model"
)

// NoResponse is the reply used when the endpoint returns no choices.
const NoResponse = "No response"

// DefaultTimeout bounds a single completion round trip.
const DefaultTimeout = 5 * time.Minute

// =============================================================================
// ERRORS
// =============================================================================

// APIError is returned when the endpoint answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("API returned error %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("API returned error %d: %s", e.StatusCode, body)
}

func (e *APIError) Unwrap() error { return e.Cause }

// ErrNoMessages is returned when Complete is called with an empty history.
var ErrNoMessages = errors.New("no messages to send")

// =============================================================================
// CLIENT
// =============================================================================

// Request is one completion call.
type Request struct {
	APIURL  string
	APIKey  string
	Model   string
	History []model.Message
}

// Client performs completion calls. The zero value is usable.
type Client struct {
	// HTTPClient overrides the transport (tests, proxies).
	HTTPClient *http.Client

	// Timeout bounds each call; zero means DefaultTimeout.
	Timeout time.Duration
}

// New creates a client with the given per-call timeout.
func New(timeout time.Duration) *Client {
	return &Client{Timeout: timeout}
}

func (c *Client) options(req Request) []option.RequestOption {
	opts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(req.APIURL, "/") + "/"),
		option.WithMaxRetries(0),
	}
	// Local servers need no key; never forward one picked up from the environment.
	if req.APIKey != "" {
		opts = append(opts, option.WithAPIKey(req.APIKey))
	} else {
		opts = append(opts, option.WithHeaderDel("Authorization"))
	}
	if c.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(c.HTTPClient))
	}
	return opts
}

// Complete sends the history and returns the content of the first choice,
// or NoResponse when the endpoint returns none.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if len(req.History) == 0 {
		return "", ErrNoMessages
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := openai.NewClient(c.options(req)...)
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: ToParams(req.History),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &APIError{StatusCode: apiErr.StatusCode, Body: apiErrorBody(apiErr), Cause: err}
		}
		return "", fmt.Errorf("request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return NoResponse, nil
	}
	return resp.Choices[0].Message.Content, nil
}

// ToParams converts stored messages to request messages, preserving order.
func ToParams(history []model.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case model.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func apiErrorBody(e *openai.Error) string {
	if e.Message != "" {
		return e.Message
	}
	return e.RawJSON()
}
