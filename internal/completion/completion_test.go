// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/llmpad/internal/model"
)

type capturedRequest struct {
	Path          string
	Authorization string
	Body          struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
}

func fakeEndpoint(t *testing.T, status int, reply string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Path = r.URL.Path
		got.Authorization = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got.Body))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func history() []model.Message {
	return []model.Message{
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Content: "hello"},
		{Role: model.RoleUser, Content: "how are you?"},
	}
}

func TestCompleteFirstChoice(t *testing.T) {
	srv, got := fakeEndpoint(t, 200, `{"id":"x","object":"chat.completion","created":1,"model":"llama3.2",
		"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"fine, thanks"}},
		           {"index":1,"finish_reason":"stop","message":{"role":"assistant","content":"ignored"}}]}`)

	c := &Client{Timeout: 5 * time.Second}
	reply, err := c.Complete(context.Background(), Request{
		APIURL:  srv.URL + "/v1/",
		APIKey:  "sk-test",
		Model:   "llama3.2",
		History: history(),
	})
	require.NoError(t, err)
	assert.Equal(t, "fine, thanks", reply)

	assert.Equal(t, "/v1/chat/completions", got.Path)
	assert.Equal(t, "Bearer sk-test", got.Authorization)
	assert.Equal(t, "llama3.2", got.Body.Model)
	require.Len(t, got.Body.Messages, 3)
	assert.Equal(t, "user", got.Body.Messages[0].Role)
	assert.Equal(t, "assistant", got.Body.Messages[1].Role)
	assert.Equal(t, "how are you?", got.Body.Messages[2].Content)
}

func TestCompleteNoKeyNoAuthorization(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")
	srv, got := fakeEndpoint(t, 200, `{"id":"x","object":"chat.completion","created":1,"model":"m",
		"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"ok"}}]}`)

	_, err := New(5*time.Second).Complete(context.Background(), Request{
		APIURL:  srv.URL + "/v1",
		Model:   "m",
		History: history(),
	})
	require.NoError(t, err)
	assert.Empty(t, got.Authorization)
}

func TestCompleteNoChoices(t *testing.T) {
	srv, _ := fakeEndpoint(t, 200, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)

	reply, err := New(5*time.Second).Complete(context.Background(), Request{
		APIURL: srv.URL + "/v1", Model: "m", History: history(),
	})
	require.NoError(t, err)
	assert.Equal(t, NoResponse, reply)
}

func TestCompleteAPIError(t *testing.T) {
	srv, _ := fakeEndpoint(t, 404, `{"error":{"message":"model \"nope\" not found","type":"api_error"}}`)

	_, err := New(5*time.Second).Complete(context.Background(), Request{
		APIURL: srv.URL + "/v1", Model: "nope", History: history(),
	})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "not found")
}

func TestCompleteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(2*time.Second).Complete(context.Background(), Request{
		APIURL: url + "/v1", Model: "m", History: history(),
	})
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestCompleteEmptyHistory(t *testing.T) {
	_, err := New(0).Complete(context.Background(), Request{APIURL: "http://x/v1", Model: "m"})
	assert.ErrorIs(t, err, ErrNoMessages)
}
