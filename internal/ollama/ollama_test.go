// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURLFromAPI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:11434/v1", "http://localhost:11434"},
		{"http://localhost:11434/v1/", "http://localhost:11434"},
		{"http://localhost:11434/", "http://localhost:11434"},
		{"http://localhost:11434", "http://localhost:11434"},
		{"  http://gpu-box:11434/v1  ", "http://gpu-box:11434"},
	}
	for _, tt := range tests {
		if got := BaseURLFromAPI(tt.in); got != tt.want {
			t.Errorf("BaseURLFromAPI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewClientWithConfigDefaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{})
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), DefaultBaseURL)
	}
	if c.config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", c.config.Timeout)
	}

	c = NewClientWithConfig(nil)
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("nil config BaseURL() = %q", c.BaseURL())
	}
}

func TestForAPISharesTransport(t *testing.T) {
	c := NewClient()
	d := c.ForAPI("http://other:11434/v1")
	assert.Equal(t, "http://other:11434", d.BaseURL())
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Same(t, c.http, d.http)
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		fmt.Fprint(w, `{"models":[{"name":"llama3.2:latest","size":2019393189},{"name":"mistral:7b"}]}`)
	}))
	defer srv.Close()

	c := NewClient().ForAPI(srv.URL + "/v1")
	names, err := c.ModelNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2:latest", "mistral:7b"}, names)

	ok, err := c.HasModel(context.Background(), "mistral:7b")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.HasModel(context.Background(), "mistral")
	require.NoError(t, err)
	assert.False(t, ok, "HasModel must match exactly")
}

func TestListModelsIgnoresContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType []string
	}{
		{"no header", nil},
		{"text/plain", []string{"text/plain; charset=utf-8"}},
		{"json", []string{"application/json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// A nil entry stops net/http from sniffing a type.
				w.Header()["Content-Type"] = tt.contentType
				fmt.Fprint(w, `{"models":[{"name":"llama3.2:latest"}]}`)
			}))
			defer srv.Close()

			names, err := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL}).ModelNames(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []string{"llama3.2:latest"}, names)
		})
	}
}

func TestListModelsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>not ollama</html>`)
	}))
	defer srv.Close()

	_, err := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL}).ListModels(context.Background())
	require.Error(t, err)
}

func TestListModelsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL}).ListModels(context.Background())
	require.Error(t, err)
	var ce *ClientError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrTypeInvalidResponse, ce.Type)
	assert.Contains(t, err.Error(), "boom")
}

func TestNotRunning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: url, Timeout: 2 * time.Second})
	err := c.CheckRunning(context.Background())
	assert.True(t, IsNotRunning(err), "got %v", err)

	_, err = c.ListModels(context.Background())
	assert.True(t, IsNotRunning(err), "got %v", err)
	assert.False(t, IsTimeout(err))
}

func TestCheckRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Ollama is running")
	}))
	defer srv.Close()

	assert.NoError(t, NewClientWithConfig(&ClientConfig{BaseURL: srv.URL}).CheckRunning(context.Background()))
}

func TestPullStreamsStatusLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/pull", r.URL.Path)
		var req PullRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2", req.Model)
		assert.True(t, req.Stream)

		fmt.Fprintln(w, `{"status":"pulling manifest"}`)
		fmt.Fprintln(w, `{"status":"pulling dde5aa3fc5ff","digest":"sha256:dde5","total":2097152,"completed":1048576}`)
		fmt.Fprintln(w, `{"status":"success"}`)
	}))
	defer srv.Close()

	var lines []string
	err := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL}).Pull(context.Background(), "llama3.2", func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"pulling manifest",
		"pulling dde5aa3fc5ff: 1.0 MB / 2.0 MB",
		"success",
	}, lines)
}

func TestPullErrorRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"status":"pulling manifest"}`)
		fmt.Fprintln(w, `{"error":"pull model manifest: file does not exist"}`)
	}))
	defer srv.Close()

	err := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL}).Pull(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file does not exist")
}

func TestPullNotFoundStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"model not found"}`)
	}))
	defer srv.Close()

	err := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL}).Pull(context.Background(), "nope", nil)
	assert.True(t, IsModelNotFound(err), "got %v", err)
}

func TestClientErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &ClientError{Type: ErrTypeTimeout, Message: "slow", Cause: context.DeadlineExceeded})
	assert.True(t, IsTimeout(err))
	assert.False(t, IsNotRunning(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScanStatusLines(t *testing.T) {
	input := "pulling manifest\rpulling 1 MB/2 MB\rpulling 2 MB/2 MB\n\nsuccess"
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Split(ScanStatusLines)

	var got []string
	for scanner.Scan() {
		if s := scanner.Text(); s != "" {
			got = append(got, s)
		}
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"pulling manifest", "pulling 1 MB/2 MB", "pulling 2 MB/2 MB", "success"}, got)
}

func TestLastLinesKeepsTail(t *testing.T) {
	var l lastLines
	for i := 0; i < 20; i++ {
		l.add(fmt.Sprintf("line %d", i))
	}
	assert.Len(t, l.lines, maxTailLines)
	assert.True(t, strings.HasSuffix(l.String(), "line 19"))
}

func TestSafeFileName(t *testing.T) {
	assert.Equal(t, "user_model_7b", safeFileName("user/model:7b"))
}

// fakeOllama writes a shell script standing in for the ollama binary.
func fakeOllama(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ollama")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

func TestRunnerPull(t *testing.T) {
	bin := fakeOllama(t, `printf 'pulling manifest\r'
printf '\033[2Kpulling 1 MB/2 MB\r'
printf 'pulling 2 MB/2 MB\n' 1>&2
printf 'success\n'
`)
	var lines []string
	err := NewRunner(bin).Pull(context.Background(), "llama3.2", func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"pulling manifest", "pulling 1 MB/2 MB", "pulling 2 MB/2 MB", "success"}, lines)
}

func TestRunnerPullFailure(t *testing.T) {
	bin := fakeOllama(t, `echo "Error: pull model manifest: file does not exist" 1>&2
exit 1
`)
	err := NewRunner(bin).Pull(context.Background(), "nope", nil)
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr), "got %v", err)
	assert.Contains(t, cmdErr.Output, "file does not exist")
}

func TestRunnerCreate(t *testing.T) {
	out := filepath.Join(t.TempDir(), "args")
	bin := fakeOllama(t, fmt.Sprintf(`echo "$@" > %q
cat "$4" >> %q
`, out, out))

	err := NewRunner(bin).Create(context.Background(), "coder", "FROM llama3.2\nSYSTEM hi\n")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	got := string(data)
	assert.Contains(t, got, "create coder -f ")
	assert.Contains(t, got, "coder.Modelfile")
	assert.Contains(t, got, "FROM llama3.2")

	// The temporary Modelfile is removed afterwards.
	firstLine := strings.SplitN(got, "\n", 2)[0]
	path := strings.Fields(firstLine)[3]
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunnerCreateFailure(t *testing.T) {
	bin := fakeOllama(t, `echo "out text"
echo "Error: invalid model name" 1>&2
exit 1
`)
	err := NewRunner(bin).Create(context.Background(), "Bad Name", "FROM x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid model name")
	assert.Contains(t, err.Error(), "out text")
}
