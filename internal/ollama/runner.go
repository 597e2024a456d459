// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama talks to a local Ollama runtime.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// =============================================================================
// COMMAND ERRORS
// =============================================================================

// CommandError is returned when an ollama subcommand exits unsuccessfully.
// Output holds the combined stderr and stdout text.
type CommandError struct {
	Command string
	Output  string
	Cause   error
}

func (e *CommandError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" && e.Cause != nil {
		out = e.Cause.Error()
	}
	return fmt.Sprintf("ollama %s failed: %s", e.Command, out)
}

func (e *CommandError) Unwrap() error {
	return e.Cause
}

// ErrBinaryNotFound is returned when no ollama executable can be located.
var ErrBinaryNotFound = errors.New("ollama executable not found; install it from https://ollama.com")

// =============================================================================
// RUNNER
// =============================================================================

// Runner drives the ollama command line tool.
type Runner struct {
	// Binary is the executable to run. Empty means FindBinary.
	Binary string
}

// NewRunner creates a runner for the given executable ("" to search PATH).
func NewRunner(binary string) *Runner {
	return &Runner{Binary: binary}
}

func (r *Runner) binary() (string, error) {
	if r.Binary != "" {
		return r.Binary, nil
	}
	return FindBinary()
}

func (r *Runner) command(ctx context.Context, args ...string) (*exec.Cmd, error) {
	bin, err := r.binary()
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.SysProcAttr = childAttrs()
	return cmd, nil
}

// Pull runs `ollama pull name`, delivering every non-empty status line from
// stdout and stderr to onLine. Lines are split on both '\n' and '\r' since
// the CLI redraws its progress bar in place. onLine is never called
// concurrently.
func (r *Runner) Pull(ctx context.Context, name string, onLine func(line string)) error {
	cmd, err := r.command(ctx, "pull", name)
	if err != nil {
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	var (
		mu   sync.Mutex
		tail lastLines
		wg   sync.WaitGroup
	)
	emit := func(line string) {
		mu.Lock()
		defer mu.Unlock()
		tail.add(line)
		if onLine != nil {
			onLine(line)
		}
	}

	if err := cmd.Start(); err != nil {
		return &CommandError{Command: "pull", Cause: err}
	}
	wg.Add(2)
	go func() { defer wg.Done(); scanStatus(stdout, emit) }()
	go func() { defer wg.Done(); scanStatus(stderr, emit) }()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &CommandError{Command: "pull", Output: tail.String(), Cause: err}
	}
	return nil
}

// Create writes content to a temporary "<name>.Modelfile" and runs
// `ollama create name -f <file>`. The temporary file is always removed.
func (r *Runner) Create(ctx context.Context, name, content string) error {
	dir, err := os.MkdirTemp("", "llmpad-modelfile-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, safeFileName(name)+".Modelfile")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("write modelfile: %w", err)
	}

	cmd, err := r.command(ctx, "create", name, "-f", path)
	if err != nil {
		return err
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &CommandError{
			Command: "create",
			Output:  ansi.Strip(stderr.String() + stdout.String()),
			Cause:   err,
		}
	}
	return nil
}

// safeFileName keeps model names like "user/name:tag" usable as file names.
func safeFileName(name string) string {
	return strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(name)
}

// =============================================================================
// LINE SPLITTING
// =============================================================================

// ScanStatusLines is a bufio.SplitFunc that splits on '\n' or '\r'.
// Empty tokens are returned for consecutive separators; callers skip them.
func ScanStatusLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func scanStatus(r io.Reader, emit func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	scanner.Split(ScanStatusLines)
	for scanner.Scan() {
		line := strings.TrimSpace(ansi.Strip(scanner.Text()))
		if line != "" {
			emit(line)
		}
	}
	// Drain so the child never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
}

// lastLines keeps the tail of a command's output for error messages.
type lastLines struct {
	lines []string
}

const maxTailLines = 8

func (l *lastLines) add(line string) {
	l.lines = append(l.lines, line)
	if len(l.lines) > maxTailLines {
		l.lines = l.lines[len(l.lines)-maxTailLines:]
	}
}

func (l *lastLines) String() string {
	return strings.Join(l.lines, "\n")
}

// =============================================================================
// SERVER LIFECYCLE
// =============================================================================

// FindBinary locates the ollama executable on PATH or in the usual install
// locations for the current platform.
func FindBinary() (string, error) {
	if path, err := exec.LookPath(binaryName); err == nil {
		return path, nil
	}
	for _, path := range candidatePaths() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", ErrBinaryNotFound
}

// EnsureRunning starts `ollama serve` in the background when client cannot
// reach the server, then waits up to wait for it to come up.
func (r *Runner) EnsureRunning(ctx context.Context, client *Client, wait time.Duration) error {
	if err := client.CheckRunning(ctx); err == nil {
		return nil
	}

	bin, err := r.binary()
	if err != nil {
		return err
	}
	cmd := exec.Command(bin, "serve")
	cmd.SysProcAttr = serveAttrs()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil
	if err := cmd.Start(); err != nil {
		return &CommandError{Command: "serve", Cause: err}
	}
	// The server outlives us; reap it if it exits early.
	go func() { _ = cmd.Wait() }()

	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := client.CheckRunning(ctx); err == nil {
				return nil
			}
			if time.Now().After(deadline) {
				return &ClientError{
					Type:    ErrTypeNotRunning,
					Message: fmt.Sprintf("Ollama did not start within %s", wait),
				}
			}
		}
	}
}
