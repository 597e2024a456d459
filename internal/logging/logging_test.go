// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jeranaias/llmpad/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWritesFileAndConsole(t *testing.T) {
	cfg := config.Default()
	cfg.Log.File = filepath.Join(t.TempDir(), "logs", "llmpad.log")
	cfg.Log.Level = "info"

	var console bytes.Buffer
	logger, closer := New(cfg, Options{Console: &console, Level: "debug"})
	logger.Debug().Str("op", "test").Msg("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(cfg.Log.File)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"message":"hello"`) || !strings.Contains(string(data), `"service":"llmpad"`) {
		t.Errorf("log file = %s", data)
	}
	if !strings.Contains(console.String(), "hello") {
		t.Errorf("console = %q, want it to contain hello", console.String())
	}
}

func TestNewRespectsLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Log.File = ""
	cfg.Log.Level = "warn"

	var console bytes.Buffer
	logger, _ := New(cfg, Options{Console: &console})
	logger.Info().Msg("quiet")
	logger.Warn().Msg("loud")

	if strings.Contains(console.String(), "quiet") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(console.String(), "loud") {
		t.Error("warn record missing")
	}
}
