// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zerolog logger used across llmpad.
//
// The TUI owns the terminal, so records go to a rotating file. CLI
// subcommands may mirror them to stderr in console format.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jeranaias/llmpad/internal/config"
)

// Options adjusts New beyond what the config file holds.
type Options struct {
	// Console mirrors records to this writer in human-readable form.
	Console io.Writer
	// Level overrides cfg.Log.Level when non-empty.
	Level string
}

// New creates the application logger. The returned closer flushes and
// closes the log file.
func New(cfg *config.Config, opts Options) (zerolog.Logger, io.Closer) {
	raw := cfg.Log.Level
	if opts.Level != "" {
		raw = opts.Level
	}
	level := parseLevel(raw)

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0700); err == nil {
			file := &lumberjack.Logger{
				Filename:   cfg.Log.File,
				MaxSize:    cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
				Compress:   true,
			}
			writers = append(writers, file)
			closer = file
		}
	}
	if opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        opts.Console,
			TimeFormat: time.RFC3339,
		})
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(out).
		With().
		Timestamp().
		Str("service", "llmpad").
		Logger().
		Level(level)
	return logger, closer
}

func parseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
