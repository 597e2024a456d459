// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jeranaias/llmpad/internal/backend"
	"github.com/jeranaias/llmpad/internal/completion"
	"github.com/jeranaias/llmpad/internal/config"
	"github.com/jeranaias/llmpad/internal/events"
	"github.com/jeranaias/llmpad/internal/logging"
	"github.com/jeranaias/llmpad/internal/model"
	"github.com/jeranaias/llmpad/internal/modelfile"
	"github.com/jeranaias/llmpad/internal/ollama"
	"github.com/jeranaias/llmpad/internal/secret"
	"github.com/jeranaias/llmpad/internal/storage"
)

// autoStartWait bounds how long we wait for a freshly spawned `ollama serve`.
const autoStartWait = 15 * time.Second

// session is everything a command needs: configuration, logger and the
// gateway with its resources.
type session struct {
	cfg     *config.Config
	log     zerolog.Logger
	gateway backend.Gateway

	closers []io.Closer
}

// Close releases the session resources in reverse order of acquisition.
func (s *session) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}

// settings returns the saved connection settings, or the defaults when
// nothing has been saved yet.
func (s *session) settings(ctx context.Context) (model.Settings, error) {
	st, err := s.gateway.GetSettings(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	if st == nil {
		return model.DefaultSettings(), nil
	}
	return st.WithDefaults(), nil
}

// openSession is replaced in tests.
var openSession = newSession

// newSession loads the configuration and wires the local gateway:
// sqlite store, event bus, completion client and Ollama access.
func newSession(cmd *cobra.Command, opts *rootOptions, console bool) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logOpts := logging.Options{Level: opts.logLevel}
	if console && opts.verbose {
		logOpts.Console = cmd.ErrOrStderr()
	}
	log, logCloser := logging.New(cfg, logOpts)
	s := &session{cfg: cfg, log: log, closers: []io.Closer{logCloser}}

	sealer, err := secret.LoadOrCreate(cfg.KeyPath())
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to load encryption key: %w", err)
	}

	store, err := storage.Open(storage.Config{
		Path:   cfg.DatabasePath(),
		Sealer: sealer,
		Defaults: model.Settings{
			APIURL: cfg.Defaults.APIURL,
			Model:  cfg.Defaults.Model,
		},
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	s.closers = append(s.closers, store)

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:   cfg.Ollama.URL,
		Timeout:   cfg.Ollama.Timeout,
		UserAgent: "llmpad/" + Version,
	})
	runner := ollama.NewRunner(cfg.Ollama.Binary)

	var puller backend.Puller = runner
	if cfg.Ollama.PullMethod == config.PullMethodAPI {
		puller = client
	}

	if cfg.Ollama.AutoStart {
		ctx, cancel := context.WithTimeout(cmd.Context(), autoStartWait+time.Second)
		if err := runner.EnsureRunning(ctx, client, autoStartWait); err != nil {
			log.Warn().Err(err).Msg("could not start ollama")
		}
		cancel()
	}

	s.gateway = backend.NewLocal(backend.Options{
		Store:      store,
		Bus:        events.NewBus(),
		Completer:  completion.New(cfg.Completion.Timeout),
		Puller:     puller,
		Creator:    runner,
		Remote:     backend.OllamaLister{Client: client},
		ModelFiles: modelfile.NewFinder(cfg.ModelsDir),
		Logger:     log,
	})

	log.Debug().
		Str("version", Version).
		Str("database", cfg.DatabasePath()).
		Str("models_dir", cfg.ModelsDir).
		Str("pull_method", cfg.Ollama.PullMethod).
		Msg("session ready")
	return s, nil
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFromPath(opts.configPath)
	}
	return config.Load()
}
