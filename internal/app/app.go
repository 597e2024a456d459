// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app holds the application state shared by the views: the
// conversation cache, the settings draft, the model catalog and the
// download orchestrator. Views read snapshots and mutate through methods.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jeranaias/llmpad/internal/backend"
)

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// Notifier surfaces results and failures to the user (a modal alert in the
// TUI, a line on stderr in the CLI).
type Notifier interface {
	Alert(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Alert calls f(message).
func (f NotifierFunc) Alert(message string) { f(message) }

type discardNotifier struct{}

func (discardNotifier) Alert(string) {}

// changeHook is the re-render callback shared by the stores.
type changeHook struct {
	mu sync.RWMutex
	fn func()
}

func (h *changeHook) set(fn func()) {
	h.mu.Lock()
	h.fn = fn
	h.mu.Unlock()
}

func (h *changeHook) fire() {
	h.mu.RLock()
	fn := h.fn
	h.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// =============================================================================
// APP
// =============================================================================

// Options configures New.
type Options struct {
	Notifier Notifier
	Logger   zerolog.Logger

	// Now is the clock used for optimistic message ids.
	Now func() time.Time

	// ProgressRate caps re-render notifications from download progress
	// events; the final state change is always delivered. Zero means 10/s.
	ProgressRate rate.Limit
}

// App aggregates the stores.
type App struct {
	Conversations *Conversations
	Settings      *SettingsStore
	Catalog       *ModelCatalog
	Downloads     *Downloader

	hook *changeHook
}

// New wires the stores to gw.
func New(gw backend.Gateway, opts Options) *App {
	if opts.Notifier == nil {
		opts.Notifier = discardNotifier{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ProgressRate == 0 {
		opts.ProgressRate = 10
	}

	hook := &changeHook{}
	log := opts.Logger.With().Str("component", "app").Logger()

	settings := newSettingsStore(gw, opts.Notifier, log, hook)
	catalog := newModelCatalog(gw, opts.Notifier, log, hook, settings)
	settings.catalog = catalog

	return &App{
		Conversations: newConversations(gw, opts.Notifier, log, hook, settings, opts.Now),
		Settings:      settings,
		Catalog:       catalog,
		Downloads:     newDownloader(gw, opts.Notifier, log, hook, catalog, opts.ProgressRate),
		hook:          hook,
	}
}

// OnChange registers the callback fired after every state change. It may
// be called from any goroutine.
func (a *App) OnChange(fn func()) {
	a.hook.set(fn)
}

// Start performs the initial loads: conversations, settings, model files,
// then the remote model list for the loaded settings. Each load reports
// its own failure; the first error is returned.
func (a *App) Start(ctx context.Context) error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	keep(a.Conversations.Load(ctx))
	keep(a.Settings.Load(ctx))
	keep(a.Catalog.LoadModelFiles(ctx))
	_ = a.Catalog.RefreshRemote(ctx)
	return first
}
