// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app holds the application state shared by the views.
package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jeranaias/llmpad/internal/backend"
	"github.com/jeranaias/llmpad/internal/events"
	"github.com/jeranaias/llmpad/internal/model"
	"github.com/jeranaias/llmpad/internal/progress"
)

// ErrDownloadInProgress is returned when a download is requested while
// another one is active.
var ErrDownloadInProgress = errors.New("a download is already in progress")

// DownloadState is the phase of the download cycle.
type DownloadState int

const (
	// DownloadIdle means no model is being fetched.
	DownloadIdle DownloadState = iota
	// DownloadRequesting means the pull call is issued and the progress
	// listener is not attached yet.
	DownloadRequesting
	// DownloadStreaming means progress events are being received.
	DownloadStreaming
)

func (s DownloadState) String() string {
	switch s {
	case DownloadRequesting:
		return "requesting"
	case DownloadStreaming:
		return "streaming"
	default:
		return "idle"
	}
}

// DownloadSnapshot is a copy of the download state for rendering.
type DownloadSnapshot struct {
	State  DownloadState
	Active string // empty when idle
	Status string // latest raw status line

	// Percent is valid only when HasPercent; otherwise progress is
	// indeterminate.
	Percent    float64
	HasPercent bool
}

// Busy reports whether a download is active.
func (s DownloadSnapshot) Busy() bool { return s.State != DownloadIdle }

// Downloader runs one model pull at a time and tracks its progress from
// the push-event stream.
type Downloader struct {
	gw      backend.Gateway
	notify  Notifier
	log     zerolog.Logger
	hook    *changeHook
	catalog *ModelCatalog
	limiter *rate.Limiter

	mu         sync.Mutex
	state      DownloadState
	active     string
	status     string
	percent    float64
	hasPercent bool
	cycle      string
	sub        *events.Subscription
}

func newDownloader(gw backend.Gateway, notify Notifier, log zerolog.Logger, hook *changeHook, catalog *ModelCatalog, limit rate.Limit) *Downloader {
	return &Downloader{
		gw:      gw,
		notify:  notify,
		log:     log.With().Str("store", "downloader").Logger(),
		hook:    hook,
		catalog: catalog,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Snapshot returns a copy of the current state.
func (d *Downloader) Snapshot() DownloadSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DownloadSnapshot{
		State:      d.state,
		Active:     d.active,
		Status:     d.status,
		Percent:    d.percent,
		HasPercent: d.hasPercent,
	}
}

// Download pulls name and blocks until the pull finishes. The result is
// reported through the Notifier, the remote model list is refreshed and
// the progress fields are reset before it returns.
func (d *Downloader) Download(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.ValidationError{Field: "name", Message: "model name is required"}
	}

	d.mu.Lock()
	if d.state != DownloadIdle {
		d.mu.Unlock()
		return ErrDownloadInProgress
	}
	cycle := uuid.NewString()
	d.cycle = cycle
	d.state = DownloadRequesting
	d.active = name
	d.status = ""
	d.percent = 0
	d.hasPercent = false
	d.mu.Unlock()
	d.hook.fire()

	log := d.log.With().Str("model", name).Str("cycle", cycle).Logger()
	log.Info().Msg("download started")

	listenCtx, stopListening := context.WithCancel(ctx)
	go d.listen(listenCtx, log, cycle, name)

	msg, err := d.gw.PullModel(ctx, name)

	d.teardown(cycle, stopListening)

	if err != nil {
		log.Error().Err(err).Msg("download failed")
		d.notify.Alert("Error downloading model: " + err.Error())
	} else {
		log.Info().Msg("download finished")
		d.notify.Alert(msg)
		if d.catalog != nil {
			_ = d.catalog.RefreshRemote(ctx)
		}
	}

	d.mu.Lock()
	d.state = DownloadIdle
	d.active = ""
	d.status = ""
	d.percent = 0
	d.hasPercent = false
	d.mu.Unlock()
	d.hook.fire()
	return err
}

// listen acquires the progress subscription for one cycle and applies its
// events in arrival order. A subscription that resolves after its cycle
// ended is released immediately.
func (d *Downloader) listen(ctx context.Context, log zerolog.Logger, cycle, key string) {
	sub, err := d.gw.Listen(ctx, events.PullProgress)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Msg("progress listener unavailable")
		}
		return
	}

	d.mu.Lock()
	if d.cycle != cycle {
		d.mu.Unlock()
		sub.Close()
		return
	}
	d.sub = sub
	d.state = DownloadStreaming
	d.mu.Unlock()
	d.hook.fire()

	for {
		select {
		case <-sub.Done():
			return
		case ev := <-sub.Events():
			d.apply(cycle, key, ev)
		}
	}
}

func (d *Downloader) apply(cycle, key string, ev events.Event) {
	if ev.Key != "" && ev.Key != key {
		return
	}
	d.mu.Lock()
	if d.cycle != cycle {
		d.mu.Unlock()
		return
	}
	d.status = ev.Payload
	if p, ok := progress.Parse(ev.Payload); ok {
		d.percent = p
		d.hasPercent = true
	}
	d.mu.Unlock()

	if d.limiter.Allow() {
		d.hook.fire()
	}
}

// teardown ends the cycle and releases its subscription exactly once.
func (d *Downloader) teardown(cycle string, stopListening context.CancelFunc) {
	d.mu.Lock()
	var sub *events.Subscription
	if d.cycle == cycle {
		sub = d.sub
		d.sub = nil
		d.cycle = ""
	}
	d.mu.Unlock()

	stopListening()
	if sub != nil {
		sub.Close()
	}
}
