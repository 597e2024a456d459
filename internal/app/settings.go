// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app holds the application state shared by the views.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jeranaias/llmpad/internal/backend"
	"github.com/jeranaias/llmpad/internal/model"
)

// SettingsStore holds the saved settings and an editable draft.
type SettingsStore struct {
	gw      backend.Gateway
	notify  Notifier
	log     zerolog.Logger
	hook    *changeHook
	catalog *ModelCatalog

	mu    sync.RWMutex
	saved model.Settings
	draft model.Settings
}

func newSettingsStore(gw backend.Gateway, notify Notifier, log zerolog.Logger, hook *changeHook) *SettingsStore {
	def := model.DefaultSettings()
	return &SettingsStore{
		gw:     gw,
		notify: notify,
		log:    log.With().Str("store", "settings").Logger(),
		hook:   hook,
		saved:  def,
		draft:  def,
	}
}

// Current returns the saved settings used for requests.
func (s *SettingsStore) Current() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saved
}

// Draft returns the settings being edited.
func (s *SettingsStore) Draft() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// Load fetches the stored settings; nothing stored means defaults.
func (s *SettingsStore) Load(ctx context.Context) error {
	st, err := s.gw.GetSettings(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load settings")
		s.notify.Alert("Error loading settings: " + err.Error())
		return err
	}
	loaded := model.DefaultSettings()
	if st != nil {
		loaded = st.WithDefaults()
	}

	s.mu.Lock()
	s.saved = loaded
	s.draft = loaded
	s.mu.Unlock()
	s.hook.fire()
	return nil
}

// SetAPIURL edits the draft URL.
func (s *SettingsStore) SetAPIURL(v string) { s.edit(func(d *model.Settings) { d.APIURL = v }) }

// SetAPIKey edits the draft key.
func (s *SettingsStore) SetAPIKey(v string) { s.edit(func(d *model.Settings) { d.APIKey = v }) }

// SetModel edits the draft model.
func (s *SettingsStore) SetModel(v string) { s.edit(func(d *model.Settings) { d.Model = v }) }

func (s *SettingsStore) edit(fn func(*model.Settings)) {
	s.mu.Lock()
	fn(&s.draft)
	s.mu.Unlock()
	s.hook.fire()
}

// Discard resets the draft to the saved settings.
func (s *SettingsStore) Discard() {
	s.mu.Lock()
	s.draft = s.saved
	s.mu.Unlock()
	s.hook.fire()
}

// Override replaces the settings used for requests without persisting
// them. The draft follows.
func (s *SettingsStore) Override(st model.Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.saved = st
	s.draft = st
	s.mu.Unlock()
	s.hook.fire()
	return nil
}

// Save validates and persists the draft, then refreshes the remote model
// list for the new URL. Failures are reported and returned; the draft is
// kept so the caller can leave its editor open.
func (s *SettingsStore) Save(ctx context.Context) error {
	draft := s.Draft()
	if err := draft.Validate(); err != nil {
		s.notify.Alert("Invalid settings: " + err.Error())
		return err
	}
	if err := s.gw.SaveSettings(ctx, draft); err != nil {
		s.log.Error().Err(err).Msg("failed to save settings")
		s.notify.Alert("Error saving settings: " + err.Error())
		return err
	}

	s.mu.Lock()
	s.saved = draft
	s.mu.Unlock()
	s.hook.fire()

	if s.catalog != nil {
		_ = s.catalog.RefreshRemote(ctx)
	}
	return nil
}
