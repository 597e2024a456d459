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
	"github.com/jeranaias/llmpad/internal/modelfile"
)

// CatalogSnapshot is a copy of the catalog state for rendering.
type CatalogSnapshot struct {
	Files     []model.ModelFileInfo
	Remote    []string
	RemoteErr error
}

// ModelCatalog tracks the local model files and the models installed on
// the server.
type ModelCatalog struct {
	gw       backend.Gateway
	notify   Notifier
	log      zerolog.Logger
	hook     *changeHook
	settings *SettingsStore

	mu        sync.RWMutex
	files     []model.ModelFile
	remote    []string
	remoteErr error
}

func newModelCatalog(gw backend.Gateway, notify Notifier, log zerolog.Logger, hook *changeHook, settings *SettingsStore) *ModelCatalog {
	return &ModelCatalog{
		gw:       gw,
		notify:   notify,
		log:      log.With().Str("store", "catalog").Logger(),
		hook:     hook,
		settings: settings,
	}
}

// Snapshot returns the files annotated against the current remote list.
func (m *ModelCatalog) Snapshot() CatalogSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return CatalogSnapshot{
		Files:     modelfile.WithStatus(m.files, m.remote),
		Remote:    append(make([]string, 0, len(m.remote)), m.remote...),
		RemoteErr: m.remoteErr,
	}
}

// Remote returns the installed model names.
func (m *ModelCatalog) Remote() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append(make([]string, 0, len(m.remote)), m.remote...)
}

// Installed reports whether a popular model's family is installed.
func (m *ModelCatalog) Installed(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return model.IsInstalled(name, m.remote)
}

// LoadModelFiles reloads the model file list. On failure the previous
// list is kept.
func (m *ModelCatalog) LoadModelFiles(ctx context.Context) error {
	files, err := m.gw.ListModelFiles(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("failed to load model files")
		m.notify.Alert("Error loading Modelfiles: " + err.Error())
		return err
	}
	m.mu.Lock()
	m.files = files
	m.mu.Unlock()
	m.hook.fire()
	return nil
}

// RefreshRemote reloads the installed models for the saved API URL. A
// failure empties the list and records the error.
func (m *ModelCatalog) RefreshRemote(ctx context.Context) error {
	names, err := m.gw.ListRemoteModels(ctx, m.settings.Current().APIURL)
	m.mu.Lock()
	if err != nil {
		m.remote = []string{}
		m.remoteErr = err
	} else {
		m.remote = names
		m.remoteErr = nil
	}
	m.mu.Unlock()
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to list remote models")
	}
	m.hook.fire()
	return err
}

// CreateModel builds a model from file. A file without a FROM line is
// rejected locally without contacting the backend; whether the base model
// exists is left to the create call itself.
func (m *ModelCatalog) CreateModel(ctx context.Context, file model.ModelFile) (string, error) {
	if _, ok := modelfile.BaseModel(file.Content); !ok {
		err := model.ValidationError{Field: "content", Message: "Modelfile has no FROM line"}
		m.notify.Alert("Error creating model: " + err.Error())
		return "", err
	}

	msg, err := m.gw.CreateModel(ctx, m.settings.Current().APIURL, file.Name, file.Content)
	if err != nil {
		m.log.Error().Err(err).Str("model", file.Name).Msg("failed to create model")
		m.notify.Alert("Error creating model: " + err.Error())
		return "", err
	}
	m.notify.Alert(msg)
	_ = m.RefreshRemote(ctx)
	return msg, nil
}
