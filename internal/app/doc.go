// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app holds the client-side state shared by the TUI and the CLI.
//
// Stores call the backend.Gateway, keep the last good result and fire a
// single change hook so the view can re-render. Failures go to a Notifier.
//
// # Key Types
//
//   - App: aggregates the stores, Start performs the initial loads
//   - Conversations: list, active conversation, messages, optimistic send
//   - SettingsStore: saved settings and the editable draft
//   - ModelCatalog: model files and installed models
//   - Downloader: one pull at a time with progress from the event bus
//
// # Usage
//
//	a := app.New(gw, app.Options{Notifier: notifier, Logger: logger})
//	a.OnChange(func() { program.Send(chat.RefreshMsg{}) })
//	_ = a.Start(ctx)
//	_, err := a.Conversations.Send(ctx, "hello")
package app
