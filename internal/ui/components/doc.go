// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the widgets of the llmpad TUI.
//
// Widgets hold only presentation state. User actions come back to the root
// model as messages (SelectConversationMsg, SaveSettingsMsg,
// StartDownloadMsg, ...) which it turns into store calls.
//
// # Key Types
//
//   - Sidebar: conversation list with fuzzy filter and inline rename
//   - MessageRenderer: transcript rendering, markdown through glamour
//   - SettingsModal: URL, key and model with an installed-model picker
//   - ModelManager: Modelfile list with a chroma-highlighted preview
//   - DownloadModal: popular models and pull progress
//   - AlertQueue: modal notifications
package components
