// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the root Bubble Tea model of the llmpad TUI.
//
// The model renders the app stores and turns widget actions into store
// calls run as commands. Stores signal changes through RefreshOnChange and
// alerts through a Notifier, both attached to the running program:
//
//	notifier := chat.NewNotifier()
//	a := app.New(gw, app.Options{Notifier: notifier, Logger: logger})
//	p := tea.NewProgram(chat.New(ctx, a, chat.Options{Theme: theme}), tea.WithAltScreen())
//	a.OnChange(chat.RefreshOnChange(p.Send))
//	notifier.Attach(p.Send)
//	_, err := p.Run()
//
// # Layout
//
//   - Header: brand, active conversation title, model and theme
//   - Sidebar: conversations (hidden below 60 columns)
//   - Transcript: markdown replies, "Start a conversation!" when empty
//   - Input: Enter sends, Alt+Enter inserts a newline
//   - Status bar: key help, download indicator, transient status
package chat
