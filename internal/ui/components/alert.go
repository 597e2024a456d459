// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the widgets of the llmpad TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/llmpad/internal/ui/styles"
)

// AlertQueue holds notifications shown one at a time in a modal.
type AlertQueue struct {
	theme *styles.Theme
	queue []string
	width int
}

// NewAlertQueue creates an empty queue.
func NewAlertQueue(theme *styles.Theme) AlertQueue {
	return AlertQueue{theme: theme, width: 60}
}

// Push appends a message. Blank messages are dropped.
func (a *AlertQueue) Push(msg string) {
	if strings.TrimSpace(msg) == "" {
		return
	}
	a.queue = append(a.queue, msg)
}

// Active reports whether an alert is showing.
func (a AlertQueue) Active() bool { return len(a.queue) > 0 }

// Current returns the alert being shown.
func (a AlertQueue) Current() string {
	if len(a.queue) == 0 {
		return ""
	}
	return a.queue[0]
}

// Dismiss removes the current alert.
func (a *AlertQueue) Dismiss() {
	if len(a.queue) > 0 {
		a.queue = a.queue[1:]
	}
}

// SetWidth sets the modal width.
func (a *AlertQueue) SetWidth(width int) { a.width = min(max(width, 30), 70) }

// View renders the current alert.
func (a AlertQueue) View() string {
	if !a.Active() {
		return ""
	}
	msg := a.Current()
	title := styles.RenderInfo("Notice")
	if isFailure(msg) {
		title = styles.RenderError("Error")
	}
	footer := "enter/esc to dismiss"
	if n := len(a.queue); n > 1 {
		footer = fmt.Sprintf("%s (%d more)", footer, n-1)
	}
	return a.theme.AlertBox.Width(a.width).Render(
		title + "\n\n" + msg + "\n\n" + a.theme.Muted.Render(footer),
	)
}

func isFailure(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.HasPrefix(lower, "error") || strings.HasPrefix(lower, "invalid") ||
		strings.Contains(lower, "failed")
}
