// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the widgets of the llmpad TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/llmpad/internal/model"
	"github.com/jeranaias/llmpad/internal/ui/styles"
)

// ErrorPrefix starts the content of a synthetic send-failure message.
const ErrorPrefix = "Error: "

// IsErrorMessage reports whether m is the local message carrying a failed
// send's error text. Such messages are never persisted.
func IsErrorMessage(m model.Message) bool {
	return m.Role == model.RoleAssistant && m.ID.IsPending() && strings.HasPrefix(m.Content, ErrorPrefix)
}

// MessageRenderer renders the transcript. Assistant replies are markdown;
// confirmed ones are cached until the width or theme changes.
type MessageRenderer struct {
	theme    *styles.Theme
	wordWrap bool
	width    int

	md      *glamour.TermRenderer
	mdStyle string
	mdWidth int
	cache   map[int64]string
}

// NewMessageRenderer creates a renderer. With wordWrap off markdown lines
// are not re-flowed.
func NewMessageRenderer(theme *styles.Theme, wordWrap bool) *MessageRenderer {
	return &MessageRenderer{
		theme:    theme,
		wordWrap: wordWrap,
		width:    80,
		cache:    make(map[int64]string),
	}
}

// SetWidth sets the available width.
func (r *MessageRenderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	r.width = width
}

// Render renders every message separated by a blank line.
func (r *MessageRenderer) Render(messages []model.Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, r.RenderMessage(m))
	}
	return strings.Join(parts, "\n\n")
}

// RenderMessage renders one message with its role label.
func (r *MessageRenderer) RenderMessage(m model.Message) string {
	label := r.theme.RoleLabel.Render(m.Role.DisplayName())
	bodyWidth := r.width - 4

	switch {
	case IsErrorMessage(m):
		return label + "\n" + r.theme.ErrorBubble.Width(bodyWidth).Render(m.Content)
	case m.Role == model.RoleUser:
		return label + "\n" + r.theme.UserBubble.Width(bodyWidth).Render(m.Content)
	default:
		return label + "\n" + r.markdown(m, bodyWidth)
	}
}

func (r *MessageRenderer) markdown(m model.Message, width int) string {
	if !r.ensureRenderer(width) {
		return r.theme.AssistantBubble.Width(width).Render(m.Content)
	}
	if !m.ID.IsPending() {
		if out, ok := r.cache[m.ID.Value()]; ok {
			return out
		}
	}
	out, err := r.md.Render(m.Content)
	if err != nil {
		return r.theme.AssistantBubble.Width(width).Render(m.Content)
	}
	out = strings.Trim(out, "\n")
	if !m.ID.IsPending() {
		r.cache[m.ID.Value()] = out
	}
	return out
}

// ensureRenderer (re)builds the glamour renderer when the theme or width
// changed. It reports false when glamour could not be initialised.
func (r *MessageRenderer) ensureRenderer(width int) bool {
	style := r.theme.GlamourStyle()
	if r.md != nil && r.mdStyle == style && r.mdWidth == width {
		return true
	}
	wrap := 0
	if r.wordWrap {
		wrap = width
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return false
	}
	r.md = md
	r.mdStyle = style
	r.mdWidth = width
	clear(r.cache)
	return true
}

// LastAssistant returns the newest assistant reply that is not a send
// error.
func LastAssistant(messages []model.Message) (model.Message, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleAssistant && !IsErrorMessage(messages[i]) {
			return messages[i], true
		}
	}
	return model.Message{}, false
}
