// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the root Bubble Tea model of the llmpad TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jeranaias/llmpad/internal/ui/components"
)

// EmptyStateText is shown when the active conversation has no messages.
const EmptyStateText = "Start a conversation!"

// View renders the model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.alerts.Active() {
		return m.overlay(m.alerts.View())
	}
	switch m.modal {
	case components.ModalSettings:
		return m.overlay(m.settings.View())
	case components.ModalManager:
		return m.overlay(m.manager.View())
	case components.ModalDownloader:
		return m.overlay(m.downloader.View())
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.transcriptView(),
		m.inputView(),
	)
	body := main
	if sb := m.sidebar.View(); sb != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sb, m.theme.Main.Render(main))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		body,
		m.statusView(),
	)
}

func (m Model) overlay(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) headerView() string {
	snap := m.app.Conversations.Snapshot()
	title := snap.Active.DisplayTitle()
	settings := m.app.Settings.Current()

	left := m.theme.HeaderBrand.Render("llmpad") + "  " + m.theme.HeaderTitle.Render(title)
	right := m.theme.Muted.Render(settings.Model + "  [" + string(m.theme.Mode()) + "]")

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) transcriptView() string {
	snap := m.app.Conversations.Snapshot()
	var content string
	if len(snap.Messages) == 0 {
		content = lipgloss.Place(m.viewport.Width, m.viewport.Height,
			lipgloss.Center, lipgloss.Center,
			m.theme.EmptyState.Render(EmptyStateText))
	} else {
		content = m.viewport.View()
	}

	thinking := ""
	if snap.Sending {
		thinking = m.spinner.View() + " " + m.theme.ThinkingText.Render("Thinking...")
	}
	return content + "\n" + thinking
}

func (m Model) inputView() string {
	style := m.theme.InputContainer
	if m.focus == focusInput && m.modal == components.ModalNone {
		style = m.theme.InputFocused
	}
	return style.Render(m.input.View())
}

func (m Model) statusView() string {
	left := m.help.View(m.keys)
	if m.status != "" {
		left = m.theme.ShortcutKey.Render(m.status) + "  " + left
	}
	if dl := m.app.Downloads.Snapshot(); dl.Busy() {
		left = m.theme.WarningStyle.Render("downloading "+dl.Active) + "  " + left
	}
	return m.theme.StatusBar.Width(m.width).Render(ansi.Truncate(left, max(m.width-2, 1), "..."))
}
