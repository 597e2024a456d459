// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the root Bubble Tea model of the llmpad TUI.
package chat

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/llmpad/internal/model"
	"github.com/jeranaias/llmpad/internal/ui/components"
)

const (
	opSaveSettings = "save_settings"
	opCreateModel  = "create_model"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		return m, m.sync()

	case RefreshMsg:
		return m, m.sync()

	case AlertMsg:
		m.alerts.Push(msg.Text)
		return m, nil

	case opDoneMsg:
		return m.handleOpDone(msg)

	case spinner.TickMsg:
		var cmds []tea.Cmd
		if m.sending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		var cmd tea.Cmd
		m.downloader, cmd = m.downloader.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)

	// Component actions
	case components.SelectConversationMsg:
		m.focus = focusInput
		m.sidebar.Blur()
		conv := msg.Conversation
		return m, tea.Batch(m.input.Focus(), m.run(func(ctx context.Context) error {
			return m.app.Conversations.Select(ctx, conv)
		}))

	case components.NewConversationMsg:
		return m.newConversation()

	case components.DeleteConversationMsg:
		id := msg.ID
		return m, m.run(func(ctx context.Context) error {
			return m.app.Conversations.Delete(ctx, id)
		})

	case components.RenameConversationMsg:
		id, title := msg.ID, msg.Title
		return m, m.run(func(ctx context.Context) error {
			return m.app.Conversations.Rename(ctx, id, title)
		})

	case components.SaveSettingsMsg:
		s := msg.Settings
		m.app.Settings.SetAPIURL(s.APIURL)
		m.app.Settings.SetAPIKey(s.APIKey)
		m.app.Settings.SetModel(s.Model)
		return m, m.runOp(opSaveSettings, m.app.Settings.Save)

	case components.RefreshRemoteMsg:
		return m, m.run(m.app.Catalog.RefreshRemote)

	case components.RefreshModelFilesMsg:
		return m, m.run(m.app.Catalog.LoadModelFiles)

	case components.CreateModelMsg:
		if m.creating {
			return m, nil
		}
		m.creating = true
		m.manager.SetBusy(true)
		file := msg.File
		return m, m.runOp(opCreateModel, func(ctx context.Context) error {
			_, err := m.app.Catalog.CreateModel(ctx, file)
			return err
		})

	case components.StartDownloadMsg:
		name := msg.Name
		return m, m.run(func(ctx context.Context) error {
			return m.app.Downloads.Download(ctx, name)
		})

	case components.OpenModalMsg:
		return m.openModal(msg.Modal)
	}

	return m, nil
}

func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	switch msg.op {
	case opSaveSettings:
		// A failed save keeps the editor open; the store already alerted.
		if msg.err == nil && m.modal == components.ModalSettings {
			m.modal = components.ModalNone
		}
	case opCreateModel:
		m.creating = false
		m.manager.SetBusy(false)
	}
	return m, m.sync()
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.alerts.Active() {
		switch msg.String() {
		case "enter", "esc", " ":
			m.alerts.Dismiss()
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.modal {
	case components.ModalSettings:
		m.settings, cmd = m.settings.Update(msg)
		return m, cmd
	case components.ModalManager:
		m.manager, cmd = m.manager.Update(msg)
		return m, cmd
	case components.ModalDownloader:
		m.downloader, cmd = m.downloader.Update(msg)
		return m, cmd
	}

	if m.focus == focusSidebar && m.sidebar.Editing() {
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.SwitchFocus):
		return m.toggleFocus()
	case key.Matches(msg, m.keys.NewChat):
		return m.newConversation()
	case key.Matches(msg, m.keys.Settings):
		return m.openModal(components.ModalSettings)
	case key.Matches(msg, m.keys.ModelFiles):
		return m.openModal(components.ModalManager)
	case key.Matches(msg, m.keys.Download):
		return m.openModal(components.ModalDownloader)
	case key.Matches(msg, m.keys.Theme):
		m.theme.Toggle()
		m.status = "Theme: " + string(m.theme.Mode())
		return m, m.sync()
	case key.Matches(msg, m.keys.Copy):
		return m.copyLastResponse()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.focus == focusSidebar {
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, m.keys.Send) {
		return m.send()
	}
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) toggleFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusInput {
		m.focus = focusSidebar
		m.input.Blur()
		m.sidebar.Focus()
		return m, nil
	}
	m.focus = focusInput
	m.sidebar.Blur()
	return m, m.input.Focus()
}

// send appends the optimistic message right away and completes the turn
// in a command. Input is ignored while a reply is pending.
func (m Model) send() (tea.Model, tea.Cmd) {
	p, ok := m.app.Conversations.BeginSend(m.input.Value())
	if !ok {
		return m, nil
	}
	m.input.Reset()
	m.status = ""
	syncCmd := m.sync()
	return m, tea.Batch(syncCmd, m.run(func(ctx context.Context) error {
		return m.app.Conversations.Complete(ctx, p)
	}))
}

func (m Model) newConversation() (tea.Model, tea.Cmd) {
	m.focus = focusInput
	m.sidebar.Blur()
	return m, tea.Batch(m.input.Focus(), m.run(func(ctx context.Context) error {
		_, err := m.app.Conversations.Create(ctx, "")
		return err
	}))
}

// openModal switches overlays. Closing the settings editor discards the
// draft; the downloader cannot be left while a pull runs.
func (m Model) openModal(target components.Modal) (tea.Model, tea.Cmd) {
	if m.modal == components.ModalDownloader && m.downloader.Busy() && target != components.ModalDownloader {
		return m, nil
	}
	if m.modal == components.ModalSettings && target == components.ModalNone {
		m.app.Settings.Discard()
	}

	var cmd tea.Cmd
	switch target {
	case components.ModalSettings:
		if m.modal != components.ModalManager && m.modal != components.ModalDownloader {
			cmd = m.settings.Open(m.app.Settings.Current())
		}
		m.input.Blur()
	case components.ModalManager:
		m.input.Blur()
		cmd = m.run(m.app.Catalog.LoadModelFiles)
	case components.ModalDownloader:
		m.input.Blur()
	case components.ModalNone:
		if m.focus == focusInput {
			cmd = m.input.Focus()
		}
	}
	m.modal = target
	return m, tea.Batch(cmd, m.sync())
}

func (m Model) copyLastResponse() (tea.Model, tea.Cmd) {
	msg, ok := components.LastAssistant(m.app.Conversations.Snapshot().Messages)
	if !ok || msg.Content == "" {
		m.status = "No response to copy"
		return m, nil
	}
	if err := m.copy(msg.Content); err != nil {
		m.status = "Failed to copy: " + err.Error()
		return m, nil
	}
	m.status = fmt.Sprintf("Copied %s to clipboard", sizeInfo(msg))
	return m, nil
}

func sizeInfo(msg model.Message) string {
	n := len([]rune(msg.Content))
	if n < 1000 {
		return fmt.Sprintf("%d chars", n)
	}
	return fmt.Sprintf("%.1fK chars", float64(n)/1000)
}
