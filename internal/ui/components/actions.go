// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the widgets of the llmpad TUI.
package components

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/llmpad/internal/model"
)

// =============================================================================
// ACTION MESSAGES
// =============================================================================
//
// Components never call the stores. They return commands producing these
// messages and the root model performs the store call.

// SelectConversationMsg asks for a conversation to become active.
type SelectConversationMsg struct{ Conversation model.Conversation }

// NewConversationMsg asks for a new conversation.
type NewConversationMsg struct{}

// DeleteConversationMsg asks for a conversation to be deleted.
type DeleteConversationMsg struct{ ID int64 }

// RenameConversationMsg asks for a conversation title change.
type RenameConversationMsg struct {
	ID    int64
	Title string
}

// SaveSettingsMsg carries the edited settings to persist.
type SaveSettingsMsg struct{ Settings model.Settings }

// RefreshRemoteMsg asks for the installed model list to be reloaded.
type RefreshRemoteMsg struct{}

// RefreshModelFilesMsg asks for the model file list to be reloaded.
type RefreshModelFilesMsg struct{}

// CreateModelMsg asks for a model to be created from a model file.
type CreateModelMsg struct{ File model.ModelFile }

// StartDownloadMsg asks for a model to be pulled.
type StartDownloadMsg struct{ Name string }

// Modal identifies an overlay.
type Modal int

const (
	ModalNone Modal = iota
	ModalSettings
	ModalManager
	ModalDownloader
)

// OpenModalMsg switches the visible overlay; ModalNone closes it.
type OpenModalMsg struct{ Modal Modal }

// emit wraps msg in a command.
func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
