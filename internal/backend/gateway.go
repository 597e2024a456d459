// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend defines the operations the stores call and the
// in-process implementation that serves them.
package backend

import (
	"context"

	"github.com/jeranaias/llmpad/internal/events"
	"github.com/jeranaias/llmpad/internal/model"
)

// Gateway is the typed request/response surface behind the stores.
// Every method may block on I/O and honours ctx.
type Gateway interface {
	ListConversations(ctx context.Context) ([]model.Conversation, error)
	CreateConversation(ctx context.Context, title string) (model.Conversation, error)
	ListMessages(ctx context.Context, conversationID int64) ([]model.Message, error)
	DeleteConversation(ctx context.Context, id int64) error
	RenameConversation(ctx context.Context, id int64, title string) error
	SendMessage(ctx context.Context, req SendRequest) (SendResult, error)

	// GetSettings returns nil when nothing has been saved.
	GetSettings(ctx context.Context) (*model.Settings, error)
	SaveSettings(ctx context.Context, settings model.Settings) error

	ListModelFiles(ctx context.Context) ([]model.ModelFile, error)
	ModelFilesWithStatus(ctx context.Context, apiURL string) ([]model.ModelFileInfo, error)
	ListRemoteModels(ctx context.Context, apiURL string) ([]string, error)
	CreateModel(ctx context.Context, apiURL, name, content string) (string, error)
	PullModel(ctx context.Context, name string) (string, error)

	// Listen subscribes to a push event. The subscription is released when
	// ctx ends or Close is called.
	Listen(ctx context.Context, event string) (*events.Subscription, error)
}

// SendRequest is one chat turn.
type SendRequest struct {
	// ConversationID selects the conversation; 0 starts a new one titled
	// after the input.
	ConversationID int64
	Input          string
	Settings       model.Settings
}

// SendResult carries the persisted records of a successful turn.
type SendResult struct {
	Conversation model.Conversation
	User         model.Message
	Assistant    model.Message
}
