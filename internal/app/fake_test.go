// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"sync"

	"github.com/jeranaias/llmpad/internal/backend"
	"github.com/jeranaias/llmpad/internal/events"
	"github.com/jeranaias/llmpad/internal/model"
)

var errBoom = errors.New("boom")

// fakeGateway is an in-memory backend.Gateway with hooks for each call.
type fakeGateway struct {
	mu    sync.Mutex
	calls map[string]int
	bus   *events.Bus

	conversations []model.Conversation
	messages      map[int64][]model.Message
	settings      *model.Settings
	files         []model.ModelFile
	remote        []string
	remoteURLs    []string
	nextID        int64

	failList, failCreate, failDelete, failRename, failSave, failRemote bool

	sendFn     func(ctx context.Context, req backend.SendRequest) (backend.SendResult, error)
	messagesFn func(ctx context.Context, id int64) ([]model.Message, error)
	createFn   func(ctx context.Context, name, content string) (string, error)
	pullFn     func(ctx context.Context, name string) (string, error)
	listenFn   func(ctx context.Context, event string) (*events.Subscription, error)
}

var _ backend.Gateway = (*fakeGateway)(nil)

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		calls:    make(map[string]int),
		bus:      events.NewBus(),
		messages: make(map[int64][]model.Message),
		nextID:   100,
	}
}

func (f *fakeGateway) hit(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeGateway) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeGateway) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	f.hit("list")
	if f.failList {
		return nil, errBoom
	}
	return append([]model.Conversation(nil), f.conversations...), nil
}

func (f *fakeGateway) CreateConversation(ctx context.Context, title string) (model.Conversation, error) {
	f.hit("create")
	if f.failCreate {
		return model.Conversation{}, errBoom
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return model.Conversation{ID: f.nextID, Title: title}, nil
}

func (f *fakeGateway) ListMessages(ctx context.Context, id int64) ([]model.Message, error) {
	f.hit("messages")
	if f.messagesFn != nil {
		return f.messagesFn(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Message(nil), f.messages[id]...), nil
}

func (f *fakeGateway) DeleteConversation(ctx context.Context, id int64) error {
	f.hit("delete")
	if f.failDelete {
		return errBoom
	}
	return nil
}

func (f *fakeGateway) RenameConversation(ctx context.Context, id int64, title string) error {
	f.hit("rename")
	if f.failRename {
		return errBoom
	}
	return nil
}

func (f *fakeGateway) SendMessage(ctx context.Context, req backend.SendRequest) (backend.SendResult, error) {
	f.hit("send")
	if f.sendFn != nil {
		return f.sendFn(ctx, req)
	}
	convID := req.ConversationID
	if convID == 0 {
		convID = 7
	}
	return backend.SendResult{
		Conversation: model.Conversation{ID: convID, Title: req.Input},
		User:         model.Message{ID: model.ConfirmedID(1), ConversationID: convID, Role: model.RoleUser, Content: req.Input},
		Assistant:    model.Message{ID: model.ConfirmedID(2), ConversationID: convID, Role: model.RoleAssistant, Content: "reply"},
	}, nil
}

func (f *fakeGateway) GetSettings(ctx context.Context) (*model.Settings, error) {
	f.hit("get_settings")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings == nil {
		return nil, nil
	}
	s := *f.settings
	return &s, nil
}

func (f *fakeGateway) SaveSettings(ctx context.Context, s model.Settings) error {
	f.hit("save_settings")
	if f.failSave {
		return errBoom
	}
	f.mu.Lock()
	f.settings = &s
	f.mu.Unlock()
	return nil
}

func (f *fakeGateway) ListModelFiles(ctx context.Context) ([]model.ModelFile, error) {
	f.hit("files")
	return f.files, nil
}

func (f *fakeGateway) ModelFilesWithStatus(ctx context.Context, apiURL string) ([]model.ModelFileInfo, error) {
	f.hit("files_status")
	return nil, nil
}

func (f *fakeGateway) ListRemoteModels(ctx context.Context, apiURL string) ([]string, error) {
	f.hit("remote")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remoteURLs = append(f.remoteURLs, apiURL)
	if f.failRemote {
		return nil, errBoom
	}
	return append([]string(nil), f.remote...), nil
}

func (f *fakeGateway) CreateModel(ctx context.Context, apiURL, name, content string) (string, error) {
	f.hit("create_model")
	if f.createFn != nil {
		return f.createFn(ctx, name, content)
	}
	return "Model '" + name + "' created successfully!", nil
}

func (f *fakeGateway) PullModel(ctx context.Context, name string) (string, error) {
	f.hit("pull")
	if f.pullFn != nil {
		return f.pullFn(ctx, name)
	}
	return "Model '" + name + "' downloaded successfully!", nil
}

func (f *fakeGateway) Listen(ctx context.Context, event string) (*events.Subscription, error) {
	f.hit("listen")
	if f.listenFn != nil {
		return f.listenFn(ctx, event)
	}
	return f.bus.SubscribeContext(ctx, event), nil
}

// alerts records Notifier messages.
type alerts struct {
	mu   sync.Mutex
	msgs []string
}

func (a *alerts) Alert(msg string) {
	a.mu.Lock()
	a.msgs = append(a.msgs, msg)
	a.mu.Unlock()
}

func (a *alerts) all() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.msgs...)
}
