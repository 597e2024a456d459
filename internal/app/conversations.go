// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app holds the application state shared by the views.
package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/llmpad/internal/backend"
	"github.com/jeranaias/llmpad/internal/model"
)

// ConversationsSnapshot is a copy of the conversation state for rendering.
type ConversationsSnapshot struct {
	List     []model.Conversation
	Active   *model.Conversation
	Messages []model.Message
	Sending  bool
}

// Conversations caches the conversation list, the active conversation and
// its messages. It is safe for concurrent use.
type Conversations struct {
	gw       backend.Gateway
	notify   Notifier
	log      zerolog.Logger
	hook     *changeHook
	settings *SettingsStore
	now      func() time.Time

	mu       sync.Mutex
	list     []model.Conversation
	active   *model.Conversation
	messages []model.Message
	sending  bool
	selectN  uint64
}

func newConversations(gw backend.Gateway, notify Notifier, log zerolog.Logger, hook *changeHook, settings *SettingsStore, now func() time.Time) *Conversations {
	return &Conversations{
		gw:       gw,
		notify:   notify,
		log:      log.With().Str("store", "conversations").Logger(),
		hook:     hook,
		settings: settings,
		now:      now,
	}
}

// Snapshot returns a copy of the current state.
func (c *Conversations) Snapshot() ConversationsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := ConversationsSnapshot{
		List:     append([]model.Conversation(nil), c.list...),
		Messages: append([]model.Message(nil), c.messages...),
		Sending:  c.sending,
	}
	if c.active != nil {
		a := *c.active
		snap.Active = &a
	}
	return snap
}

// Load replaces the list with the backend's, in the backend's order.
func (c *Conversations) Load(ctx context.Context) error {
	list, err := c.gw.ListConversations(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to load conversations")
		c.notify.Alert("Error loading conversations: " + err.Error())
		return err
	}
	c.mu.Lock()
	c.list = list
	c.mu.Unlock()
	c.hook.fire()
	return nil
}

// Create makes a new conversation, prepends it and makes it active with an
// empty message list. A blank title becomes model.DefaultTitle.
func (c *Conversations) Create(ctx context.Context, title string) (model.Conversation, error) {
	if strings.TrimSpace(title) == "" {
		title = model.DefaultTitle
	}
	conv, err := c.gw.CreateConversation(ctx, title)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to create conversation")
		c.notify.Alert("Error creating conversation: " + err.Error())
		return model.Conversation{}, err
	}

	c.mu.Lock()
	c.list = append([]model.Conversation{conv}, c.list...)
	active := conv
	c.active = &active
	c.messages = nil
	c.selectN++
	c.mu.Unlock()
	c.hook.fire()
	return conv, nil
}

// Select makes conv active and replaces the messages with its history.
// A response that arrives after another conversation was selected is
// dropped.
func (c *Conversations) Select(ctx context.Context, conv model.Conversation) error {
	c.mu.Lock()
	active := conv
	c.active = &active
	c.selectN++
	seq := c.selectN
	c.mu.Unlock()
	c.hook.fire()

	msgs, err := c.gw.ListMessages(ctx, conv.ID)
	if err != nil {
		c.log.Error().Err(err).Int64("conversation_id", conv.ID).Msg("failed to load messages")
		c.notify.Alert("Error loading messages: " + err.Error())
		return err
	}

	c.mu.Lock()
	if c.selectN != seq {
		c.mu.Unlock()
		c.log.Debug().Int64("conversation_id", conv.ID).Msg("dropping stale message load")
		return nil
	}
	c.messages = msgs
	c.mu.Unlock()
	c.hook.fire()
	return nil
}

// Delete removes a conversation. Deleting the active one clears the
// active conversation and the messages.
func (c *Conversations) Delete(ctx context.Context, id int64) error {
	if err := c.gw.DeleteConversation(ctx, id); err != nil {
		c.log.Error().Err(err).Int64("conversation_id", id).Msg("failed to delete conversation")
		c.notify.Alert("Error deleting conversation: " + err.Error())
		return err
	}

	c.mu.Lock()
	kept := c.list[:0:0]
	for _, conv := range c.list {
		if conv.ID != id {
			kept = append(kept, conv)
		}
	}
	c.list = kept
	if c.active != nil && c.active.ID == id {
		c.active = nil
		c.messages = nil
		c.selectN++
	}
	c.mu.Unlock()
	c.hook.fire()
	return nil
}

// Rename updates the title remotely, then patches the list entry and the
// active copy. Nothing is reverted on failure.
func (c *Conversations) Rename(ctx context.Context, id int64, title string) error {
	if err := c.gw.RenameConversation(ctx, id, title); err != nil {
		c.log.Error().Err(err).Int64("conversation_id", id).Msg("failed to rename conversation")
		c.notify.Alert("Error renaming conversation: " + err.Error())
		return err
	}

	c.mu.Lock()
	for i := range c.list {
		if c.list[i].ID == id {
			c.list[i].Title = title
		}
	}
	if c.active != nil && c.active.ID == id {
		c.active.Title = title
	}
	c.mu.Unlock()
	c.hook.fire()
	return nil
}

// =============================================================================
// SENDING
// =============================================================================

// PendingSend is an optimistic user turn waiting for Complete.
type PendingSend struct {
	Message        model.Message
	ConversationID int64
	Settings       model.Settings
}

// BeginSend appends an optimistic user message. It returns false, changing
// nothing, for whitespace-only input or while another send is in flight.
func (c *Conversations) BeginSend(input string) (PendingSend, bool) {
	if strings.TrimSpace(input) == "" {
		return PendingSend{}, false
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return PendingSend{}, false
	}
	var convID int64
	if c.active != nil {
		convID = c.active.ID
	}
	msg := model.NewPendingUserMessage(convID, input, c.now())
	c.messages = append(c.messages, msg)
	c.sending = true
	c.mu.Unlock()
	c.hook.fire()

	return PendingSend{
		Message:        msg,
		ConversationID: convID,
		Settings:       c.settings.Current(),
	}, true
}

// Complete performs the combined backend call for p and reconciles the
// result. On success the optimistic message is replaced in place by the
// confirmed one and the reply appended; if it is gone both are appended.
// On failure an assistant message carrying the error text is appended and
// the optimistic message stays.
func (c *Conversations) Complete(ctx context.Context, p PendingSend) error {
	res, err := c.gw.SendMessage(ctx, backend.SendRequest{
		ConversationID: p.ConversationID,
		Input:          p.Message.Content,
		Settings:       p.Settings,
	})

	c.mu.Lock()
	c.sending = false
	current := c.activeID()
	onSameConversation := current == p.ConversationID

	if err != nil {
		c.log.Warn().Err(err).Int64("conversation_id", p.ConversationID).Msg("send failed")
		if onSameConversation {
			c.messages = append(c.messages, model.NewErrorMessage(p.ConversationID, err, c.now()))
		}
		c.mu.Unlock()
		if !onSameConversation {
			c.notify.Alert("Error: " + err.Error())
		}
		c.hook.fire()
		return err
	}

	if p.ConversationID == 0 {
		if onSameConversation {
			conv := res.Conversation
			c.active = &conv
		}
		c.list = append([]model.Conversation{res.Conversation}, c.list...)
	} else {
		for i := range c.list {
			if c.list[i].ID == res.Conversation.ID {
				c.list[i] = res.Conversation
			}
		}
		if onSameConversation {
			conv := res.Conversation
			c.active = &conv
		}
	}

	// The user may have moved to another conversation; its messages are
	// persisted and show up when it is selected again.
	if onSameConversation {
		if i := model.IndexOf(c.messages, p.Message.ID); i >= 0 {
			c.messages[i] = res.User
			c.messages = append(c.messages, res.Assistant)
		} else {
			c.messages = append(c.messages, res.User, res.Assistant)
		}
	}
	c.mu.Unlock()
	c.hook.fire()
	return nil
}

// Send is BeginSend followed by Complete. It returns false when the input
// was ignored.
func (c *Conversations) Send(ctx context.Context, input string) (bool, error) {
	p, ok := c.BeginSend(input)
	if !ok {
		return false, nil
	}
	return true, c.Complete(ctx, p)
}

// activeID requires c.mu.
func (c *Conversations) activeID() int64 {
	if c.active == nil {
		return 0
	}
	return c.active.ID
}
