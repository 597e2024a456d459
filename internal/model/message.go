// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the stores, the
// backend and the views.
package model

import (
	"strconv"
	"sync/atomic"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE ID
// =============================================================================

// MessageID identifies a message. A Pending id is generated locally for an
// optimistic message; a Confirmed id was assigned by the backend. The two
// spaces never compare equal.
type MessageID struct {
	pending bool
	value   int64
}

// PendingID wraps a locally generated placeholder id.
func PendingID(local int64) MessageID {
	return MessageID{pending: true, value: local}
}

// ConfirmedID wraps a backend-assigned id.
func ConfirmedID(id int64) MessageID {
	return MessageID{value: id}
}

// IsPending reports whether the id is a local placeholder.
func (id MessageID) IsPending() bool { return id.pending }

// Value returns the raw numeric id.
func (id MessageID) Value() int64 { return id.value }

// String renders the id; pending ids are prefixed with "~".
func (id MessageID) String() string {
	if id.pending {
		return "~" + strconv.FormatInt(id.value, 10)
	}
	return strconv.FormatInt(id.value, 10)
}

var lastPending atomic.Int64

// NewPendingID derives a placeholder id from now in milliseconds. Ids are
// strictly increasing within the process even when called twice in the
// same millisecond.
func NewPendingID(now time.Time) MessageID {
	v := now.UnixMilli()
	for {
		last := lastPending.Load()
		next := v
		if next <= last {
			next = last + 1
		}
		if lastPending.CompareAndSwap(last, next) {
			return PendingID(next)
		}
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	ID             MessageID `json:"-"`
	ConversationID int64     `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"` // may contain markdown
	CreatedAt      string    `json:"created_at"`
}

// NewPendingUserMessage builds the optimistic message shown before the
// backend confirms a send.
func NewPendingUserMessage(conversationID int64, content string, now time.Time) Message {
	return Message{
		ID:             NewPendingID(now),
		ConversationID: conversationID,
		Role:           RoleUser,
		Content:        content,
		CreatedAt:      FormatTimestamp(now),
	}
}

// NewErrorMessage builds the synthetic assistant message that carries a
// failed send's error text.
func NewErrorMessage(conversationID int64, err error, now time.Time) Message {
	return Message{
		ID:             NewPendingID(now),
		ConversationID: conversationID,
		Role:           RoleAssistant,
		Content:        "Error: " + err.Error(),
		CreatedAt:      FormatTimestamp(now),
	}
}

// IsUser returns true if this is a user message.
func (m *Message) IsUser() bool { return m.Role == RoleUser }

// IsAssistant returns true if this is an assistant message.
func (m *Message) IsAssistant() bool { return m.Role == RoleAssistant }

// IndexOf returns the index of the message with the given id, or -1.
func IndexOf(messages []Message, id MessageID) int {
	for i := range messages {
		if messages[i].ID == id {
			return i
		}
	}
	return -1
}
