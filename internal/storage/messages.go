// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations, messages and settings in sqlite.
package storage

import (
	"context"
	"fmt"

	"github.com/jeranaias/llmpad/internal/model"
)

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// ListMessages returns a conversation's messages in creation order.
func (s *Store) ListMessages(ctx context.Context, conversationID int64) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, created_at
		   FROM messages WHERE conversation_id = ?
		  ORDER BY created_at ASC, id ASC`, conversationID)
	if err != nil {
		return nil, wrapErr("list messages", err)
	}
	defer rows.Close()

	msgs := []model.Message{}
	for rows.Next() {
		var (
			m    model.Message
			id   int64
			role string
		)
		if err := rows.Scan(&id, &m.ConversationID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, wrapErr("scan message", err)
		}
		m.ID = model.ConfirmedID(id)
		m.Role = model.Role(role)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list messages", err)
	}
	return msgs, nil
}

// AddMessage appends a message and bumps the conversation's updated_at.
func (s *Store) AddMessage(ctx context.Context, conversationID int64, role model.Role, content string) (model.Message, error) {
	if !role.Valid() {
		return model.Message{}, fmt.Errorf("add message: invalid role %q", role)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Message{}, wrapErr("add message", err)
	}
	defer tx.Rollback()

	if _, err := getConversation(ctx, tx, conversationID); err != nil {
		return model.Message{}, err
	}

	ts := s.timestamp()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO messages (conversation_id, role, content, created_at) VALUES (?, ?, ?, ?)",
		conversationID, string(role), content, ts)
	if err != nil {
		return model.Message{}, wrapErr("add message", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Message{}, wrapErr("add message", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE conversations SET updated_at = ? WHERE id = ?", ts, conversationID); err != nil {
		return model.Message{}, wrapErr("touch conversation", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Message{}, wrapErr("add message", err)
	}

	return model.Message{
		ID:             model.ConfirmedID(id),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      ts,
	}, nil
}
