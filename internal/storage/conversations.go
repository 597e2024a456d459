// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations, messages and settings in sqlite.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jeranaias/llmpad/internal/model"
	"github.com/jeranaias/llmpad/internal/util"
)

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// ListConversations returns every conversation, most recently updated first.
func (s *Store) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, created_at, updated_at FROM conversations ORDER BY updated_at DESC, id DESC")
	if err != nil {
		return nil, wrapErr("list conversations", err)
	}
	defer rows.Close()

	convs := []model.Conversation{}
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, wrapErr("scan conversation", err)
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list conversations", err)
	}
	return convs, nil
}

// GetConversation loads one conversation.
func (s *Store) GetConversation(ctx context.Context, id int64) (model.Conversation, error) {
	return getConversation(ctx, s.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getConversation(ctx context.Context, q queryRower, id int64) (model.Conversation, error) {
	var c model.Conversation
	err := q.QueryRowContext(ctx,
		"SELECT id, title, created_at, updated_at FROM conversations WHERE id = ?", id).
		Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.Conversation{}, wrapErr(fmt.Sprintf("get conversation %d", id), err)
	}
	return c, nil
}

// CreateConversation inserts a conversation and returns the stored record.
func (s *Store) CreateConversation(ctx context.Context, title string) (model.Conversation, error) {
	title = util.NormalizeText(title)
	if title == "" {
		title = model.DefaultTitle
	}
	ts := s.timestamp()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO conversations (title, created_at, updated_at) VALUES (?, ?, ?)", title, ts, ts)
	if err != nil {
		return model.Conversation{}, wrapErr("create conversation", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Conversation{}, wrapErr("create conversation", err)
	}
	return model.Conversation{ID: id, Title: title, CreatedAt: ts, UpdatedAt: ts}, nil
}

// RenameConversation sets a new title and bumps updated_at.
func (s *Store) RenameConversation(ctx context.Context, id int64, title string) error {
	title = util.NormalizeText(title)
	if title == "" {
		return fmt.Errorf("rename conversation %d: title must not be empty", id)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?", title, s.timestamp(), id)
	if err != nil {
		return wrapErr("rename conversation", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("rename conversation %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteConversation removes a conversation and its messages. Deleting a
// missing conversation is not an error.
func (s *Store) DeleteConversation(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("delete conversation", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = ?", id); err != nil {
		return wrapErr("delete messages", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id); err != nil {
		return wrapErr("delete conversation", err)
	}
	if err := tx.Commit(); err != nil {
		return wrapErr("delete conversation", err)
	}
	return nil
}
