// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations, messages and settings in sqlite.
//
// The database uses the pure-Go modernc.org/sqlite driver with WAL and
// foreign keys enabled. Deleting a conversation removes its messages.
// Adding a message or renaming a conversation bumps its updated_at, which
// drives the most-recent-first listing.
//
// # Key Types
//
//   - Store: open database handle with typed accessors
//   - Config: database path, clock and optional API-key sealer
//
// # Usage
//
//	store, err := storage.Open(storage.Config{Path: dbPath, Sealer: sealer})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	conv, err := store.CreateConversation(ctx, "New Conversation")
//	msg, err := store.AddMessage(ctx, conv.ID, model.RoleUser, "Hello")
//
// # Storage Location
//
// The database lives at <data_dir>/llmpad.db (default ~/.llmpad/llmpad.db).
package storage
