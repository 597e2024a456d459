// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the stores, the
// backend and the views.
//
// # Key Types
//
//   - Conversation: backend-owned chat thread with a mutable title
//   - Message: single chat turn whose ID is either Pending or Confirmed
//   - MessageID: tagged identifier distinguishing optimistic local messages
//   - Settings: API base URL, optional API key and selected model
//   - ModelFile / ModelFileInfo: Modelfile descriptors found on disk
//   - PopularModel: entry of the built-in download catalog
//
// # Usage
//
// Build an optimistic user message and reconcile it later:
//
//	msg := model.NewPendingUserMessage(convID, "Hello!", time.Now())
//	// ... backend confirms ...
//	i := model.IndexOf(messages, msg.ID)
package model
