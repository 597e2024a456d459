// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across llmpad packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes, TruncateWidth: rune- and cell-safe truncation
//   - NormalizeText: NFC normalization with whitespace collapsing
//   - TitleFromInput: conversation title from a first message
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	title := util.TitleFromInput(input, 50)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
