// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package progress extracts a completion percentage from free-text download
// status lines such as "pulling 6a07: 45% 905 MB/2.0 GB".
//
// # Usage
//
//	if pct, ok := progress.Parse(line); ok {
//	    bar.SetPercent(pct / 100)
//	}
//
// Parse is pure and safe for concurrent use. A line without a size pair is
// not an error: ok is false and callers keep showing the raw text.
package progress
