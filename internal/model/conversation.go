// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the stores, the
// backend and the views.
package model

import "time"

// DefaultTitle is used for conversations created from the "new" action.
const DefaultTitle = "New Conversation"

// TimestampLayout is the layout of CreatedAt/UpdatedAt strings as stored.
// Millisecond precision keeps most-recent-first ordering stable.
const TimestampLayout = "2006-01-02 15:04:05.000"

var parseLayouts = []string{TimestampLayout, "2006-01-02 15:04:05", time.RFC3339Nano}

// Conversation is a chat thread. IDs are assigned by the backend.
type Conversation struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// DisplayTitle returns the title, or DefaultTitle when it is blank.
func (c *Conversation) DisplayTitle() string {
	if c == nil || c.Title == "" {
		return DefaultTitle
	}
	return c.Title
}

// Updated parses UpdatedAt. The zero time is returned when it cannot be parsed.
func (c Conversation) Updated() time.Time {
	return ParseTimestamp(c.UpdatedAt)
}

// ParseTimestamp parses a stored timestamp. Second-precision values written
// by sqlite's datetime() and RFC3339 are accepted too.
func ParseTimestamp(s string) time.Time {
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FormatTimestamp renders t in TimestampLayout (UTC).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
