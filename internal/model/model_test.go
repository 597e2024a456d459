// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"testing"
	"time"
)

// =============================================================================
// MESSAGE ID TESTS
// =============================================================================

func TestMessageID_PendingNeverEqualsConfirmed(t *testing.T) {
	if PendingID(42) == ConfirmedID(42) {
		t.Error("PendingID(42) should not equal ConfirmedID(42)")
	}
	if PendingID(42) != PendingID(42) {
		t.Error("PendingID(42) should equal itself")
	}
}

func TestMessageID_String(t *testing.T) {
	if got := PendingID(7).String(); got != "~7" {
		t.Errorf("String() = %q, want %q", got, "~7")
	}
	if got := ConfirmedID(7).String(); got != "7" {
		t.Errorf("String() = %q, want %q", got, "7")
	}
}

func TestNewPendingID_StrictlyIncreasing(t *testing.T) {
	now := time.Now()
	a := NewPendingID(now)
	b := NewPendingID(now)
	if !a.IsPending() || !b.IsPending() {
		t.Fatal("NewPendingID should return pending ids")
	}
	if b.Value() <= a.Value() {
		t.Errorf("second id %d should be greater than first %d", b.Value(), a.Value())
	}
}

func TestIndexOf(t *testing.T) {
	msgs := []Message{
		{ID: ConfirmedID(1)},
		{ID: PendingID(1)},
		{ID: ConfirmedID(2)},
	}
	if got := IndexOf(msgs, PendingID(1)); got != 1 {
		t.Errorf("IndexOf(pending 1) = %d, want 1", got)
	}
	if got := IndexOf(msgs, PendingID(9)); got != -1 {
		t.Errorf("IndexOf(pending 9) = %d, want -1", got)
	}
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage(3, errors.New("boom"), time.Now())
	if msg.Role != RoleAssistant {
		t.Errorf("Role = %q, want assistant", msg.Role)
	}
	if msg.Content != "Error: boom" {
		t.Errorf("Content = %q, want %q", msg.Content, "Error: boom")
	}
	if msg.ConversationID != 3 {
		t.Errorf("ConversationID = %d, want 3", msg.ConversationID)
	}
}

// =============================================================================
// SETTINGS TESTS
// =============================================================================

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		s       Settings
		wantErr bool
	}{
		{"defaults", DefaultSettings(), false},
		{"https", Settings{APIURL: "https://api.example.com/v1", Model: "gpt"}, false},
		{"empty url", Settings{Model: "m"}, true},
		{"ftp scheme", Settings{APIURL: "ftp://host", Model: "m"}, true},
		{"no host", Settings{APIURL: "http://", Model: "m"}, true},
		{"empty model", Settings{APIURL: "http://localhost:11434/v1", Model: "  "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_MaskedKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"abc", "***"},
		{"sk-123456", "*****3456"},
	}
	for _, tt := range tests {
		s := Settings{APIKey: tt.key}
		if got := s.MaskedKey(); got != tt.want {
			t.Errorf("MaskedKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestSettings_WithDefaults(t *testing.T) {
	got := Settings{APIKey: "k"}.WithDefaults()
	if got.APIURL != DefaultAPIURL || got.Model != DefaultModel || got.APIKey != "k" {
		t.Errorf("WithDefaults() = %+v", got)
	}
}

// =============================================================================
// CATALOG TESTS
// =============================================================================

func TestIsInstalled(t *testing.T) {
	installed := []string{"llama3.2:latest", "mistral:7b"}

	tests := []struct {
		name string
		want bool
	}{
		{"llama3.2", true},
		{"llama3.2:1b", true},
		{"mistral", true},
		{"phi3", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsInstalled(tt.name, installed); got != tt.want {
			t.Errorf("IsInstalled(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestConversation_DisplayTitle(t *testing.T) {
	var nilConv *Conversation
	if got := nilConv.DisplayTitle(); got != DefaultTitle {
		t.Errorf("nil DisplayTitle() = %q", got)
	}
	c := &Conversation{Title: "Hi"}
	if got := c.DisplayTitle(); got != "Hi" {
		t.Errorf("DisplayTitle() = %q, want Hi", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	ts := ParseTimestamp("2025-01-02 03:04:05")
	if ts.Year() != 2025 || ts.Hour() != 3 {
		t.Errorf("ParseTimestamp = %v", ts)
	}
	if !ParseTimestamp("garbage").IsZero() {
		t.Error("ParseTimestamp(garbage) should be zero")
	}
}
