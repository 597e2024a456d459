// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the widgets of the llmpad TUI.
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/jeranaias/llmpad/internal/model"
	"github.com/jeranaias/llmpad/internal/ui/styles"
)

// conversationSource adapts a conversation slice to fuzzy.Source.
type conversationSource []model.Conversation

func (s conversationSource) String(i int) string { return s[i].DisplayTitle() }
func (s conversationSource) Len() int            { return len(s) }

// Sidebar is the conversation list with filter and inline rename.
type Sidebar struct {
	theme *styles.Theme

	items    []model.Conversation
	activeID int64
	cursor   int

	filter    textinput.Model
	filtering bool
	rename    textinput.Model
	renaming  bool
	renameID  int64

	focused bool
	width   int
	height  int

	// Now is used for relative timestamps.
	Now func() time.Time
}

// NewSidebar creates an empty sidebar.
func NewSidebar(theme *styles.Theme) Sidebar {
	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "filter"
	filter.CharLimit = 64

	rename := textinput.New()
	rename.Prompt = "> "
	rename.CharLimit = 200

	return Sidebar{
		theme:  theme,
		filter: filter,
		rename: rename,
		Now:    time.Now,
	}
}

// SetItems replaces the list, in the order given, and records the active
// conversation.
func (s *Sidebar) SetItems(items []model.Conversation, activeID int64) {
	s.items = items
	s.activeID = activeID
	s.clampCursor()
}

// SetSize sets the outer dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.filter.Width = max(width-6, 4)
	s.rename.Width = max(width-6, 4)
}

// Focus gives the sidebar keyboard focus.
func (s *Sidebar) Focus() { s.focused = true }

// Blur removes keyboard focus and abandons any edit.
func (s *Sidebar) Blur() {
	s.focused = false
	s.stopRename()
	s.filtering = false
	s.filter.Blur()
}

// Focused reports whether the sidebar has focus.
func (s Sidebar) Focused() bool { return s.focused }

// Editing reports whether a text field inside the sidebar owns the keys.
func (s Sidebar) Editing() bool { return s.filtering || s.renaming }

// Filter returns the current filter text.
func (s Sidebar) Filter() string { return s.filter.Value() }

// Visible returns the items matching the filter, best match first. An
// empty filter returns every item in list order.
func (s Sidebar) Visible() []model.Conversation {
	q := strings.TrimSpace(s.filter.Value())
	if q == "" {
		return s.items
	}
	matches := fuzzy.FindFrom(q, conversationSource(s.items))
	out := make([]model.Conversation, 0, len(matches))
	for _, m := range matches {
		out = append(out, s.items[m.Index])
	}
	return out
}

// Selected returns the conversation under the cursor.
func (s Sidebar) Selected() (model.Conversation, bool) {
	vis := s.Visible()
	if s.cursor < 0 || s.cursor >= len(vis) {
		return model.Conversation{}, false
	}
	return vis[s.cursor], true
}

// Update handles a key while the sidebar has focus.
func (s Sidebar) Update(msg tea.Msg) (Sidebar, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch {
	case s.renaming:
		return s.updateRename(key)
	case s.filtering:
		return s.updateFilter(key)
	}

	switch key.String() {
	case "up", "k":
		s.move(-1)
	case "down", "j":
		s.move(1)
	case "enter":
		if conv, ok := s.Selected(); ok {
			return s, emit(SelectConversationMsg{Conversation: conv})
		}
	case "n":
		return s, emit(NewConversationMsg{})
	case "d", "delete":
		if conv, ok := s.Selected(); ok {
			return s, emit(DeleteConversationMsg{ID: conv.ID})
		}
	case "r":
		if conv, ok := s.Selected(); ok {
			s.renaming = true
			s.renameID = conv.ID
			s.rename.SetValue(conv.Title)
			s.rename.CursorEnd()
			return s, s.rename.Focus()
		}
	case "/":
		s.filtering = true
		return s, s.filter.Focus()
	case "esc":
		if s.filter.Value() != "" {
			s.filter.SetValue("")
			s.clampCursor()
		}
	}
	return s, nil
}

func (s Sidebar) updateRename(key tea.KeyMsg) (Sidebar, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		s.stopRename()
		return s, nil
	case tea.KeyEnter:
		title := strings.TrimSpace(s.rename.Value())
		id := s.renameID
		s.stopRename()
		if title == "" {
			return s, nil
		}
		for _, c := range s.items {
			if c.ID == id && c.Title == title {
				return s, nil
			}
		}
		return s, emit(RenameConversationMsg{ID: id, Title: title})
	}
	var cmd tea.Cmd
	s.rename, cmd = s.rename.Update(key)
	return s, cmd
}

func (s Sidebar) updateFilter(key tea.KeyMsg) (Sidebar, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		s.filtering = false
		s.filter.Blur()
		s.filter.SetValue("")
		s.clampCursor()
		return s, nil
	case tea.KeyEnter:
		s.filtering = false
		s.filter.Blur()
		return s, nil
	case tea.KeyUp:
		s.move(-1)
		return s, nil
	case tea.KeyDown:
		s.move(1)
		return s, nil
	}
	var cmd tea.Cmd
	s.filter, cmd = s.filter.Update(key)
	s.cursor = 0
	return s, cmd
}

func (s *Sidebar) stopRename() {
	s.renaming = false
	s.renameID = 0
	s.rename.Blur()
	s.rename.SetValue("")
}

func (s *Sidebar) move(delta int) {
	s.cursor += delta
	s.clampCursor()
}

func (s *Sidebar) clampCursor() {
	n := len(s.Visible())
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the sidebar.
func (s Sidebar) View() string {
	if s.width <= 0 {
		return ""
	}
	inner := max(s.width-4, 8)

	var b strings.Builder
	b.WriteString(s.theme.HeaderTitle.Render("Conversations"))
	b.WriteString("\n")
	if s.filtering || s.filter.Value() != "" {
		b.WriteString(s.filter.View())
		b.WriteString("\n")
	}

	vis := s.Visible()
	if len(vis) == 0 {
		if len(s.items) == 0 {
			b.WriteString(s.theme.Muted.Render("No conversations yet.\nPress n to start one."))
		} else {
			b.WriteString(s.theme.Muted.Render("No matches"))
		}
	}

	// Two lines per entry; scroll so the cursor stays visible.
	rows := max((s.height-6)/2, 1)
	start := 0
	if s.cursor >= rows {
		start = s.cursor - rows + 1
	}
	for i := start; i < len(vis) && i < start+rows; i++ {
		conv := vis[i]
		if s.renaming && conv.ID == s.renameID {
			b.WriteString(s.rename.View())
			b.WriteString("\n\n")
			continue
		}

		title := runewidth.Truncate(conv.DisplayTitle(), inner-2, "...")
		marker := "  "
		if conv.ID == s.activeID {
			marker = "* "
		}
		line := runewidth.FillRight(marker+title, inner)
		switch {
		case s.focused && i == s.cursor:
			line = s.theme.SidebarCursor.Render(line)
		case conv.ID == s.activeID:
			line = s.theme.SidebarActive.Render(line)
		default:
			line = s.theme.SidebarItem.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
		b.WriteString(s.theme.SidebarMeta.Render("  " + s.relativeTime(conv)))
		b.WriteString("\n")
	}

	style := s.theme.Sidebar
	if s.focused {
		style = s.theme.SidebarFocus
	}
	return style.
		Width(s.width - 2).
		Height(max(s.height-2, 1)).
		Render(strings.TrimRight(b.String(), "\n"))
}

func (s Sidebar) relativeTime(conv model.Conversation) string {
	t := conv.Updated()
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, s.Now(), "ago", "from now")
}
