// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/llmpad/internal/app"
	"github.com/jeranaias/llmpad/internal/model"
	"github.com/jeranaias/llmpad/internal/ui/styles"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

// msgOf runs cmd and returns its message, or nil.
func msgOf(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func typeInto[T interface{ Update(tea.Msg) (T, tea.Cmd) }](m T, text string) T {
	for _, r := range text {
		m, _ = m.Update(runes(string(r)))
	}
	return m
}

// =============================================================================
// SIDEBAR
// =============================================================================

func newTestSidebar() Sidebar {
	s := NewSidebar(styles.NewTheme(styles.ModeDark))
	s.SetSize(30, 30)
	s.Focus()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return now }
	s.SetItems([]model.Conversation{
		{ID: 3, Title: "Python tips", UpdatedAt: "2025-03-01 11:55:00.000"},
		{ID: 2, Title: "Go generics", UpdatedAt: "2025-02-28 12:00:00.000"},
		{ID: 1, Title: "Rust lifetimes", UpdatedAt: "2025-02-01 12:00:00.000"},
	}, 2)
	return s
}

func TestSidebar_NavigateAndSelect(t *testing.T) {
	s := newTestSidebar()

	s, _ = s.Update(down)
	s, cmd := s.Update(enter)
	msg, ok := msgOf(cmd).(SelectConversationMsg)
	require.True(t, ok)
	assert.Equal(t, int64(2), msg.Conversation.ID)
}

func TestSidebar_NewAndDelete(t *testing.T) {
	s := newTestSidebar()

	_, cmd := s.Update(runes("n"))
	assert.IsType(t, NewConversationMsg{}, msgOf(cmd))

	_, cmd = s.Update(runes("d"))
	assert.Equal(t, DeleteConversationMsg{ID: 3}, msgOf(cmd))
}

func TestSidebar_FuzzyFilter(t *testing.T) {
	s := newTestSidebar()

	s, _ = s.Update(runes("/"))
	require.True(t, s.Editing())
	s = typeInto(s, "pyth")
	vis := s.Visible()
	require.Len(t, vis, 1)
	assert.Equal(t, "Python tips", vis[0].Title)

	s, _ = s.Update(esc)
	assert.False(t, s.Editing())
	assert.Len(t, s.Visible(), 3)
}

func TestSidebar_InlineRename(t *testing.T) {
	s := newTestSidebar()

	s, _ = s.Update(runes("r"))
	require.True(t, s.Editing())
	s = typeInto(s, " 2")
	s, cmd := s.Update(enter)

	assert.False(t, s.Editing())
	assert.Equal(t, RenameConversationMsg{ID: 3, Title: "Python tips 2"}, msgOf(cmd))
}

func TestSidebar_RenameUnchangedOrBlankIsDropped(t *testing.T) {
	s := newTestSidebar()

	s, _ = s.Update(runes("r"))
	s, cmd := s.Update(enter)
	assert.False(t, s.Editing())
	assert.Nil(t, msgOf(cmd))

	s, _ = s.Update(runes("r"))
	require.True(t, s.Editing())
	for range "Python tips" {
		s, _ = s.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	s, cmd = s.Update(enter)
	assert.False(t, s.Editing())
	assert.Nil(t, msgOf(cmd))
}

func TestSidebar_ViewShowsTitlesAndRelativeTimes(t *testing.T) {
	s := newTestSidebar()
	view := s.View()
	assert.Contains(t, view, "Python tips")
	assert.Contains(t, view, "5 minutes ago")
}

func TestSidebar_EmptyState(t *testing.T) {
	s := NewSidebar(styles.NewTheme(styles.ModeDark))
	s.SetSize(30, 20)
	assert.Contains(t, s.View(), "No conversations yet.")
	_, ok := s.Selected()
	assert.False(t, ok)
}

// =============================================================================
// MESSAGES
// =============================================================================

func TestIsErrorMessage(t *testing.T) {
	now := time.Now()
	errMsg := model.NewErrorMessage(1, errors.New("boom"), now)
	assert.True(t, IsErrorMessage(errMsg))

	persisted := model.Message{ID: model.ConfirmedID(4), Role: model.RoleAssistant, Content: "Error: is a word"}
	assert.False(t, IsErrorMessage(persisted))
	assert.False(t, IsErrorMessage(model.NewPendingUserMessage(1, "Error: mine", now)))
}

func TestLastAssistantSkipsErrors(t *testing.T) {
	now := time.Now()
	msgs := []model.Message{
		{ID: model.ConfirmedID(1), Role: model.RoleUser, Content: "hi"},
		{ID: model.ConfirmedID(2), Role: model.RoleAssistant, Content: "hello"},
		model.NewPendingUserMessage(1, "again", now),
		model.NewErrorMessage(1, errors.New("boom"), now),
	}
	got, ok := LastAssistant(msgs)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Content)

	_, ok = LastAssistant(msgs[:1])
	assert.False(t, ok)
}

func TestMessageRenderer(t *testing.T) {
	r := NewMessageRenderer(styles.NewTheme(styles.ModeDark), true)
	r.SetWidth(60)

	out := r.Render([]model.Message{
		{ID: model.ConfirmedID(1), Role: model.RoleUser, Content: "what is go"},
		{ID: model.ConfirmedID(2), Role: model.RoleAssistant, Content: "A **language**."},
		model.NewErrorMessage(1, errors.New("connection refused"), time.Now()),
	})
	assert.Contains(t, out, "You")
	assert.Contains(t, out, "what is go")
	assert.Contains(t, out, "language")
	assert.Contains(t, out, "Error: connection refused")
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSettingsModal_EditAndSave(t *testing.T) {
	m := NewSettingsModal(styles.NewTheme(styles.ModeDark))
	m.Open(model.Settings{APIURL: "http://localhost:11434/v1", Model: "llama3.2"})

	m, _ = m.Update(tab)
	m = typeInto(m, "sk-123")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	msg, ok := msgOf(cmd).(SaveSettingsMsg)
	require.True(t, ok)
	assert.Equal(t, model.Settings{APIURL: "http://localhost:11434/v1", APIKey: "sk-123", Model: "llama3.2"}, msg.Settings)
	assert.NotContains(t, m.View(), "sk-123")
}

func TestSettingsModal_PickerFiltersRemote(t *testing.T) {
	m := NewSettingsModal(styles.NewTheme(styles.ModeDark))
	m.Open(model.Settings{APIURL: "http://localhost:11434/v1"})
	m.SetRemote([]string{"llama3.2:latest", "mistral:latest", "phi3:latest"}, nil)

	m, _ = m.Update(tab)
	m, _ = m.Update(tab)
	m = typeInto(m, "mist")
	assert.Equal(t, []string{"mistral:latest"}, m.candidates())

	m, _ = m.Update(enter)
	assert.Equal(t, "mistral:latest", m.Settings().Model)
}

func TestSettingsModal_EscCancels(t *testing.T) {
	m := NewSettingsModal(styles.NewTheme(styles.ModeDark))
	_, cmd := m.Update(esc)
	assert.Equal(t, OpenModalMsg{Modal: ModalNone}, msgOf(cmd))
}

func TestSettingsModal_RemoteErrorShown(t *testing.T) {
	m := NewSettingsModal(styles.NewTheme(styles.ModeDark))
	m.SetRemote([]string{}, errors.New("connection refused"))
	assert.Contains(t, m.View(), "connection refused")
}

// =============================================================================
// MODEL MANAGER
// =============================================================================

func TestModelManager_CreateAndBack(t *testing.T) {
	m := NewModelManager(styles.NewTheme(styles.ModeDark), "/models")
	m.SetSize(100, 30)
	m.SetFiles([]model.ModelFileInfo{
		{ModelFile: model.ModelFile{Name: "coder", Path: "/models/coder.Modelfile", Content: "FROM codellama"}, BaseModel: "codellama", BaseAvailable: true},
		{ModelFile: model.ModelFile{Name: "tiny", Path: "/models/tiny.Modelfile", Content: "FROM llama3.2:1b"}, BaseModel: "llama3.2:1b"},
	})

	m, _ = m.Update(down)
	_, cmd := m.Update(runes("c"))
	msg, ok := msgOf(cmd).(CreateModelMsg)
	require.True(t, ok)
	assert.Equal(t, "tiny", msg.File.Name)
	assert.Contains(t, m.View(), "not installed")

	m.SetBusy(true)
	_, cmd = m.Update(enter)
	assert.Nil(t, cmd)

	_, cmd = m.Update(esc)
	assert.Equal(t, OpenModalMsg{Modal: ModalSettings}, msgOf(cmd))
}

func TestHighlightModelfileKeepsText(t *testing.T) {
	out := HighlightModelfile("FROM llama3.2\nPARAMETER temperature 0.7", "monokai")
	assert.Contains(t, out, "llama3.2")
	assert.Contains(t, out, "temperature")
}

// =============================================================================
// DOWNLOADER
// =============================================================================

func TestDownloadModal_StartAndBusyLock(t *testing.T) {
	m := NewDownloadModal(styles.NewTheme(styles.ModeDark))

	_, cmd := m.Update(enter)
	assert.Equal(t, StartDownloadMsg{Name: model.PopularModels[0].Name}, msgOf(cmd))

	m.SetState(app.DownloadSnapshot{State: app.DownloadStreaming, Active: "llama3.2", Status: "pulling a: 1.0 MB / 4.0 MB", Percent: 25, HasPercent: true})
	_, cmd = m.Update(enter)
	assert.Nil(t, cmd)
	_, cmd = m.Update(esc)
	assert.Nil(t, cmd, "close is disabled while busy")
	assert.Contains(t, m.View(), "Downloading llama3.2")

	m.SetState(app.DownloadSnapshot{})
	_, cmd = m.Update(esc)
	assert.Equal(t, OpenModalMsg{Modal: ModalNone}, msgOf(cmd))
}

func TestDownloadModal_IndeterminateStatus(t *testing.T) {
	m := NewDownloadModal(styles.NewTheme(styles.ModeDark))
	m.SetState(app.DownloadSnapshot{State: app.DownloadRequesting, Active: "phi3"})
	assert.Contains(t, m.View(), "Starting download...")

	m.SetState(app.DownloadSnapshot{State: app.DownloadStreaming, Active: "phi3", Status: "pulling manifest"})
	assert.Contains(t, m.View(), "pulling manifest")
}

func TestDownloadModal_CustomName(t *testing.T) {
	m := NewDownloadModal(styles.NewTheme(styles.ModeDark))
	m, _ = m.Update(tab)
	m = typeInto(m, "qwen2.5:7b")
	_, cmd := m.Update(enter)
	assert.Equal(t, StartDownloadMsg{Name: "qwen2.5:7b"}, msgOf(cmd))
}

func TestDownloadModal_InstalledMarker(t *testing.T) {
	m := NewDownloadModal(styles.NewTheme(styles.ModeDark))
	m.SetRemote([]string{"mistral:latest"})
	var line string
	for _, l := range strings.Split(m.View(), "\n") {
		if strings.Contains(l, "Mistral 7B") {
			line = l
		}
	}
	assert.Contains(t, line, styles.StatusIndicators.Success)
}

func TestSizeLabel(t *testing.T) {
	assert.Equal(t, "2.0 GB", sizeLabel("2GB"))
	assert.Equal(t, "1.3 GB", sizeLabel("1.3GB"))
	assert.Equal(t, "huge", sizeLabel("huge"))
}

// =============================================================================
// ALERTS
// =============================================================================

func TestAlertQueue(t *testing.T) {
	a := NewAlertQueue(styles.NewTheme(styles.ModeDark))
	assert.False(t, a.Active())

	a.Push("Model 'phi3' downloaded successfully!")
	a.Push("   ")
	a.Push("Error downloading model: boom")
	assert.True(t, a.Active())
	assert.Contains(t, a.View(), "1 more")

	a.Dismiss()
	assert.Equal(t, "Error downloading model: boom", a.Current())
	assert.Contains(t, a.View(), styles.StatusIndicators.Error)

	a.Dismiss()
	assert.False(t, a.Active())
	assert.Empty(t, a.View())
}
