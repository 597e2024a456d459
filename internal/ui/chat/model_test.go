// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/llmpad/internal/app"
	"github.com/jeranaias/llmpad/internal/backend"
	"github.com/jeranaias/llmpad/internal/completion"
	"github.com/jeranaias/llmpad/internal/events"
	"github.com/jeranaias/llmpad/internal/model"
	"github.com/jeranaias/llmpad/internal/modelfile"
	"github.com/jeranaias/llmpad/internal/storage"
	"github.com/jeranaias/llmpad/internal/ui/components"
	"github.com/jeranaias/llmpad/internal/ui/styles"
)

type stubCompleter struct {
	reply string
	err   error
}

func (s stubCompleter) Complete(ctx context.Context, req completion.Request) (string, error) {
	return s.reply, s.err
}

type stubModels struct{}

func (stubModels) ModelNames(ctx context.Context, apiURL string) ([]string, error) {
	return []string{"llama3.2:latest"}, nil
}

func (stubModels) Pull(ctx context.Context, name string, onLine func(string)) error { return nil }

func (stubModels) Create(ctx context.Context, name, content string) error { return nil }

type recorder struct {
	mu     sync.Mutex
	alerts []string
}

func (r *recorder) Alert(msg string) {
	r.mu.Lock()
	r.alerts = append(r.alerts, msg)
	r.mu.Unlock()
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.alerts...)
}

func newTestModel(t *testing.T, completer backend.Completer) (Model, *app.App, *recorder) {
	t.Helper()
	store, err := storage.Open(storage.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	gw := backend.NewLocal(backend.Options{
		Store:      store,
		Bus:        events.NewBus(),
		Completer:  completer,
		Puller:     stubModels{},
		Creator:    stubModels{},
		Remote:     stubModels{},
		ModelFiles: modelfile.NewFinder(t.TempDir()),
		Logger:     zerolog.Nop(),
	})
	rec := &recorder{}
	a := app.New(gw, app.Options{Notifier: rec, Logger: zerolog.Nop()})

	m := New(context.Background(), a, Options{
		Theme:    styles.NewTheme(styles.ModeDark),
		WordWrap: true,
		Copy:     func(string) error { return nil },
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, a, rec
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// drain runs cmd, expanding batches, and returns the messages produced.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// settle feeds the store results of cmd back into m.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range drain(cmd) {
		if _, ok := msg.(opDoneMsg); ok {
			m = update(t, m, msg)
		}
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestModel_LoadingBeforeSize(t *testing.T) {
	a := app.New(nil, app.Options{})
	m := New(context.Background(), a, Options{Theme: styles.NewTheme(styles.ModeDark)})
	assert.Equal(t, "Loading...", m.View())
}

func TestModel_EmptyState(t *testing.T) {
	m, _, _ := newTestModel(t, stubCompleter{reply: "hi"})
	view := m.View()
	assert.Contains(t, view, EmptyStateText)
	assert.Contains(t, view, model.DefaultTitle)
}

func TestModel_SendShowsOptimisticThenReply(t *testing.T) {
	m, a, _ := newTestModel(t, stubCompleter{reply: "Hello **there**"})

	m = typeText(t, m, "hello")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	snap := a.Conversations.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.True(t, snap.Messages[0].ID.IsPending())
	assert.True(t, snap.Sending)
	assert.Contains(t, m.View(), "Thinking...")

	// Enter while the reply is pending changes nothing.
	m = typeText(t, m, "again")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Len(t, a.Conversations.Snapshot().Messages, 1)

	m = settle(t, m, cmd)
	snap = a.Conversations.Snapshot()
	require.Len(t, snap.Messages, 2)
	assert.False(t, snap.Sending)
	require.NotNil(t, snap.Active)
	assert.Equal(t, "hello", snap.Active.Title)

	view := m.View()
	assert.Contains(t, view, "there")
	assert.NotContains(t, view, EmptyStateText)
}

func TestModel_SendFailureShownInline(t *testing.T) {
	m, a, rec := newTestModel(t, stubCompleter{err: errors.New("connection refused")})

	m = typeText(t, m, "hello")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(t, next.(Model), cmd)

	msgs := a.Conversations.Snapshot().Messages
	require.Len(t, msgs, 2)
	assert.True(t, components.IsErrorMessage(msgs[1]))
	assert.Contains(t, m.View(), "connection refused")
	assert.Empty(t, rec.all())
}

func TestModel_ThemeToggle(t *testing.T) {
	m, _, _ := newTestModel(t, stubCompleter{})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, "Theme: light", m.Status())
}

func TestModel_CopyLastResponse(t *testing.T) {
	m, _, _ := newTestModel(t, stubCompleter{reply: "copy me"})
	var copied string
	m.copy = func(s string) error { copied = s; return nil }

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "No response to copy", m.Status())

	m = typeText(t, m, "hi")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(t, next.(Model), cmd)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "copy me", copied)
	assert.Equal(t, "Copied 7 chars to clipboard", m.Status())
}

func TestModel_AlertModal(t *testing.T) {
	m, _, _ := newTestModel(t, stubCompleter{})
	m = update(t, m, AlertMsg{Text: "Model 'phi3' downloaded successfully!"})
	assert.Contains(t, m.View(), "downloaded successfully")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotContains(t, m.View(), "downloaded successfully")
}

func TestModel_SettingsSaveClosesModal(t *testing.T) {
	m, a, _ := newTestModel(t, stubCompleter{})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.Equal(t, components.ModalSettings, m.Modal())

	next, cmd := m.Update(components.SaveSettingsMsg{Settings: model.Settings{
		APIURL: "http://localhost:11434/v1",
		Model:  "llama3.2:latest",
	}})
	m = settle(t, next.(Model), cmd)

	assert.Equal(t, components.ModalNone, m.Modal())
	assert.Equal(t, "llama3.2:latest", a.Settings.Current().Model)
}

func TestModel_SettingsInvalidKeepsModal(t *testing.T) {
	m, a, rec := newTestModel(t, stubCompleter{})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	next, cmd := m.Update(components.SaveSettingsMsg{Settings: model.Settings{APIURL: "not a url", Model: "x"}})
	m = settle(t, next.(Model), cmd)

	assert.Equal(t, components.ModalSettings, m.Modal())
	assert.Equal(t, model.DefaultAPIURL, a.Settings.Current().APIURL)
	require.Len(t, rec.all(), 1)

	m = update(t, m, components.OpenModalMsg{Modal: components.ModalNone})
	assert.Equal(t, model.DefaultAPIURL, a.Settings.Draft().APIURL, "closing discards the draft")
}

func TestModel_SidebarFocusAndNewConversation(t *testing.T) {
	m, a, _ := newTestModel(t, stubCompleter{})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	m = next.(Model)
	for _, msg := range drain(cmd) {
		if _, ok := msg.(components.NewConversationMsg); ok {
			next, cmd = m.Update(msg)
			m = settle(t, next.(Model), cmd)
		}
	}

	snap := a.Conversations.Snapshot()
	require.Len(t, snap.List, 1)
	assert.Equal(t, model.DefaultTitle, snap.List[0].Title)
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func TestRefreshOnChangeDoesNotBlock(t *testing.T) {
	var sent atomic.Int32
	release := make(chan struct{})
	fire := RefreshOnChange(func(msg tea.Msg) {
		assert.IsType(t, RefreshMsg{}, msg)
		<-release
		sent.Add(1)
	})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			fire()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("fire blocked on a slow receiver")
	}
	close(release)

	require.Eventually(t, func() bool { return sent.Load() >= 1 }, time.Second, 5*time.Millisecond)
}

func TestNotifierDeliversInOrder(t *testing.T) {
	n := NewNotifier()
	n.Alert("first")
	n.Alert("second")

	got := make(chan string, 4)
	n.Attach(func(msg tea.Msg) { got <- msg.(AlertMsg).Text })
	n.Alert("third")

	for _, want := range []string{"first", "second", "third"} {
		select {
		case s := <-got:
			assert.Equal(t, want, s)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}

	n.Close()
	n.Alert("dropped")
	n.Close()
}

func TestNotifierFullBufferDoesNotBlock(t *testing.T) {
	n := NewNotifier()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < notifierBuffer*2; i++ {
			n.Alert("alert")
		}
		n.Close()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Alert or Close blocked with no receiver attached")
	}

	var count atomic.Int32
	n.Attach(func(tea.Msg) { count.Add(1) })
	require.Eventually(t, func() bool { return count.Load() == notifierBuffer }, time.Second, 5*time.Millisecond)
}
