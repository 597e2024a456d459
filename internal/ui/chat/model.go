// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the root Bubble Tea model of the llmpad TUI.
package chat

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/llmpad/internal/app"
	"github.com/jeranaias/llmpad/internal/ui/components"
	"github.com/jeranaias/llmpad/internal/ui/styles"
)

// focusArea is the widget receiving keys when no modal is open.
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// Options configures New.
type Options struct {
	Theme     *styles.Theme
	WordWrap  bool
	ModelsDir string

	// Copy writes to the system clipboard. Defaults to clipboard.WriteAll.
	Copy func(text string) error
}

// Model is the root model: sidebar, transcript, input and the modals.
type Model struct {
	ctx   context.Context
	app   *app.App
	theme *styles.Theme
	keys  KeyMap
	help  help.Model

	sidebar    components.Sidebar
	renderer   *components.MessageRenderer
	viewport   viewport.Model
	input      textarea.Model
	spinner    spinner.Model
	settings   components.SettingsModal
	manager    components.ModelManager
	downloader components.DownloadModal
	alerts     components.AlertQueue

	modal    components.Modal
	focus    focusArea
	sending  bool
	creating bool
	status   string
	rendered int // message count last rendered

	width  int
	height int
	ready  bool

	copy func(string) error
}

// New creates the root model over a. ctx bounds every store call.
func New(ctx context.Context, a *app.App, opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ModeAuto)
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}

	keys := DefaultKeyMap()

	input := textarea.New()
	input.Placeholder = "Type a message..."
	input.ShowLineNumbers = false
	input.Prompt = ""
	input.CharLimit = 0
	input.SetHeight(3)
	input.KeyMap.InsertNewline = keys.Newline
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return Model{
		ctx:        ctx,
		app:        a,
		theme:      theme,
		keys:       keys,
		help:       help.New(),
		sidebar:    components.NewSidebar(theme),
		renderer:   components.NewMessageRenderer(theme, opts.WordWrap),
		viewport:   viewport.New(80, 20),
		input:      input,
		spinner:    sp,
		settings:   components.NewSettingsModal(theme),
		manager:    components.NewModelManager(theme, opts.ModelsDir),
		downloader: components.NewDownloadModal(theme),
		alerts:     components.NewAlertQueue(theme),
		copy:       opts.Copy,
	}
}

// Init performs the initial loads.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.run(func(ctx context.Context) error {
		return m.app.Start(ctx)
	}))
}

// Modal returns the open overlay.
func (m Model) Modal() components.Modal { return m.modal }

// Status returns the transient status line text.
func (m Model) Status() string { return m.status }

// =============================================================================
// STORE SYNC
// =============================================================================

// sync copies the store snapshots into the widgets. It returns the
// spinner command when a send or download just started.
func (m *Model) sync() tea.Cmd {
	var cmds []tea.Cmd

	conv := m.app.Conversations.Snapshot()
	var activeID int64
	if conv.Active != nil {
		activeID = conv.Active.ID
	}
	m.sidebar.SetItems(conv.List, activeID)

	if conv.Sending && !m.sending {
		cmds = append(cmds, m.spinner.Tick)
	}
	m.sending = conv.Sending

	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderer.Render(conv.Messages))
	if atBottom || len(conv.Messages) != m.rendered {
		m.viewport.GotoBottom()
	}
	m.rendered = len(conv.Messages)

	cat := m.app.Catalog.Snapshot()
	m.manager.SetFiles(cat.Files)
	m.settings.SetRemote(cat.Remote, cat.RemoteErr)
	m.downloader.SetRemote(cat.Remote)

	cmds = append(cmds, m.downloader.SetState(m.app.Downloads.Snapshot()))
	return tea.Batch(cmds...)
}

// opDoneMsg reports the end of a store call made from a command.
type opDoneMsg struct {
	op  string
	err error
}

// run executes fn as a command; the stores report failures themselves.
func (m Model) run(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{err: fn(ctx)}
	}
}

// runOp is run with an operation name for handlers that care about the
// outcome.
func (m Model) runOp(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) layout() {
	m.theme.SetSize(m.width, m.height)
	sw := m.theme.SidebarWidth()
	mainW := m.width - sw - 2

	headerH, inputH, statusH := 1, 5, 1
	bodyH := max(m.height-headerH-inputH-statusH, 3)

	m.sidebar.SetSize(sw, bodyH+inputH)
	m.viewport.Width = mainW
	m.viewport.Height = bodyH - 1
	m.renderer.SetWidth(mainW - 2)
	m.input.SetWidth(mainW - 2)
	m.help.Width = m.width

	m.settings.SetWidth(m.width - 10)
	m.manager.SetSize(m.width-6, m.height-4)
	m.downloader.SetWidth(m.width - 10)
	m.alerts.SetWidth(m.width - 20)
}
