// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the widgets of the llmpad TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/llmpad/internal/app"
	"github.com/jeranaias/llmpad/internal/model"
	"github.com/jeranaias/llmpad/internal/ui/styles"
)

// DownloadModal offers the popular models and a free-form name, and shows
// the progress of the active pull.
type DownloadModal struct {
	theme *styles.Theme

	catalog []model.PopularModel
	remote  []string
	cursor  int
	custom  textinput.Model
	typing  bool

	state   app.DownloadSnapshot
	bar     progress.Model
	spinner spinner.Model

	width int
}

// NewDownloadModal creates the modal over the popular model catalog.
func NewDownloadModal(theme *styles.Theme) DownloadModal {
	custom := textinput.New()
	custom.Placeholder = "other model, e.g. llama3.1:8b"
	custom.Prompt = "> "
	custom.CharLimit = 128

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = theme.Spinner

	return DownloadModal{
		theme:   theme,
		catalog: model.PopularModels,
		custom:  custom,
		bar:     progress.New(progress.WithDefaultGradient()),
		spinner: sp,
		width:   70,
	}
}

// SetWidth sets the modal width.
func (m *DownloadModal) SetWidth(width int) {
	m.width = min(max(width, 50), 90)
	m.bar.Width = m.width - 12
	m.custom.Width = m.width - 10
}

// SetRemote updates the installed model names.
func (m *DownloadModal) SetRemote(names []string) { m.remote = names }

// SetState updates the download progress. It returns the spinner tick
// command when a download just became active.
func (m *DownloadModal) SetState(s app.DownloadSnapshot) tea.Cmd {
	wasBusy := m.state.Busy()
	m.state = s
	if s.Busy() && !wasBusy {
		return m.spinner.Tick
	}
	return nil
}

// Busy reports whether a download is active.
func (m DownloadModal) Busy() bool { return m.state.Busy() }

// Update handles keys and spinner ticks.
func (m DownloadModal) Update(msg tea.Msg) (DownloadModal, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.state.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m DownloadModal) handleKey(key tea.KeyMsg) (DownloadModal, tea.Cmd) {
	// Nothing but scrolling is allowed while a pull runs, Close included.
	busy := m.state.Busy()

	if m.typing {
		switch key.Type {
		case tea.KeyEsc, tea.KeyTab:
			m.typing = false
			m.custom.Blur()
			return m, nil
		case tea.KeyEnter:
			name := strings.TrimSpace(m.custom.Value())
			if busy || name == "" {
				return m, nil
			}
			m.custom.SetValue("")
			return m, emit(StartDownloadMsg{Name: name})
		}
		var cmd tea.Cmd
		m.custom, cmd = m.custom.Update(key)
		return m, cmd
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.catalog)-1 {
			m.cursor++
		}
	case "tab", "/":
		m.typing = true
		return m, m.custom.Focus()
	case "enter":
		if !busy && m.cursor < len(m.catalog) {
			return m, emit(StartDownloadMsg{Name: m.catalog[m.cursor].Name})
		}
	case "esc", "q":
		if !busy {
			return m, emit(OpenModalMsg{Modal: ModalNone})
		}
	}
	return m, nil
}

// View renders the modal.
func (m DownloadModal) View() string {
	t := m.theme
	busy := m.state.Busy()

	var b strings.Builder
	b.WriteString(t.ModalTitle.Render("Download models"))
	b.WriteString("\n")

	nameW := 22
	for i, pm := range m.catalog {
		name := runewidth.FillRight(runewidth.Truncate(pm.Name, nameW, "..."), nameW)
		size := runewidth.FillLeft(sizeLabel(pm.Size), 8)
		desc := runewidth.Truncate(pm.Description, max(m.width-nameW-24, 10), "...")
		line := fmt.Sprintf("%s %s  %s", name, size, desc)
		if model.IsInstalled(pm.Name, m.remote) {
			line += " " + styles.StatusIndicators.Success
		}
		switch {
		case i == m.cursor && !m.typing && !busy:
			line = t.ListSelected.Render(line)
		case i == m.cursor && !m.typing:
			line = t.ListItem.Foreground(styles.TextMuted).Render(line)
		default:
			line = t.ListItem.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.custom.View())
	b.WriteString("\n\n")

	if busy {
		b.WriteString(m.progressView())
		b.WriteString("\n\n")
	}

	downloadStyle, closeStyle := t.Button, t.Button
	if busy {
		downloadStyle, closeStyle = t.ButtonDisabled, t.ButtonDisabled
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		downloadStyle.Render("Download (enter)"),
		closeStyle.Render("Close (esc)"),
	))
	return t.Modal.Width(m.width).Render(b.String())
}

func (m DownloadModal) progressView() string {
	t := m.theme
	head := t.Label.Render("Downloading " + m.state.Active)
	if m.state.HasPercent {
		return head + "\n" + m.bar.ViewAs(m.state.Percent/100) + "\n" +
			t.Muted.Render(runewidth.Truncate(m.state.Status, m.width-8, "..."))
	}
	status := m.state.Status
	if status == "" {
		status = "Starting download..."
	}
	return head + "\n" + m.spinner.View() + " " +
		t.ThinkingText.Render(runewidth.Truncate(status, m.width-10, "..."))
}

// sizeLabel normalises catalog sizes ("2GB" -> "2.0 GB").
func sizeLabel(s string) string {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return s
	}
	return humanize.Bytes(n)
}
