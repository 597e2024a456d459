// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the widgets of the llmpad TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/llmpad/internal/model"
	"github.com/jeranaias/llmpad/internal/ui/styles"
)

// ModelManager lists the model files with a highlighted preview.
type ModelManager struct {
	theme *styles.Theme

	files   []model.ModelFileInfo
	dir     string
	cursor  int
	busy    bool
	preview viewport.Model

	width  int
	height int
}

// NewModelManager creates the manager for files found in dir.
func NewModelManager(theme *styles.Theme, dir string) ModelManager {
	return ModelManager{
		theme:   theme,
		dir:     dir,
		preview: viewport.New(40, 10),
		width:   80,
		height:  24,
	}
}

// SetFiles replaces the file list.
func (m *ModelManager) SetFiles(files []model.ModelFileInfo) {
	m.files = files
	if m.cursor >= len(files) {
		m.cursor = max(len(files)-1, 0)
	}
	m.syncPreview()
}

// SetBusy disables Create while a create call is running.
func (m *ModelManager) SetBusy(busy bool) { m.busy = busy }

// SetSize sets the modal dimensions.
func (m *ModelManager) SetSize(width, height int) {
	m.width = max(width, 50)
	m.height = max(height, 12)
	m.preview.Width = m.previewWidth()
	m.preview.Height = m.height - 10
	m.syncPreview()
}

func (m ModelManager) listWidth() int    { return min(m.width/3, 32) }
func (m ModelManager) previewWidth() int { return m.width - m.listWidth() - 10 }

// Selected returns the file under the cursor.
func (m ModelManager) Selected() (model.ModelFileInfo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.files) {
		return model.ModelFileInfo{}, false
	}
	return m.files[m.cursor], true
}

func (m *ModelManager) syncPreview() {
	f, ok := m.Selected()
	if !ok {
		m.preview.SetContent("")
		return
	}
	m.preview.SetContent(HighlightModelfile(f.Content, m.theme.ChromaStyle()))
	m.preview.GotoTop()
}

// Update handles keys while the manager is open.
func (m ModelManager) Update(msg tea.Msg) (ModelManager, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "esc", "b":
		return m, emit(OpenModalMsg{Modal: ModalSettings})
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.syncPreview()
		}
	case "down", "j":
		if m.cursor < len(m.files)-1 {
			m.cursor++
			m.syncPreview()
		}
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	case "enter", "c":
		if f, ok := m.Selected(); ok && !m.busy {
			return m, emit(CreateModelMsg{File: f.ModelFile})
		}
	case "r":
		return m, tea.Batch(emit(RefreshModelFilesMsg{}), emit(RefreshRemoteMsg{}))
	}
	return m, nil
}

// View renders the manager.
func (m ModelManager) View() string {
	t := m.theme
	lw := m.listWidth()

	var list strings.Builder
	if len(m.files) == 0 {
		list.WriteString(t.Muted.Render(fmt.Sprintf("No .Modelfile files in\n%s", m.dir)))
	}
	for i, f := range m.files {
		name := runewidth.Truncate(f.Name, lw-4, "...")
		line := runewidth.FillRight(name, lw-2)
		if i == m.cursor {
			line = t.ListSelected.Render(line)
		} else {
			line = t.ListItem.Render(line)
		}
		list.WriteString(line)
		list.WriteString("\n")
	}

	var detail strings.Builder
	if f, ok := m.Selected(); ok {
		detail.WriteString(t.Path.Render(runewidth.Truncate(f.Path, m.previewWidth(), "...")))
		detail.WriteString("\n")
		detail.WriteString(m.baseStatus(f))
		detail.WriteString("\n")
		detail.WriteString(t.CodeBlock.Width(m.previewWidth()).Render(m.preview.View()))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(lw).Render(strings.TrimRight(list.String(), "\n")),
		"  ",
		detail.String(),
	)

	createStyle := t.Button
	if m.busy || len(m.files) == 0 {
		createStyle = t.ButtonDisabled
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		createStyle.Render("Create (c)"),
		t.Button.Render("Refresh (r)"),
		t.Button.Render("Back (esc)"),
	)

	return t.Modal.Width(m.width).Render(
		t.ModalTitle.Render("Modelfiles") + "\n" + body + "\n\n" + buttons,
	)
}

func (m ModelManager) baseStatus(f model.ModelFileInfo) string {
	switch {
	case f.BaseModel == "":
		return styles.RenderError("No FROM line")
	case f.BaseAvailable:
		return styles.RenderSuccess("Base model " + f.BaseModel + " is installed")
	default:
		return styles.RenderWarning("Base model " + f.BaseModel + " is not installed")
	}
}
