// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the widgets of the llmpad TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/jeranaias/llmpad/internal/model"
	"github.com/jeranaias/llmpad/internal/ui/styles"
)

const (
	fieldURL = iota
	fieldKey
	fieldModel
	buttonRefresh
	buttonManager
	buttonDownloader
	buttonSave
	buttonCancel
	settingsFocusCount
)

const pickerRows = 6

var settingsButtons = []struct {
	focus int
	label string
}{
	{buttonRefresh, "Refresh models"},
	{buttonManager, "Modelfiles"},
	{buttonDownloader, "Download"},
	{buttonSave, "Save"},
	{buttonCancel, "Cancel"},
}

// SettingsModal edits the connection settings.
type SettingsModal struct {
	theme *styles.Theme

	url   textinput.Model
	key   textinput.Model
	model textinput.Model
	focus int

	remote       []string
	remoteErr    error
	pickerCursor int

	width int
}

// NewSettingsModal creates the modal.
func NewSettingsModal(theme *styles.Theme) SettingsModal {
	url := textinput.New()
	url.Placeholder = model.DefaultAPIURL
	url.Prompt = ""
	url.CharLimit = 512

	key := textinput.New()
	key.Placeholder = "optional"
	key.Prompt = ""
	key.EchoMode = textinput.EchoPassword
	key.EchoCharacter = '*'
	key.CharLimit = 512

	mdl := textinput.New()
	mdl.Placeholder = model.DefaultModel
	mdl.Prompt = ""
	mdl.CharLimit = 256

	return SettingsModal{theme: theme, url: url, key: key, model: mdl, width: 60}
}

// Open loads s into the fields and focuses the URL.
func (m *SettingsModal) Open(s model.Settings) tea.Cmd {
	m.url.SetValue(s.APIURL)
	m.key.SetValue(s.APIKey)
	m.model.SetValue(s.Model)
	m.pickerCursor = 0
	return m.setFocus(fieldURL)
}

// SetRemote updates the installed models offered by the picker.
func (m *SettingsModal) SetRemote(names []string, err error) {
	m.remote = names
	m.remoteErr = err
	if m.pickerCursor >= len(m.candidates()) {
		m.pickerCursor = 0
	}
}

// SetWidth sets the modal width.
func (m *SettingsModal) SetWidth(width int) {
	m.width = min(max(width, 40), 80)
	for _, in := range []*textinput.Model{&m.url, &m.key, &m.model} {
		in.Width = m.width - 8
	}
}

// Settings returns the values being edited.
func (m SettingsModal) Settings() model.Settings {
	return model.Settings{
		APIURL: strings.TrimSpace(m.url.Value()),
		APIKey: strings.TrimSpace(m.key.Value()),
		Model:  strings.TrimSpace(m.model.Value()),
	}
}

// candidates are the remote models matching the model field, best first.
// An exact match or an empty field lists everything.
func (m SettingsModal) candidates() []string {
	q := strings.TrimSpace(m.model.Value())
	if q == "" {
		return m.remote
	}
	for _, r := range m.remote {
		if r == q {
			return m.remote
		}
	}
	matches := fuzzy.Find(q, m.remote)
	out := make([]string, 0, len(matches))
	for _, mt := range matches {
		out = append(out, mt.Str)
	}
	return out
}

func (m SettingsModal) pickerActive() bool {
	return m.focus == fieldModel && len(m.remote) > 0
}

func (m *SettingsModal) setFocus(f int) tea.Cmd {
	m.focus = (f + settingsFocusCount) % settingsFocusCount
	m.url.Blur()
	m.key.Blur()
	m.model.Blur()
	switch m.focus {
	case fieldURL:
		return m.url.Focus()
	case fieldKey:
		return m.key.Focus()
	case fieldModel:
		return m.model.Focus()
	}
	return nil
}

// Update handles keys while the modal is open.
func (m SettingsModal) Update(msg tea.Msg) (SettingsModal, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "esc":
		return m, emit(OpenModalMsg{Modal: ModalNone})
	case "ctrl+s":
		return m, emit(SaveSettingsMsg{Settings: m.Settings()})
	case "tab":
		return m, m.setFocus(m.focus + 1)
	case "shift+tab":
		return m, m.setFocus(m.focus - 1)
	}

	if m.pickerActive() {
		cands := m.candidates()
		switch key.String() {
		case "up":
			if m.pickerCursor > 0 {
				m.pickerCursor--
			}
			return m, nil
		case "down":
			if m.pickerCursor < len(cands)-1 {
				m.pickerCursor++
			}
			return m, nil
		case "enter":
			if m.pickerCursor < len(cands) {
				m.model.SetValue(cands[m.pickerCursor])
				m.model.CursorEnd()
			}
			return m, m.setFocus(m.focus + 1)
		}
	}

	switch m.focus {
	case fieldURL, fieldKey, fieldModel:
		if key.Type == tea.KeyEnter {
			return m, m.setFocus(m.focus + 1)
		}
		var cmd tea.Cmd
		switch m.focus {
		case fieldURL:
			m.url, cmd = m.url.Update(key)
		case fieldKey:
			m.key, cmd = m.key.Update(key)
		case fieldModel:
			m.model, cmd = m.model.Update(key)
			m.pickerCursor = 0
		}
		return m, cmd
	}

	switch key.String() {
	case "left":
		return m, m.setFocus(m.focus - 1)
	case "right":
		return m, m.setFocus(m.focus + 1)
	case "enter", " ":
		return m, m.press()
	}
	return m, nil
}

func (m SettingsModal) press() tea.Cmd {
	switch m.focus {
	case buttonRefresh:
		return emit(RefreshRemoteMsg{})
	case buttonManager:
		return emit(OpenModalMsg{Modal: ModalManager})
	case buttonDownloader:
		return emit(OpenModalMsg{Modal: ModalDownloader})
	case buttonSave:
		return emit(SaveSettingsMsg{Settings: m.Settings()})
	case buttonCancel:
		return emit(OpenModalMsg{Modal: ModalNone})
	}
	return nil
}

// View renders the modal.
func (m SettingsModal) View() string {
	t := m.theme
	var b strings.Builder
	b.WriteString(t.ModalTitle.Render("Settings"))
	b.WriteString("\n")

	field := func(f int, label string, in textinput.Model) {
		ls := t.Label
		if m.focus == f {
			ls = t.FieldFocused
		}
		b.WriteString(ls.Render(label))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	field(fieldURL, "API URL", m.url)
	field(fieldKey, "API key", m.key)
	field(fieldModel, "Model", m.model)

	switch {
	case m.remoteErr != nil:
		b.WriteString(styles.RenderWarning("Could not list models: " + m.remoteErr.Error()))
		b.WriteString("\n\n")
	case len(m.remote) == 0:
		b.WriteString(t.Muted.Render("No installed models found; type a model name."))
		b.WriteString("\n\n")
	case m.pickerActive():
		b.WriteString(m.pickerView())
		b.WriteString("\n\n")
	}

	buttons := make([]string, 0, len(settingsButtons))
	for _, btn := range settingsButtons {
		style := t.Button
		if m.focus == btn.focus {
			style = t.ButtonActive
		}
		buttons = append(buttons, style.Render(btn.label))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	b.WriteString("\n\n")
	b.WriteString(t.Muted.Render("tab next  ctrl+s save  esc cancel"))

	return t.Modal.Width(m.width).Render(b.String())
}

func (m SettingsModal) pickerView() string {
	cands := m.candidates()
	if len(cands) == 0 {
		return m.theme.Muted.Render("No installed model matches")
	}
	start := 0
	if m.pickerCursor >= pickerRows {
		start = m.pickerCursor - pickerRows + 1
	}
	lines := make([]string, 0, pickerRows)
	for i := start; i < len(cands) && i < start+pickerRows; i++ {
		if i == m.pickerCursor {
			lines = append(lines, m.theme.ListSelected.Render(cands[i]))
		} else {
			lines = append(lines, m.theme.ListItem.Render(cands[i]))
		}
	}
	return strings.Join(lines, "\n")
}
