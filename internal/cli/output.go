// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/jeranaias/llmpad/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	titleStyle   = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(12)
	valueStyle   = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	dimStyle     = lipgloss.NewStyle().Foreground(styles.TextMuted)
	promptStyle  = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(styles.Emerald)
	warningStyle = lipgloss.NewStyle().Foreground(styles.Amber)
	errorStyle   = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
)

func init() {
	lipgloss.SetColorProfile(colorProfile())
}

// colorProfile honours NO_COLOR and FORCE_COLOR, and drops colour when
// stdout is not a terminal.
func colorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return termenv.TrueColor
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func renderError(err error) string {
	return errorStyle.Render("Error:") + " " + err.Error()
}

// =============================================================================
// MARKDOWN
// =============================================================================

// markdown renders assistant replies for a terminal writer and passes them
// through unchanged otherwise.
type markdown struct {
	renderer *glamour.TermRenderer
}

func newMarkdown(w io.Writer, theme string, wrap int) *markdown {
	if !isTerminal(w) {
		return &markdown{}
	}
	var opts []glamour.TermRendererOption
	switch styles.ParseMode(theme) {
	case styles.ModeLight:
		opts = append(opts, glamour.WithStandardStyle("light"))
	case styles.ModeDark:
		opts = append(opts, glamour.WithStandardStyle("dark"))
	default:
		opts = append(opts, glamour.WithAutoStyle())
	}
	if wrap > 0 {
		opts = append(opts, glamour.WithWordWrap(wrap))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return &markdown{}
	}
	return &markdown{renderer: r}
}

func (m *markdown) Render(content string) string {
	if m.renderer == nil {
		return ensureNewline(content)
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return ensureNewline(content)
	}
	return out
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// =============================================================================
// TABLES
// =============================================================================

// renderTable lays rows out in aligned columns under a bold header line.
func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingRight(2)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			return s
		})
	return t.Render() + "\n"
}
