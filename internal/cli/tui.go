// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/llmpad/internal/app"
	"github.com/jeranaias/llmpad/internal/modelfile"
	"github.com/jeranaias/llmpad/internal/ui/chat"
	"github.com/jeranaias/llmpad/internal/ui/styles"
)

// runTUI starts the full-screen interface. Logs only go to the log file
// while the program owns the terminal.
func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	s, err := openSession(cmd, opts, false)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	notifier := chat.NewNotifier()
	defer notifier.Close()

	a := app.New(s.gateway, app.Options{
		Notifier: notifier,
		Logger:   s.log,
	})

	theme := styles.NewTheme(styles.ParseMode(s.cfg.UI.Theme))
	m := chat.New(ctx, a, chat.Options{
		Theme:     theme,
		WordWrap:  s.cfg.UI.WordWrap > 0,
		ModelsDir: s.cfg.ModelsDir,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	a.OnChange(chat.RefreshOnChange(p.Send))
	notifier.Attach(p.Send)

	if err := os.MkdirAll(s.cfg.ModelsDir, 0755); err != nil {
		s.log.Warn().Err(err).Str("dir", s.cfg.ModelsDir).Msg("cannot create models directory")
	} else if w, err := modelfile.NewWatcher(s.cfg.ModelsDir, 0,
		func() { _ = a.Catalog.LoadModelFiles(ctx) },
		func(err error) { s.log.Warn().Err(err).Msg("modelfile watcher") },
	); err != nil {
		s.log.Warn().Err(err).Str("dir", s.cfg.ModelsDir).Msg("cannot watch models directory")
	} else {
		go w.Run(ctx)
		defer w.Close()
	}

	s.log.Info().Str("version", Version).Msg("starting tui")
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
