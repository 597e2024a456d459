// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/MakeNowJust/heredoc"
	bar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/jeranaias/llmpad/internal/events"
	"github.com/jeranaias/llmpad/internal/progress"
)

func newPullCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pull <model>",
		Short: "Download a model into Ollama",
		Long: heredoc.Doc(`
			Download a model with the configured pull method (the ollama CLI
			by default, or the HTTP API when ollama.pull_method = "api").
			Progress is shown as a bar on a terminal and as plain status lines
			otherwise.
		`),
		Example: heredoc.Doc(`
			llmpad pull llama3.2
			llmpad pull qwen2.5:3b
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])

			s, err := openSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			sub, err := s.gateway.Listen(cmd.Context(), events.PullProgress)
			if err != nil {
				return err
			}
			defer sub.Close()

			out := cmd.OutOrStdout()
			pr := newPullPrinter(out, isTerminal(out))
			stop := make(chan struct{})
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case ev := <-sub.Events():
						if ev.Key == name {
							pr.line(ev.Payload)
						}
					case <-stop:
						// Emit hands events over before PullModel returns;
						// print whatever is still buffered.
						for {
							select {
							case ev := <-sub.Events():
								if ev.Key == name {
									pr.line(ev.Payload)
								}
							default:
								return
							}
						}
					}
				}
			}()

			msg, err := s.gateway.PullModel(cmd.Context(), name)
			close(stop)
			wg.Wait()
			pr.finish()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, successStyle.Render(msg))
			return nil
		},
	}
}

// pullPrinter renders status lines either as a redrawn progress bar or as
// de-duplicated plain lines.
type pullPrinter struct {
	out   io.Writer
	tty   bool
	bar   bar.Model
	last  string
	drawn bool
}

func newPullPrinter(out io.Writer, tty bool) *pullPrinter {
	return &pullPrinter{
		out: out,
		tty: tty,
		bar: bar.New(bar.WithDefaultGradient(), bar.WithWidth(30)),
	}
}

func (p *pullPrinter) line(status string) {
	status = strings.TrimSpace(status)
	if status == "" || status == p.last {
		return
	}
	p.last = status

	if !p.tty {
		fmt.Fprintln(p.out, status)
		return
	}
	text := ansi.Truncate(status, 50, "…")
	if pct, ok := progress.Parse(status); ok {
		text = p.bar.ViewAs(pct/100) + "  " + text
	}
	fmt.Fprint(p.out, "\r\x1b[2K"+text)
	p.drawn = true
}

func (p *pullPrinter) finish() {
	if p.drawn {
		fmt.Fprintln(p.out)
		p.drawn = false
	}
}
