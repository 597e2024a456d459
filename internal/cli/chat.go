// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/llmpad/internal/app"
	"github.com/jeranaias/llmpad/internal/model"
	"github.com/jeranaias/llmpad/internal/ui/components"
)

type chatOptions struct {
	conversation int64
	model        string
}

func newChatCmd(root *rootOptions) *cobra.Command {
	opts := &chatOptions{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive line-based chat",
		Long: heredoc.Doc(`
			Chat in the current terminal with line editing and input history.
			Replies are rendered as markdown when stdout is a terminal.

			Commands:
			  /new            start a new conversation
			  /list           list conversations
			  /open <id>      continue a conversation
			  /model [name]   show or change the model
			  /help           show this help
			  /quit           exit (Ctrl+D also works)
		`),
		Example: heredoc.Doc(`
			llmpad chat
			llmpad chat --conversation 3
			llmpad chat --model mistral
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			line := liner.NewLiner()
			line.SetCtrlCAborts(true)
			history := newHistory(s.cfg.HistoryPath())
			history.load(line)
			defer func() {
				history.save(line)
				line.Close()
			}()

			r, err := newREPL(cmd.Context(), s, out, opts)
			if err != nil {
				return err
			}
			return r.loop(func(prompt string) (string, error) {
				input, err := line.Prompt(prompt)
				if err == nil && strings.TrimSpace(input) != "" {
					line.AppendHistory(input)
				}
				return input, err
			})
		},
	}
	cmd.Flags().Int64VarP(&opts.conversation, "conversation", "c", 0, "continue the conversation with this id")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "use this model for the session")
	return cmd
}

// =============================================================================
// REPL
// =============================================================================

// repl drives the app stores from line input.
type repl struct {
	ctx context.Context
	app *app.App
	out io.Writer
	md  *markdown
}

func newREPL(ctx context.Context, s *session, out io.Writer, opts *chatOptions) (*repl, error) {
	r := &repl{ctx: ctx, out: out, md: newMarkdown(out, s.cfg.UI.Theme, s.cfg.UI.WordWrap)}
	r.app = app.New(s.gateway, app.Options{
		Notifier: app.NotifierFunc(r.alert),
		Logger:   s.log,
	})

	if err := r.app.Settings.Load(ctx); err != nil {
		return nil, err
	}
	if err := r.app.Conversations.Load(ctx); err != nil {
		return nil, err
	}
	if opts.model != "" {
		if err := r.useModel(opts.model); err != nil {
			return nil, err
		}
	}
	if opts.conversation != 0 {
		if err := r.open(opts.conversation); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *repl) alert(msg string) {
	fmt.Fprintln(r.out, warningStyle.Render(msg))
}

// loop reads lines until EOF, Ctrl+C or /quit.
func (r *repl) loop(read func(prompt string) (string, error)) error {
	r.banner()
	for {
		input, err := read(promptStyle.Render("you") + " > ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return err
		}
		if r.ctx.Err() != nil {
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if quit := r.command(input); quit {
				return nil
			}
			continue
		}
		r.send(input)
	}
}

func (r *repl) banner() {
	st := r.app.Settings.Current()
	fmt.Fprintln(r.out, titleStyle.Render("llmpad chat"))
	fmt.Fprintln(r.out, dimStyle.Render(fmt.Sprintf("%s @ %s  ·  /help for commands", st.Model, st.APIURL)))
	if active := r.app.Conversations.Snapshot().Active; active != nil {
		fmt.Fprintln(r.out, dimStyle.Render("continuing: "+active.DisplayTitle()))
	}
	fmt.Fprintln(r.out)
}

// useModel switches the model for this session only.
func (r *repl) useModel(name string) error {
	st := r.app.Settings.Current()
	st.Model = name
	return r.app.Settings.Override(st)
}

// send posts input and prints the last assistant message, which is the
// inline error on failure.
func (r *repl) send(input string) {
	if _, err := r.app.Conversations.Send(r.ctx, input); err != nil && r.ctx.Err() != nil {
		return
	}
	msgs := r.app.Conversations.Snapshot().Messages
	if len(msgs) == 0 {
		return
	}
	last := msgs[len(msgs)-1]
	if !last.IsAssistant() {
		return
	}
	if components.IsErrorMessage(last) {
		fmt.Fprintln(r.out, errorStyle.Render(last.Content))
		return
	}
	fmt.Fprint(r.out, r.md.Render(last.Content))
}

// command handles a slash command and reports whether to quit.
func (r *repl) command(input string) bool {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h":
		fmt.Fprintln(r.out, dimStyle.Render("/new  /list  /open <id>  /model [name]  /quit"))

	case "/new":
		conv, err := r.app.Conversations.Create(r.ctx, "")
		if err == nil {
			fmt.Fprintln(r.out, successStyle.Render(fmt.Sprintf("Started conversation %d", conv.ID)))
		}

	case "/list", "/ls":
		snap := r.app.Conversations.Snapshot()
		if len(snap.List) == 0 {
			fmt.Fprintln(r.out, dimStyle.Render("No conversations yet."))
		}
		for _, c := range snap.List {
			marker := " "
			if snap.Active != nil && snap.Active.ID == c.ID {
				marker = "*"
			}
			fmt.Fprintf(r.out, "%s %4d  %s\n", marker, c.ID, c.DisplayTitle())
		}

	case "/open":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			r.alert("usage: /open <id>")
			return false
		}
		if err := r.open(id); err != nil {
			r.alert(err.Error())
		}

	case "/model":
		if arg == "" {
			fmt.Fprintln(r.out, r.app.Settings.Current().Model)
			return false
		}
		if err := r.useModel(arg); err != nil {
			r.alert(err.Error())
			return false
		}
		fmt.Fprintln(r.out, successStyle.Render("Model set to "+arg))

	default:
		r.alert("Unknown command: " + name)
	}
	return false
}

// open selects conversation id and prints its transcript.
func (r *repl) open(id int64) error {
	var target *model.Conversation
	for _, c := range r.app.Conversations.Snapshot().List {
		if c.ID == id {
			c := c
			target = &c
			break
		}
	}
	if target == nil {
		return fmt.Errorf("conversation %d not found", id)
	}
	if err := r.app.Conversations.Select(r.ctx, *target); err != nil {
		return err
	}
	for _, m := range r.app.Conversations.Snapshot().Messages {
		if m.IsUser() {
			fmt.Fprintln(r.out, promptStyle.Render("you")+" > "+m.Content)
			continue
		}
		fmt.Fprint(r.out, r.md.Render(m.Content))
	}
	return nil
}

// =============================================================================
// HISTORY
// =============================================================================

// history persists liner input history to a 0600 file.
type history struct {
	path string
}

func newHistory(path string) *history {
	return &history{path: path}
}

func (h *history) load(line *liner.State) {
	f, err := os.Open(h.path)
	if err != nil {
		return
	}
	defer f.Close()
	line.ReadHistory(f)
}

func (h *history) save(line *liner.State) {
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
