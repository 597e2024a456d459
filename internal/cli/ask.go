// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jeranaias/llmpad/internal/backend"
)

// maxStdinPrompt caps a prompt read from a pipe.
const maxStdinPrompt = 1 << 20

type askOptions struct {
	conversation int64
	model        string
	raw          bool
}

func newAskCmd(root *rootOptions) *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Send a single prompt and print the reply",
		Long: heredoc.Doc(`
			Send one prompt with the saved settings and print the reply as
			markdown. The exchange is stored like any other conversation.

			Without arguments the prompt is read from stdin.
		`),
		Example: heredoc.Doc(`
			llmpad ask "What is a goroutine?"
			llmpad ask -c 4 "And how do channels relate?"
			git diff | llmpad ask --raw
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			s, err := openSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			settings, err := s.settings(cmd.Context())
			if err != nil {
				return err
			}
			if opts.model != "" {
				settings.Model = opts.model
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			res, err := s.gateway.SendMessage(cmd.Context(), backend.SendRequest{
				ConversationID: opts.conversation,
				Input:          prompt,
				Settings:       settings,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.raw {
				fmt.Fprint(out, ensureNewline(res.Assistant.Content))
			} else {
				fmt.Fprint(out, newMarkdown(out, s.cfg.UI.Theme, s.cfg.UI.WordWrap).Render(res.Assistant.Content))
			}
			if isTerminal(cmd.ErrOrStderr()) {
				fmt.Fprintln(cmd.ErrOrStderr(), dimStyle.Render(fmt.Sprintf("conversation %d · %s", res.Conversation.ID, settings.Model)))
			}
			return nil
		},
	}
	cmd.Flags().Int64VarP(&opts.conversation, "conversation", "c", 0, "append to the conversation with this id")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "override the saved model")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print the reply without markdown rendering")
	return cmd
}

// readPrompt joins args, or reads stdin when there are none and it is not
// a terminal.
func readPrompt(args []string, in io.Reader) (string, error) {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt != "" {
		return prompt, nil
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", &usageError{Arg: "prompt", Reason: "a prompt argument or piped input is required"}
	}
	data, err := io.ReadAll(io.LimitReader(in, maxStdinPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to read prompt: %w", err)
	}
	prompt = strings.TrimSpace(string(data))
	if prompt == "" {
		return "", &usageError{Arg: "prompt", Reason: "must not be empty"}
	}
	return prompt, nil
}
