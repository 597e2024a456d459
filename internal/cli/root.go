// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/jeranaias/llmpad/internal/config"
	"github.com/jeranaias/llmpad/internal/model"
)

// Build information, set by main from linker flags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	verbose    bool
	logLevel   string
}

// NewRootCmd builds the llmpad command tree. Running it without a
// subcommand starts the terminal UI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "llmpad",
		Short: "Chat with local and OpenAI-compatible models from the terminal",
		Long: heredoc.Doc(`
			llmpad is a terminal chat client for OpenAI-compatible endpoints
			such as a local Ollama server.

			Conversations, messages and connection settings are kept in a local
			sqlite database. Models can be downloaded and built from Modelfiles
			without leaving the app.
		`),
		Example: heredoc.Doc(`
			# Start the terminal UI
			llmpad

			# Line-based chat in the current terminal
			llmpad chat

			# One-shot question
			llmpad ask "Explain Go interfaces in two sentences"

			# Download a model
			llmpad pull llama3.2
		`),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.llmpad/config.toml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "mirror log records to stderr")
	flags.StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	cmd.AddCommand(
		newTUICmd(opts),
		newChatCmd(opts),
		newAskCmd(opts),
		newPullCmd(opts),
		newModelsCmd(opts),
		newModelFilesCmd(opts),
		newConversationsCmd(opts),
		newSettingsCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the terminal UI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
}

// Execute runs the command tree against os.Args and returns the process
// exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		return exitCode(err)
	}
	return 0
}

// exitCode maps validation failures to 2 and everything else to 1.
func exitCode(err error) int {
	var (
		verrs model.ValidateErrors
		verr  model.ValidationError
		cerrs config.ValidateErrors
		uerr  *usageError
	)
	switch {
	case errors.As(err, &verrs), errors.As(err, &verr), errors.As(err, &cerrs), errors.As(err, &uerr):
		return 2
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

// usageError reports a malformed argument.
type usageError struct {
	Arg    string
	Reason string
}

func (e *usageError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Arg, e.Reason)
}
