// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jeranaias/llmpad/internal/export"
	"github.com/jeranaias/llmpad/internal/model"
)

func newConversationsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   "Manage stored conversations",
	}
	cmd.AddCommand(
		newConversationsListCmd(root),
		newConversationsShowCmd(root),
		newConversationsDeleteCmd(root),
		newConversationsRenameCmd(root),
		newConversationsExportCmd(root),
	)
	return cmd
}

func newConversationsListCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List conversations, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			convs, err := s.gateway.ListConversations(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(convs)
			}
			if len(convs) == 0 {
				fmt.Fprintln(out, dimStyle.Render("No conversations yet."))
				return nil
			}
			now := time.Now()
			rows := make([][]string, 0, len(convs))
			for _, c := range convs {
				updated := ""
				if t := c.Updated(); !t.IsZero() {
					updated = humanize.RelTime(t, now, "ago", "from now")
				}
				rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.DisplayTitle(), updated})
			}
			fmt.Fprint(out, renderTable([]string{"ID", "TITLE", "UPDATED"}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newConversationsShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a conversation transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			msgs, err := s.gateway.ListMessages(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			md := newMarkdown(out, s.cfg.UI.Theme, s.cfg.UI.WordWrap)
			for _, m := range msgs {
				label := titleStyle.Render(m.Role.DisplayName())
				if m.Role == model.RoleUser {
					label = promptStyle.Render(m.Role.DisplayName())
				}
				fmt.Fprintln(out, label)
				fmt.Fprint(out, md.Render(m.Content))
			}
			return nil
		},
	}
}

func newConversationsDeleteCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a conversation and its messages",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.gateway.DeleteConversation(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Deleted conversation %d", id)))
			return nil
		},
	}
}

func newConversationsRenameCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title...>",
		Short: "Rename a conversation",
		Example: heredoc.Doc(`
			llmpad conversations rename 3 Go generics notes
		`),
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			title := strings.TrimSpace(strings.Join(args[1:], " "))
			if title == "" {
				return &usageError{Arg: "title", Reason: "must not be empty"}
			}
			s, err := openSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.gateway.RenameConversation(cmd.Context(), id, title); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Renamed conversation %d to %q", id, title)))
			return nil
		},
	}
}

func newConversationsExportCmd(root *rootOptions) *cobra.Command {
	var (
		format string
		outDir string
		plain  bool
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a conversation to Markdown or JSON",
		Example: heredoc.Doc(`
			llmpad conversations export 3
			llmpad conversations export 3 --format json --output ~/notes
			llmpad conversations export 3 --output - > chat.md
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			opts := export.DefaultOptions()
			opts.OutputDir = outDir
			opts.IncludeMetadata = !plain
			opts.IncludeTimestamps = !plain
			exporter, err := export.ForFormat(format, opts)
			if err != nil {
				return &usageError{Arg: "format", Reason: err.Error()}
			}

			s, err := openSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			conv, err := findConversation(cmd.Context(), s, id)
			if err != nil {
				return err
			}
			msgs, err := s.gateway.ListMessages(cmd.Context(), id)
			if err != nil {
				return err
			}
			transcript := &export.Transcript{Conversation: conv, Messages: msgs}

			if outDir == "-" {
				data, err := exporter.Export(transcript)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			path, err := export.ExportToFile(transcript, exporter, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Exported to "+path))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "md", "md or json")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "output directory, or - for stdout")
	cmd.Flags().BoolVar(&plain, "plain", false, "omit metadata and timestamps")
	return cmd
}

func findConversation(ctx context.Context, s *session, id int64) (model.Conversation, error) {
	convs, err := s.gateway.ListConversations(ctx)
	if err != nil {
		return model.Conversation{}, err
	}
	for _, c := range convs {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Conversation{}, fmt.Errorf("conversation %d not found", id)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, &usageError{Arg: "id", Reason: fmt.Sprintf("%q is not a conversation id", raw)}
	}
	return id, nil
}
