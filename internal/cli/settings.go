// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/jeranaias/llmpad/internal/model"
)

// settingKeys are the connection settings editable with `settings set`.
var settingKeys = []string{"api_url", "api_key", "model"}

func newSettingsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the saved connection settings",
		Long: heredoc.Doc(`
			Connection settings (API URL, API key and model) live in the
			database and are shared with the terminal UI. The API key is
			encrypted at rest and masked when shown.
		`),
	}
	cmd.AddCommand(newSettingsShowCmd(root), newSettingsSetCmd(root))
	return cmd
}

func newSettingsShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.settings(cmd.Context())
			if err != nil {
				return err
			}
			key := st.MaskedKey()
			if key == "" {
				key = dimStyle.Render("(none)")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, labelStyle.Render("api_url")+valueStyle.Render(st.APIURL))
			fmt.Fprintln(out, labelStyle.Render("api_key")+valueStyle.Render(key))
			fmt.Fprintln(out, labelStyle.Render("model")+valueStyle.Render(st.Model))
			return nil
		},
	}
}

func newSettingsSetCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change one setting",
		ValidArgs: settingKeys,
		Example: heredoc.Doc(`
			llmpad settings set api_url http://gpu-box:11434/v1
			llmpad settings set model mistral
			llmpad settings set api_key ""
		`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.settings(cmd.Context())
			if err != nil {
				return err
			}
			if err := applySetting(&st, args[0], args[1]); err != nil {
				return err
			}
			if err := st.Validate(); err != nil {
				return err
			}
			if err := s.gateway.SaveSettings(cmd.Context(), st); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Saved "+strings.ToLower(args[0])))
			return nil
		},
	}
}

func applySetting(st *model.Settings, key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "api_url", "url":
		st.APIURL = value
	case "api_key", "key":
		st.APIKey = value
	case "model":
		st.Model = value
	default:
		return &usageError{
			Arg:    "key",
			Reason: fmt.Sprintf("unknown setting %q (valid: %s)", key, strings.Join(settingKeys, ", ")),
		}
	}
	return nil
}
