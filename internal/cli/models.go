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

func newModelsCmd(root *rootOptions) *cobra.Command {
	var installedOnly bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models available at the configured endpoint",
		Long: heredoc.Doc(`
			List the models installed behind the saved API URL, marking the
			selected one, followed by the download catalog with installed
			entries flagged.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			settings, err := s.settings(cmd.Context())
			if err != nil {
				return err
			}
			installed, err := s.gateway.ListRemoteModels(cmd.Context(), settings.APIURL)
			if err != nil {
				return fmt.Errorf("failed to list models at %s: %w", settings.APIURL, err)
			}

			out := cmd.OutOrStdout()
			if len(installed) == 0 {
				fmt.Fprintln(out, dimStyle.Render("No models installed. Try: llmpad pull "+model.DefaultModel))
			}
			for _, name := range installed {
				mark := "  "
				if strings.EqualFold(name, settings.Model) || strings.HasPrefix(name, settings.Model+":") {
					mark = "* "
				}
				fmt.Fprintln(out, mark+name)
			}
			if installedOnly {
				return nil
			}

			rows := make([][]string, 0, len(model.PopularModels))
			for _, pm := range model.PopularModels {
				mark := ""
				if model.IsInstalled(pm.Name, installed) {
					mark = "installed"
				}
				rows = append(rows, []string{pm.Name, pm.Size, mark, pm.Description})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, titleStyle.Render("Popular models"))
			fmt.Fprint(out, renderTable([]string{"NAME", "SIZE", "STATUS", "DESCRIPTION"}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&installedOnly, "installed", false, "only list installed models")
	return cmd
}
