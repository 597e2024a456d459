// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/jeranaias/llmpad/internal/model"
	"github.com/jeranaias/llmpad/internal/modelfile"
	"github.com/jeranaias/llmpad/internal/ui/components"
	"github.com/jeranaias/llmpad/internal/ui/styles"
)

func newModelFilesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "modelfiles",
		Aliases: []string{"mf"},
		Short:   "Manage Modelfiles in the models directory",
		Long: heredoc.Doc(`
			Modelfiles are *.Modelfile descriptors in the models directory
			(models_dir in the config). Each one can be built into an Ollama
			model named after the file.
		`),
	}
	cmd.AddCommand(
		newModelFilesListCmd(root),
		newModelFilesShowCmd(root),
		newModelFilesCreateCmd(root),
	)
	return cmd
}

func newModelFilesListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List Modelfiles with their base model status",
		Args:    cobra.NoArgs,
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
			files, err := s.gateway.ModelFilesWithStatus(cmd.Context(), settings.APIURL)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintf(out, "No Modelfiles in %s\n", s.cfg.ModelsDir)
				return nil
			}
			rows := make([][]string, 0, len(files))
			for _, f := range files {
				rows = append(rows, []string{f.Name, baseLabel(f), f.Path})
			}
			fmt.Fprint(out, renderTable([]string{"NAME", "BASE", "PATH"}, rows))
			return nil
		},
	}
}

func newModelFilesShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a Modelfile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			f, err := findModelFile(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !isTerminal(out) {
				fmt.Fprint(out, ensureNewline(f.Content))
				return nil
			}
			style := styles.NewTheme(styles.ParseMode(s.cfg.UI.Theme)).ChromaStyle()
			fmt.Fprint(out, ensureNewline(components.HighlightModelfile(f.Content, style)))
			return nil
		},
	}
}

func newModelFilesCreateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Build an Ollama model from a Modelfile",
		Example: heredoc.Doc(`
			# builds ~/.llmpad/models/coder.Modelfile as the model "coder"
			llmpad modelfiles create coder
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			f, err := findModelFile(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}
			if _, ok := modelfile.BaseModel(f.Content); !ok {
				return model.ValidationError{Field: "FROM", Message: "Modelfile has no FROM line"}
			}
			settings, err := s.settings(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.ErrOrStderr(), dimStyle.Render("Creating "+f.Name+"..."))
			msg, err := s.gateway.CreateModel(cmd.Context(), settings.APIURL, f.Name, f.Content)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(msg))
			return nil
		},
	}
}

func findModelFile(ctx context.Context, s *session, name string) (model.ModelFile, error) {
	files, err := s.gateway.ListModelFiles(ctx)
	if err != nil {
		return model.ModelFile{}, err
	}
	for _, f := range files {
		if f.Name == name {
			return f, nil
		}
	}
	return model.ModelFile{}, fmt.Errorf("no Modelfile named %q in %s", name, s.cfg.ModelsDir)
}

func baseLabel(f model.ModelFileInfo) string {
	switch {
	case f.BaseModel == "":
		return warningStyle.Render("no FROM line")
	case f.BaseAvailable:
		return f.BaseModel + " " + successStyle.Render("(installed)")
	default:
		return f.BaseModel + " " + warningStyle.Render("(missing)")
	}
}
