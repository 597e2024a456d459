// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the llmpad TUI.

# Color System (colors.go)

All colours are Lip Gloss AdaptiveColor values:

  - Purple - selections, focus, assistant messages
  - Cyan - brand, keys, user messages
  - Emerald - installed models, success
  - Amber - warnings, alerts, missing base models
  - Rose - errors

Status text always carries an ASCII indicator ([OK], [X], [!], [i]) next
to the colour.

# Theme (theme.go)

A Theme is built for a Mode (auto, dark or light) from the ui.theme config
key. Toggle flips it at runtime; GlamourStyle and ChromaStyle return the
matching markdown and syntax highlighting styles.

	theme := styles.NewTheme(styles.ParseMode(cfg.UI.Theme))
	theme.SetSize(width, height)
	title := theme.HeaderTitle.Render(conv.Title)
*/
package styles
