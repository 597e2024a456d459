// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the llmpad command tree.
//
// Running llmpad without a subcommand starts the terminal UI. The other
// commands reach the same sqlite store and Ollama instance from the shell:
//
//	llmpad chat                       line-based chat with history
//	llmpad ask <prompt>               one-shot question
//	llmpad pull <model>               download a model
//	llmpad models                     installed models and the catalog
//	llmpad modelfiles list|show|create
//	llmpad conversations list|show|delete|rename|export
//	llmpad settings show|set
//	llmpad config show|get|set|path
//	llmpad version
//
// Every command opens its own session (config, logger, store, gateway)
// and closes it before returning. Logs go to the rotating log file; with
// --verbose they are mirrored to stderr, except in the terminal UI.
package cli
