// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama talks to a local Ollama runtime.
//
// Two surfaces are provided. Client speaks the HTTP API (model listing and
// streamed pulls). Runner drives the ollama executable for `pull`, `create`
// and `serve`, splitting its terminal-style progress output into status
// lines.
//
// # Key Types
//
//   - Client: HTTP client for /api/tags and /api/pull
//   - Runner: subprocess driver for the ollama CLI
//   - ClientError / CommandError: typed failures with IsX helpers
//   - PullResponse: one NDJSON progress record of /api/pull
//
// # Usage
//
// List installed models for an OpenAI-style base URL:
//
//	client := ollama.NewClient().ForAPI("http://localhost:11434/v1")
//	names, err := client.ModelNames(ctx)
//
// Pull a model through the CLI and print each status line:
//
//	runner := ollama.NewRunner("")
//	err := runner.Pull(ctx, "llama3.2", func(line string) {
//	    fmt.Println(line)
//	})
package ollama
