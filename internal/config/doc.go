// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for llmpad.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - OllamaConfig: How the Ollama runtime is reached and driven
//   - DefaultsConfig: Seed values for the chat settings of a new database
//   - LogConfig: Rotating log file settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (LLMPAD_*), including a .env file in the
//     working directory
//   - ~/.llmpad/config.toml (or $LLMPAD_HOME/config.toml)
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Change a value by key:
//
//	_ = cfg.Set("ollama.pull_method", "api")
//	_ = config.Save(cfg)
package config
