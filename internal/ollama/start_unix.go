// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

// Package ollama talks to a local Ollama runtime.
package ollama

import (
	"os"
	"path/filepath"
	"syscall"
)

const binaryName = "ollama"

func candidatePaths() []string {
	paths := []string{
		"/usr/local/bin/ollama",
		"/usr/bin/ollama",
		"/opt/homebrew/bin/ollama",
		"/Applications/Ollama.app/Contents/Resources/ollama",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".local", "bin", "ollama"))
	}
	return paths
}

func childAttrs() *syscall.SysProcAttr {
	return nil
}

// serveAttrs detaches the server into its own process group so a Ctrl+C
// in the terminal does not take it down with us.
func serveAttrs() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
