// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the stores, the
// backend and the views.
package model

import "strings"

// ModelFile is a Modelfile descriptor found in the models directory.
type ModelFile struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ModelFileInfo adds the parsed base model and whether it is installed.
type ModelFileInfo struct {
	ModelFile
	BaseModel     string `json:"base_model"`
	BaseAvailable bool   `json:"is_base_available"`
}

// =============================================================================
// POPULAR MODELS
// =============================================================================

// PopularModel is an entry of the download catalog.
type PopularModel struct {
	Name        string
	Size        string
	Description string
}

// PopularModels is the catalog offered by the downloader.
var PopularModels = []PopularModel{
	{Name: "llama3.2", Size: "2GB", Description: "Meta's Llama 3.2 - fast and efficient"},
	{Name: "llama3.2:1b", Size: "1.3GB", Description: "Llama 3.2 1B - ultra light"},
	{Name: "mistral", Size: "4.1GB", Description: "Mistral 7B - excellent quality"},
	{Name: "phi3", Size: "2.2GB", Description: "Microsoft Phi-3 - compact and capable"},
	{Name: "gemma2:2b", Size: "1.6GB", Description: "Google Gemma 2 2B - light"},
	{Name: "qwen2.5:3b", Size: "1.9GB", Description: "Alibaba Qwen 2.5 3B"},
	{Name: "qwen3-coder-next", Size: "42GB", Description: "Qwen3 Coder Next - state of the art"},
	{Name: "codellama", Size: "3.8GB", Description: "Meta CodeLlama - for code"},
	{Name: "deepseek-coder:6.7b", Size: "3.8GB", Description: "DeepSeek Coder - programming"},
}

// IsInstalled reports whether any installed model name starts with the
// family part of name (everything before ':').
func IsInstalled(name string, installed []string) bool {
	family, _, _ := strings.Cut(name, ":")
	if family == "" {
		return false
	}
	for _, m := range installed {
		if strings.HasPrefix(m, family) {
			return true
		}
	}
	return false
}
