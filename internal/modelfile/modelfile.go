// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package modelfile discovers *.Modelfile descriptors in the models
// directory and extracts their base model.
package modelfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeranaias/llmpad/internal/model"
)

// Ext is the file extension of a model descriptor.
const Ext = ".Modelfile"

// BaseModel returns the model named by the first line whose first
// whitespace-separated field is FROM (any case) followed by an identifier.
func BaseModel(content string) (string, bool) {
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.EqualFold(fields[0], "FROM") {
			continue
		}
		return fields[1], true
	}
	return "", false
}

// WithStatus annotates files with their base model and whether that base
// is present in installed (exact name match).
func WithStatus(files []model.ModelFile, installed []string) []model.ModelFileInfo {
	have := make(map[string]struct{}, len(installed))
	for _, name := range installed {
		have[name] = struct{}{}
	}

	out := make([]model.ModelFileInfo, 0, len(files))
	for _, f := range files {
		info := model.ModelFileInfo{ModelFile: f}
		if base, ok := BaseModel(f.Content); ok {
			info.BaseModel = base
			_, info.BaseAvailable = have[base]
		}
		out = append(out, info)
	}
	return out
}

// =============================================================================
// FINDER
// =============================================================================

// Finder lists the descriptors in one directory.
type Finder struct {
	Dir string
}

// NewFinder creates a finder for dir.
func NewFinder(dir string) *Finder {
	return &Finder{Dir: dir}
}

// List returns every regular *.Modelfile in the directory, sorted by name.
// A missing directory is created and yields an empty list.
func (f *Finder) List() ([]model.ModelFile, error) {
	entries, err := os.ReadDir(f.Dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(f.Dir, 0755); err != nil {
			return nil, fmt.Errorf("create models directory: %w", err)
		}
		return []model.ModelFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read models directory: %w", err)
	}

	files := make([]model.ModelFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != Ext {
			continue
		}
		path := filepath.Join(f.Dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		files = append(files, model.ModelFile{
			Name:    strings.TrimSuffix(entry.Name(), Ext),
			Path:    path,
			Content: string(data),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
