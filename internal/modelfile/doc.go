// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package modelfile discovers *.Modelfile descriptors in the models
// directory and extracts their base model.
//
// A descriptor's name is its file stem; "coder.Modelfile" creates the model
// "coder". The base model comes from the first FROM line.
//
// # Key Types
//
//   - Finder: lists descriptors in a directory
//   - Watcher: debounced fsnotify reload trigger
//
// # Usage
//
//	files, err := modelfile.NewFinder(dir).List()
//	infos := modelfile.WithStatus(files, installedNames)
package modelfile
