// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package modelfile

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/llmpad/internal/model"
)

func TestBaseModel(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantOK  bool
	}{
		{"simple", "FROM llama3.2\nSYSTEM hi", "llama3.2", true},
		{"lowercase keyword", "  from mistral:7b  \n", "mistral:7b", true},
		{"after comments", "# coder\n\nFROM qwen2.5:3b\nFROM ignored", "qwen2.5:3b", true},
		{"extra fields", "FROM ./weights.gguf extra", "./weights.gguf", true},
		{"tab separator", "FROM\tllama3.2", "llama3.2", true},
		{"crlf line endings", "# x\r\nFrom  phi3\r\n", "phi3", true},
		{"bare keyword is skipped", "FROM\nFROM gemma2", "gemma2", true},
		{"missing", "SYSTEM only\nPARAMETER temperature 0.2", "", false},
		{"prefix word", "FROMAGE brie", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BaseModel(tt.content)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("BaseModel(%q) = (%q, %v), want (%q, %v)", tt.content, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestWithStatus(t *testing.T) {
	files := []model.ModelFile{
		{Name: "a", Content: "FROM llama3.2"},
		{Name: "b", Content: "FROM mistral"},
		{Name: "c", Content: "SYSTEM x"},
	}
	got := WithStatus(files, []string{"llama3.2", "mistral:latest"})
	require.Len(t, got, 3)

	assert.Equal(t, "llama3.2", got[0].BaseModel)
	assert.True(t, got[0].BaseAvailable)
	assert.Equal(t, "mistral", got[1].BaseModel)
	assert.False(t, got[1].BaseAvailable, "availability is an exact match")
	assert.Empty(t, got[2].BaseModel)
	assert.False(t, got[2].BaseAvailable)
}

func TestFinderList(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	write("zeta.Modelfile", "FROM phi3")
	write("alpha.Modelfile", "FROM llama3.2")
	write("notes.txt", "ignore me")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.Modelfile"), 0755))

	files, err := NewFinder(dir).List()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "alpha", files[0].Name)
	assert.Equal(t, filepath.Join(dir, "alpha.Modelfile"), files[0].Path)
	assert.Equal(t, "FROM llama3.2", files[0].Content)
	assert.Equal(t, "zeta", files[1].Name)
}

func TestFinderCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")
	files, err := NewFinder(dir).List()
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWatcherDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	w, err := NewWatcher(dir, 150*time.Millisecond, func() { calls.Add(1) }, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	path := filepath.Join(dir, "coder.Modelfile")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("FROM llama3.2"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
