// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/jeranaias/llmpad/internal/model"
)

// JSONExporter exports the complete transcript. Options only affect the
// export stamp.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonMessage struct {
	ID        int64      `json:"id"`
	Role      model.Role `json:"role"`
	Content   string     `json:"content"`
	CreatedAt string     `json:"created_at"`
}

type jsonDocument struct {
	Conversation model.Conversation `json:"conversation"`
	Messages     []jsonMessage      `json:"messages"`
	ExportedAt   string             `json:"exported_at"`
	Generator    string             `json:"generator"`
}

// Export converts a transcript to indented JSON.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, errors.New("transcript is nil")
	}
	if len(t.Messages) == 0 {
		return nil, errors.New("conversation has no messages")
	}
	doc := jsonDocument{
		Conversation: t.Conversation,
		Messages:     make([]jsonMessage, 0, len(t.Messages)),
		ExportedAt:   e.options.now().UTC().Format(time.RFC3339),
		Generator:    "llmpad",
	}
	for _, m := range t.Messages {
		doc.Messages = append(doc.Messages, jsonMessage{
			ID:        m.ID.Value(),
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
