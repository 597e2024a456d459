// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations, messages and settings in sqlite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jeranaias/llmpad/internal/model"
)

// =============================================================================
// SETTINGS OPERATIONS
// =============================================================================

// GetSettings returns the saved settings. The row is seeded with defaults
// when the database is created, so nil is only returned if it was removed.
func (s *Store) GetSettings(ctx context.Context) (*model.Settings, error) {
	var st model.Settings
	err := s.db.QueryRowContext(ctx, "SELECT api_url, api_key, model FROM settings WHERE id = 1").
		Scan(&st.APIURL, &st.APIKey, &st.Model)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get settings", err)
	}

	if s.sealer != nil {
		key, err := s.sealer.Open(st.APIKey)
		if err != nil {
			return nil, fmt.Errorf("get settings: open api key: %w", err)
		}
		st.APIKey = key
	}
	return &st, nil
}

// SaveSettings replaces the settings row.
func (s *Store) SaveSettings(ctx context.Context, st model.Settings) error {
	key := st.APIKey
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(key)
		if err != nil {
			return fmt.Errorf("save settings: seal api key: %w", err)
		}
		key = sealed
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (id, api_url, api_key, model) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET api_url = excluded.api_url,
		                               api_key = excluded.api_key,
		                               model = excluded.model`,
		st.APIURL, key, st.Model)
	if err != nil {
		return wrapErr("save settings", err)
	}
	return nil
}

// RawAPIKey returns the api_key column as stored, sealed or not.
func (s *Store) RawAPIKey(ctx context.Context) (string, error) {
	var key string
	if err := s.db.QueryRowContext(ctx, "SELECT api_key FROM settings WHERE id = 1").Scan(&key); err != nil {
		return "", wrapErr("raw api key", err)
	}
	return key, nil
}
