// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations, messages and settings in sqlite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/llmpad/internal/model"
	"github.com/jeranaias/llmpad/internal/secret"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound      = errors.New("not found")
	ErrDatabaseError = errors.New("database error")
	ErrClosed        = errors.New("store is closed")
)

// =============================================================================
// STORE
// =============================================================================

// Config holds store configuration.
type Config struct {
	// Path is the sqlite database file. ":memory:" is accepted for tests.
	Path string

	// Sealer encrypts the API key at rest. Nil stores it in plain text.
	Sealer *secret.Sealer

	// Now overrides the clock used for timestamps.
	Now func() time.Time

	// Defaults seeds the settings row of a new database. Empty fields fall
	// back to model.DefaultSettings.
	Defaults model.Settings
}

// Store is the sqlite-backed persistence layer. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	sealer *secret.Sealer
	now    func() time.Time

	mu     sync.Mutex
	closed bool
}

// Open opens (creating if needed) the database at cfg.Path and applies the
// schema.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("storage: database path is required")
	}
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection also keeps an
	// in-memory database alive for the lifetime of the store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &Store{db: db, sealer: cfg.Sealer, now: now}
	if err := s.initSchema(cfg.Defaults.WithDefaults()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema(seed model.Settings) error {
	if _, err := s.db.Exec(Schema); err != nil {
		return err
	}
	if _, err := s.db.Exec(InitMetadata); err != nil {
		return err
	}
	_, err := s.db.Exec(InitSettings, seed.APIURL, seed.Model)
	return err
}

// Close releases the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// SchemaVersion returns the version recorded in the metadata table.
func (s *Store) SchemaVersion(ctx context.Context) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&v)
	if err != nil {
		return "", wrapErr("schema version", err)
	}
	return v, nil
}

func (s *Store) timestamp() string {
	return model.FormatTimestamp(s.now())
}

// wrapErr maps sql.ErrNoRows to ErrNotFound and tags everything else as a
// database error.
func wrapErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrDatabaseError, err)
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
