// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the stores, the
// backend and the views.
package model

import (
	"fmt"
	"net/url"
	"strings"
)

// Defaults applied when no settings have been saved yet.
const (
	DefaultAPIURL = "http://localhost:11434/v1"
	DefaultModel  = "llama3.2"
)

// Settings is the user-editable connection record.
type Settings struct {
	APIURL string `json:"api_url" toml:"api_url"`
	APIKey string `json:"api_key" toml:"api_key"`
	Model  string `json:"model" toml:"model"`
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() Settings {
	return Settings{APIURL: DefaultAPIURL, Model: DefaultModel}
}

// WithDefaults fills empty URL and model fields.
func (s Settings) WithDefaults() Settings {
	if strings.TrimSpace(s.APIURL) == "" {
		s.APIURL = DefaultAPIURL
	}
	if strings.TrimSpace(s.Model) == "" {
		s.Model = DefaultModel
	}
	return s
}

// MaskedKey hides all but the last four characters of the API key.
func (s Settings) MaskedKey() string {
	if s.APIKey == "" {
		return ""
	}
	r := []rune(s.APIKey)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}

// Validate checks that the URL is an absolute http(s) endpoint and that a
// model is selected.
func (s Settings) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(strings.TrimSpace(s.APIURL))
	switch {
	case strings.TrimSpace(s.APIURL) == "":
		errs = append(errs, ValidationError{Field: "api_url", Message: "must not be empty"})
	case err != nil:
		errs = append(errs, ValidationError{Field: "api_url", Message: err.Error()})
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, ValidationError{
			Field:   "api_url",
			Message: fmt.Sprintf("unsupported scheme %q, must be http or https", u.Scheme),
		})
	case u.Host == "":
		errs = append(errs, ValidationError{Field: "api_url", Message: "missing host"})
	}

	if strings.TrimSpace(s.Model) == "" {
		errs = append(errs, ValidationError{Field: "model", Message: "must not be empty"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// VALIDATION ERRORS
// =============================================================================

// ValidationError is a local validation failure; no backend call was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}
