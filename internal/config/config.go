// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for llmpad.
//
// Configuration file locations (in order of precedence):
//   - LLMPAD_* environment variables (a .env file in the working directory
//     is loaded first)
//   - ~/.llmpad/config.toml
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/jeranaias/llmpad/internal/model"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "LLMPAD_"

// HomeEnv relocates the configuration directory (tests, portable installs).
const HomeEnv = "LLMPAD_HOME"

// Pull methods.
const (
	PullMethodCLI = "cli"
	PullMethodAPI = "api"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete llmpad configuration.
type Config struct {
	// DataDir holds the database, the key file and the log.
	DataDir string `toml:"data_dir" json:"data_dir" env:"DATA_DIR"`

	// ModelsDir holds the *.Modelfile descriptors.
	ModelsDir string `toml:"models_dir" json:"models_dir" env:"MODELS_DIR"`

	Ollama     OllamaConfig     `toml:"ollama" json:"ollama" envPrefix:"OLLAMA_"`
	Completion CompletionConfig `toml:"completion" json:"completion" envPrefix:"COMPLETION_"`
	Defaults   DefaultsConfig   `toml:"defaults" json:"defaults" envPrefix:"DEFAULT_"`
	UI         UIConfig         `toml:"ui" json:"ui" envPrefix:"UI_"`
	Log        LogConfig        `toml:"log" json:"log" envPrefix:"LOG_"`
}

// OllamaConfig controls how the Ollama runtime is reached.
type OllamaConfig struct {
	// Binary is the ollama executable; empty searches PATH.
	Binary string `toml:"binary" json:"binary" env:"BINARY"`
	// URL is the Ollama API root used for HTTP pulls and health checks.
	URL string `toml:"url" json:"url" env:"URL"`
	// PullMethod is "cli" (run `ollama pull`) or "api" (stream /api/pull).
	PullMethod string `toml:"pull_method" json:"pull_method" env:"PULL_METHOD"`
	// AutoStart runs `ollama serve` when the server is not reachable.
	AutoStart bool `toml:"auto_start" json:"auto_start" env:"AUTO_START"`
	// Timeout bounds non-streaming API calls.
	Timeout time.Duration `toml:"timeout" json:"timeout" env:"TIMEOUT"`
}

// CompletionConfig controls chat completion calls.
type CompletionConfig struct {
	Timeout time.Duration `toml:"timeout" json:"timeout" env:"TIMEOUT"`
}

// DefaultsConfig seeds the settings row of a fresh database.
type DefaultsConfig struct {
	APIURL string `toml:"api_url" json:"api_url" env:"API_URL"`
	Model  string `toml:"model" json:"model" env:"MODEL"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme" env:"THEME"`
	// WordWrap is the markdown wrap width for CLI output.
	WordWrap int `toml:"word_wrap" json:"word_wrap" env:"WORD_WRAP"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	Level      string `toml:"level" json:"level" env:"LEVEL"`
	File       string `toml:"file" json:"file" env:"FILE"`
	MaxSizeMB  int    `toml:"max_size_mb" json:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `toml:"max_backups" json:"max_backups" env:"MAX_BACKUPS"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values. Paths derived from
// the home directory are resolved by fillDefaults.
func Default() *Config {
	return &Config{
		Ollama: OllamaConfig{
			URL:        "http://127.0.0.1:11434",
			PullMethod: PullMethodCLI,
			Timeout:    30 * time.Second,
		},
		Completion: CompletionConfig{
			Timeout: 5 * time.Minute,
		},
		Defaults: DefaultsConfig{
			APIURL: model.DefaultAPIURL,
			Model:  model.DefaultModel,
		},
		UI: UIConfig{
			Theme:    "dark",
			WordWrap: 80,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the llmpad configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".llmpad"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// DatabasePath is the sqlite file inside DataDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "llmpad.db")
}

// KeyPath is the sealing key file inside DataDir.
func (c *Config) KeyPath() string {
	return filepath.Join(c.DataDir, "secret.key")
}

// HistoryPath is the line-editor history file of `llmpad chat`.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "chat_history")
}

// ensureSecurePermissions checks and fixes permissions on config files.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads ~/.llmpad/config.toml (if present), applies environment
// overrides and validates. A missing file yields the defaults.
func Load() (*Config, error) {
	LoadDotEnv(".env")

	cfg := Default()
	path, err := ConfigPathTOML()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config: %w", err)
		}
	}
	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}
	if err := fillDefaults(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", path, err)
	}
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.DataDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return err
		}
		cfg.DataDir = dir
	}
	cfg.DataDir = expandHome(cfg.DataDir)

	if cfg.ModelsDir == "" {
		cfg.ModelsDir = defaultModelsDir(cfg.DataDir)
	}
	cfg.ModelsDir = expandHome(cfg.ModelsDir)

	// Ollama
	if cfg.Ollama.URL == "" {
		cfg.Ollama.URL = defaults.Ollama.URL
	}
	if cfg.Ollama.PullMethod == "" {
		cfg.Ollama.PullMethod = defaults.Ollama.PullMethod
	}
	cfg.Ollama.PullMethod = strings.ToLower(cfg.Ollama.PullMethod)
	if cfg.Ollama.Timeout == 0 {
		cfg.Ollama.Timeout = defaults.Ollama.Timeout
	}

	if cfg.Completion.Timeout == 0 {
		cfg.Completion.Timeout = defaults.Completion.Timeout
	}

	// Defaults
	if cfg.Defaults.APIURL == "" {
		cfg.Defaults.APIURL = defaults.Defaults.APIURL
	}
	if cfg.Defaults.Model == "" {
		cfg.Defaults.Model = defaults.Defaults.Model
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.WordWrap == 0 {
		cfg.UI.WordWrap = defaults.UI.WordWrap
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.DataDir, "llmpad.log")
	}
	cfg.Log.File = expandHome(cfg.Log.File)
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = defaults.Log.MaxSizeMB
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = defaults.Log.MaxBackups
	}

	return nil
}

// defaultModelsDir prefers ~/Documents/LLMpad/models when it already
// exists and falls back to <dataDir>/models.
func defaultModelsDir(dataDir string) string {
	if home, err := os.UserHomeDir(); err == nil && os.Getenv(HomeEnv) == "" {
		docs := filepath.Join(home, "Documents", "LLMpad", "models")
		if info, err := os.Stat(docs); err == nil && info.IsDir() {
			return docs
		}
	}
	return filepath.Join(dataDir, "models")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// The file may have existed with wider permissions.
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# llmpad configuration file")
	fmt.Fprintln(file, "# Generated by llmpad - edit with care")
	fmt.Fprintln(file, "#")
	fmt.Fprintln(file, "# Every key can be overridden with an LLMPAD_* environment variable,")
	fmt.Fprintln(file, "# e.g. LLMPAD_OLLAMA_PULL_METHOD=api")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
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
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Ollama.URL != "" {
		if err := validateHTTPURL(c.Ollama.URL); err != "" {
			errs = append(errs, ValidationError{Field: "ollama.url", Message: err})
		}
	}
	switch c.Ollama.PullMethod {
	case PullMethodCLI, PullMethodAPI, "":
	default:
		errs = append(errs, ValidationError{
			Field:   "ollama.pull_method",
			Message: fmt.Sprintf("invalid method '%s', must be one of: cli, api", c.Ollama.PullMethod),
		})
	}
	if c.Ollama.Timeout < 0 {
		errs = append(errs, ValidationError{Field: "ollama.timeout", Message: "must not be negative"})
	}
	if c.Completion.Timeout < 0 {
		errs = append(errs, ValidationError{Field: "completion.timeout", Message: "must not be negative"})
	}

	if c.Defaults.APIURL != "" {
		if err := validateHTTPURL(c.Defaults.APIURL); err != "" {
			errs = append(errs, ValidationError{Field: "defaults.api_url", Message: err})
		}
	}

	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "auto", "":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}
	if c.UI.WordWrap < 0 || c.UI.WordWrap > 500 {
		errs = append(errs, ValidationError{Field: "ui.word_wrap", Message: "must be between 0 and 500"})
	}

	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled", "":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s'", c.Log.Level),
		})
	}
	if c.Log.MaxSizeMB < 0 {
		errs = append(errs, ValidationError{Field: "log.max_size_mb", Message: "must not be negative"})
	}
	if c.Log.MaxBackups < 0 {
		errs = append(errs, ValidationError{Field: "log.max_backups", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateHTTPURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("URL scheme must be http or https, got '%s'", u.Scheme)
	}
	if u.Host == "" {
		return "URL must include a host"
	}
	return ""
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies LLMPAD_* environment variables to the config.
// Unset variables leave the current value untouched.
//
// Examples:
//   - LLMPAD_DATA_DIR: overrides data_dir
//   - LLMPAD_OLLAMA_PULL_METHOD: overrides ollama.pull_method
//   - LLMPAD_OLLAMA_TIMEOUT: overrides ollama.timeout (e.g. "45s")
//   - LLMPAD_DEFAULT_MODEL: overrides defaults.model
//   - LLMPAD_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() error {
	return env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix})
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "ollama.pull_method").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

var durationType = reflect.TypeOf(time.Duration(0))

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		if field.Type() == durationType {
			d, err := time.ParseDuration(strVal)
			if err != nil {
				return fmt.Errorf("invalid duration value: %v", err)
			}
			field.SetInt(int64(d))
			return nil
		}
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"data_dir",
		"models_dir",
		"ollama.binary",
		"ollama.url",
		"ollama.pull_method",
		"ollama.auto_start",
		"ollama.timeout",
		"completion.timeout",
		"defaults.api_url",
		"defaults.model",
		"ui.theme",
		"ui.word_wrap",
		"log.level",
		"log.file",
		"log.max_size_mb",
		"log.max_backups",
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a JSON representation of the config for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
			_ = fillDefaults(cfg)
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
