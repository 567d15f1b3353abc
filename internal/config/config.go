// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/storyexport/internal/export"
	"github.com/jeranaias/storyexport/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete storyexport configuration.
type Config struct {
	Server   ServerConfig   `toml:"server" json:"server"`
	Database DatabaseConfig `toml:"database" json:"database"`
	Export   ExportConfig   `toml:"export" json:"export"`
	Logging  LoggingConfig  `toml:"logging" json:"logging"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. "127.0.0.1:8787".
	Addr string `toml:"addr" json:"addr"`
	// APIKey enables bearer authentication when set.
	APIKey string `toml:"api_key" json:"api_key"`
	// RateLimit is requests per minute per client. 0 disables limiting.
	RateLimit int `toml:"rate_limit" json:"rate_limit"`
	// RateBurst is the burst size for the rate limiter.
	RateBurst int `toml:"rate_burst" json:"rate_burst"`

	ReadTimeoutSecs     int `toml:"read_timeout_secs" json:"read_timeout_secs"`
	WriteTimeoutSecs    int `toml:"write_timeout_secs" json:"write_timeout_secs"`
	ShutdownTimeoutSecs int `toml:"shutdown_timeout_secs" json:"shutdown_timeout_secs"`
}

// DatabaseConfig contains story database settings.
type DatabaseConfig struct {
	// Path is the SQLite file (empty = ~/.storyexport/stories.db)
	Path string `toml:"path" json:"path"`
}

// ExportConfig contains renderer settings.
type ExportConfig struct {
	// DefaultFormat is used by the CLI when --format is omitted.
	DefaultFormat string `toml:"default_format" json:"default_format"`
	// FooterLabel names the generator in every export footer.
	FooterLabel string `toml:"footer_label" json:"footer_label"`
	// Theme is the HTML body theme: "light" or "dark".
	Theme string `toml:"theme" json:"theme"`
	// PageSize is the PDF page size: "A4" or "Letter".
	PageSize string `toml:"page_size" json:"page_size"`
	// MarginPt is the PDF page margin in points.
	MarginPt float64 `toml:"margin_pt" json:"margin_pt"`
	// Compress enables PDF stream compression.
	Compress bool `toml:"compress" json:"compress"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	// File appends logs to this path in addition to stderr.
	File string `toml:"file" json:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with default values.
func Default() *Config {
	pdf := export.DefaultPDFOptions()
	return &Config{
		Server: ServerConfig{
			Addr:                "127.0.0.1:8787",
			RateLimit:           120,
			RateBurst:           20,
			ReadTimeoutSecs:     30,
			WriteTimeoutSecs:    120,
			ShutdownTimeoutSecs: 10,
		},
		Export: ExportConfig{
			DefaultFormat: string(export.FormatText),
			FooterLabel:   "AI Story Generator",
			Theme:         "light",
			PageSize:      pdf.PageSize,
			MarginPt:      pdf.Margin,
			Compress:      true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the storyexport configuration directory.
// STORYEXPORT_HOME overrides the default ~/.storyexport.
func ConfigDir() (string, error) {
	if dir := os.Getenv("STORYEXPORT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".storyexport"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DatabasePath returns the configured database path or the default one.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "stories.db"), nil
}

// ensureSecurePermissions tightens config files to 0600; they may hold the API key.
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

// Load loads configuration from the config directory.
// Tries TOML first, then JSON, and falls back to defaults.
func Load() (*Config, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); err == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
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
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file. Values missing from
// the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# storyexport configuration file\n")
	buf.WriteString("# Environment variables STORYEXPORT_* override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.WritePrivateFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.WritePrivateFile(path, data); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
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
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every field and returns all problems as ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if _, port, err := net.SplitHostPort(c.Server.Addr); err != nil {
		add("server.addr", "must be host:port, got %q", c.Server.Addr)
	} else if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		add("server.addr", "invalid port %q", port)
	}
	if c.Server.RateLimit < 0 {
		add("server.rate_limit", "must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		add("server.rate_burst", "must be at least 1 when rate limiting is enabled")
	}
	timeouts := []struct {
		field string
		secs  int
	}{
		{"server.read_timeout_secs", c.Server.ReadTimeoutSecs},
		{"server.write_timeout_secs", c.Server.WriteTimeoutSecs},
		{"server.shutdown_timeout_secs", c.Server.ShutdownTimeoutSecs},
	}
	for _, t := range timeouts {
		if t.secs < 1 || t.secs > 3600 {
			add(t.field, "must be between 1 and 3600, got %d", t.secs)
		}
	}

	if _, err := export.ParseFormat(c.Export.DefaultFormat); err != nil {
		add("export.default_format", "must be one of txt, html, pdf, got %q", c.Export.DefaultFormat)
	}
	if strings.TrimSpace(c.Export.FooterLabel) == "" {
		add("export.footer_label", "must not be empty")
	}
	if c.Export.Theme != "light" && c.Export.Theme != "dark" {
		add("export.theme", "must be light or dark, got %q", c.Export.Theme)
	}
	if !strings.EqualFold(c.Export.PageSize, "A4") && !strings.EqualFold(c.Export.PageSize, "Letter") {
		add("export.page_size", "must be A4 or Letter, got %q", c.Export.PageSize)
	}
	if c.Export.MarginPt < 0 || c.Export.MarginPt > 200 {
		add("export.margin_pt", "must be between 0 and 200, got %g", c.Export.MarginPt)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - STORYEXPORT_ADDR: overrides server.addr
//   - STORYEXPORT_API_KEY: overrides server.api_key
//   - STORYEXPORT_RATE_LIMIT: overrides server.rate_limit
//   - STORYEXPORT_DB: overrides database.path
//   - STORYEXPORT_FORMAT: overrides export.default_format
//   - STORYEXPORT_PAGE_SIZE: overrides export.page_size
//   - STORYEXPORT_LOG_FILE: overrides logging.file
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("STORYEXPORT_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("STORYEXPORT_API_KEY"); v != "" {
		c.Server.APIKey = v
	}
	if v := os.Getenv("STORYEXPORT_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.RateLimit = n
		}
	}
	if v := os.Getenv("STORYEXPORT_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("STORYEXPORT_FORMAT"); v != "" {
		c.Export.DefaultFormat = strings.ToLower(v)
	}
	if v := os.Getenv("STORYEXPORT_PAGE_SIZE"); v != "" {
		c.Export.PageSize = v
	}
	if v := os.Getenv("STORYEXPORT_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// ExportOptions builds renderer options from the export section.
func (c *Config) ExportOptions() *export.Options {
	opts := export.DefaultOptions()
	opts.Generator = c.Export.FooterLabel
	opts.Theme = c.Export.Theme
	opts.PDF.PageSize = c.Export.PageSize
	opts.PDF.Margin = c.Export.MarginPt
	opts.PDF.Compress = c.Export.Compress
	return opts
}

// ReadTimeout returns server.read_timeout_secs as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSecs) * time.Second
}

// WriteTimeout returns server.write_timeout_secs as a duration.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutSecs) * time.Second
}

// ShutdownTimeout returns server.shutdown_timeout_secs as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSecs) * time.Second
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "export.page_size").
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value any) error {
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
	if key == "" {
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
				return reflect.Value{}, fmt.Errorf("%s is a section, not a value", key)
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
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an arbitrary value with type conversion.
func setFieldValue(field reflect.Value, value any) error {
	if strVal, ok := value.(string); ok {
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
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %v", err)
			}
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
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Keys returns every settable key in dot notation, in declaration order.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		prefix := tomlName(section)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, prefix+"."+tomlName(section.Type.Field(j)))
		}
	}
	return keys
}

func tomlName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
	if name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the config as TOML with the API key redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Server.APIKey != "" {
		safe.Server.APIKey = "[REDACTED]"
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(safe); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
