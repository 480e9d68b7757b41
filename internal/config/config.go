/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	applog "smllc/internal/log"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted as YAML in the user
// scope. Environment variables override it at runtime and are never saved.
//
// config_version: bump when the structure changes incompatibly.
type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Levels        LevelsConfig    `yaml:"levels"`
	Loader        LoaderConfig    `yaml:"loader"`
	Journal       JournalConfig   `yaml:"journal"`
	Logging       LoggingConfig   `yaml:"logging"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`
}

type LevelsConfig struct {
	Dir       string `yaml:"dir"`
	Extension string `yaml:"extension"`
}

type LoaderConfig struct {
	QueueSize int `yaml:"queue_size"`
}

type JournalConfig struct {
	Enabled bool `yaml:"enabled"`
	// DSN is a SQLite file path or a postgres:// URL. Empty means
	// <levels.dir>/.smllc/journal.sqlite.
	DSN string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type TelemetryConfig struct {
	OptIn     bool   `yaml:"opt_in"`
	EventsURL string `yaml:"events_url"`
	CrashURL  string `yaml:"crash_url"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Levels:        LevelsConfig{Dir: filepath.Join("assets", "levels"), Extension: ".smll"},
		Loader:        LoaderConfig{QueueSize: 16},
		Journal:       JournalConfig{Enabled: true},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfig          = "SMLL_CONFIG"
	EnvLevelsDir       = "SMLL_LEVELS_DIR"
	EnvLevelsExt       = "SMLL_LEVELS_EXT"
	EnvQueueSize       = "SMLL_QUEUE_SIZE"
	EnvJournalEnabled  = "SMLL_JOURNAL_ENABLED"
	EnvJournalDSN      = "SMLL_JOURNAL_DSN"
	EnvTelemetryOptIn  = "SMLL_TELEMETRY_OPT_IN"
	EnvTelemetryEvents = "SMLL_TELEMETRY_EVENTS_URL"
	EnvTelemetryCrash  = "SMLL_TELEMETRY_CRASH_URL"
	EnvLogLevel        = applog.EnvLevel
	EnvLogFormat       = applog.EnvFormat
	EnvLogSource       = applog.EnvSource
	EnvLogFile         = applog.EnvFile
)

// ConfigPath returns the config file path: SMLL_CONFIG if set, otherwise the
// per-user config directory.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "smllc")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "smllc")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "smllc")
		} else if home := os.Getenv("HOME"); home != "" {
			base = filepath.Join(home, ".config", "smllc")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load builds the effective configuration: defaults, then the config file if
// present, then environment overrides. It returns the file path that was
// consulted.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		applyEnvOverrides(&cfg)
		return cfg, "", err
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, path, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, path, fmt.Errorf("read config %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, path, nil
}

// Save writes cfg to the config file.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// mergeInto copies file settings over dst. src starts from Defaults, so
// booleans the file omits keep their default.
func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if v := strings.TrimSpace(src.Levels.Dir); v != "" {
		dst.Levels.Dir = v
	}
	if v := strings.TrimSpace(src.Levels.Extension); v != "" {
		dst.Levels.Extension = normalizeExt(v)
	}
	if src.Loader.QueueSize > 0 {
		dst.Loader.QueueSize = src.Loader.QueueSize
	}
	dst.Journal.Enabled = src.Journal.Enabled
	if v := strings.TrimSpace(src.Journal.DSN); v != "" {
		dst.Journal.DSN = v
	}
	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}
	dst.Telemetry.OptIn = src.Telemetry.OptIn
	if v := strings.TrimSpace(src.Telemetry.EventsURL); v != "" {
		dst.Telemetry.EventsURL = v
	}
	if v := strings.TrimSpace(src.Telemetry.CrashURL); v != "" {
		dst.Telemetry.CrashURL = v
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := env(EnvLevelsDir); v != "" {
		cfg.Levels.Dir = v
	}
	if v := env(EnvLevelsExt); v != "" {
		cfg.Levels.Extension = normalizeExt(v)
	}
	if v := env(EnvQueueSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Loader.QueueSize = n
		}
	}
	if v := env(EnvJournalEnabled); v != "" {
		cfg.Journal.Enabled = truthy(v)
	}
	if v := env(EnvJournalDSN); v != "" {
		cfg.Journal.DSN = v
	}
	if v := env(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := env(EnvLogFormat); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := env(EnvLogSource); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := env(EnvLogFile); v != "" {
		cfg.Logging.File = v
	}
	if v := env(EnvTelemetryOptIn); v != "" {
		cfg.Telemetry.OptIn = truthy(v)
	}
	if v := env(EnvTelemetryEvents); v != "" {
		cfg.Telemetry.EventsURL = v
	}
	if v := env(EnvTelemetryCrash); v != "" {
		cfg.Telemetry.CrashURL = v
	}
}

var envKeys = map[string]string{
	"levels.dir":           EnvLevelsDir,
	"levels.extension":     EnvLevelsExt,
	"loader.queue_size":    EnvQueueSize,
	"journal.enabled":      EnvJournalEnabled,
	"journal.dsn":          EnvJournalDSN,
	"logging.level":        EnvLogLevel,
	"logging.format":       EnvLogFormat,
	"logging.source":       EnvLogSource,
	"logging.file":         EnvLogFile,
	"telemetry.opt_in":     EnvTelemetryOptIn,
	"telemetry.events_url": EnvTelemetryEvents,
	"telemetry.crash_url":  EnvTelemetryCrash,
}

// EnvOverrideFor returns the env var name if the dotted key is currently
// overridden by the environment.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || env(name) == "" {
		return "", false
	}
	return name, true
}

// JournalDSN resolves the journal location, defaulting next to the levels.
func (c AppConfig) JournalDSN() string {
	if c.Journal.DSN != "" {
		return c.Journal.DSN
	}
	return filepath.Join(c.Levels.Dir, ".smllc", "journal.sqlite")
}

// LogOptions converts the logging section into logger options.
func (l LoggingConfig) LogOptions() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}

func env(key string) string { return strings.TrimSpace(os.Getenv(key)) }

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func normalizeExt(ext string) string {
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}
