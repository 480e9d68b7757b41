/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate points the config file into a temp dir so the user's real config
// never leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfig, path)
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	path := isolate(t)
	cfg, got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != path {
		t.Fatalf("config path = %q, want %q", got, path)
	}
	if cfg.Levels.Extension != ".smll" || cfg.Loader.QueueSize != 16 || !cfg.Journal.Enabled {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if want := filepath.Join("assets", "levels", ".smllc", "journal.sqlite"); cfg.JournalDSN() != want {
		t.Fatalf("JournalDSN() = %q, want %q", cfg.JournalDSN(), want)
	}
}

func TestLoadMergesFileKeepingOmittedDefaults(t *testing.T) {
	path := isolate(t)
	data := "levels:\n  dir: /srv/levels\n  extension: lvl\nloader:\n  queue_size: 4\nlogging:\n  level: DEBUG\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Levels.Dir != "/srv/levels" || cfg.Levels.Extension != ".lvl" || cfg.Loader.QueueSize != 4 {
		t.Fatalf("file values not merged: %+v", cfg)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if !cfg.Journal.Enabled {
		t.Fatalf("journal.enabled omitted in file must stay at its default")
	}
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("levels: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, _, err := Load()
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Loader.QueueSize != 16 {
		t.Fatalf("defaults should survive a parse error: %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLevelsDir, "/tmp/lv")
	t.Setenv(EnvQueueSize, "3")
	t.Setenv(EnvJournalEnabled, "off")
	t.Setenv(EnvJournalDSN, "postgres://u@h/db")
	t.Setenv(EnvTelemetryOptIn, "true")
	t.Setenv(EnvLogFormat, "JSON")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Levels.Dir != "/tmp/lv" || cfg.Loader.QueueSize != 3 || cfg.Journal.Enabled {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.JournalDSN() != "postgres://u@h/db" || !cfg.Telemetry.OptIn || cfg.Logging.Format != "json" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if name, ok := EnvOverrideFor("journal.dsn"); !ok || name != EnvJournalDSN {
		t.Fatalf("EnvOverrideFor(journal.dsn) = %q,%v", name, ok)
	}
	if _, ok := EnvOverrideFor("logging.file"); ok {
		t.Fatalf("logging.file is not overridden")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.Levels.Dir = "maps"
	cfg.Telemetry.OptIn = true
	cfg.Telemetry.EventsURL = "https://telemetry.example/events"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Levels.Dir != "maps" || !got.Telemetry.OptIn || got.Telemetry.EventsURL != cfg.Telemetry.EventsURL {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging = LoggingConfig{Level: "Warn", Format: "json", Source: true, File: "/var/log/smllc.log"}
	mergeInto(&dst, &src)
	opts := dst.Logging.LogOptions()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "/var/log/smllc.log" {
		t.Fatalf("logging fields not merged correctly: %#v", opts)
	}
}
