// Plexfilter - Plex Webhook Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexfilter

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Tests using t.Setenv cannot run in parallel; environment variables are
// process-global.

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 6795 {
		t.Errorf("Server.Port = %d, want 6795", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q", cfg.Server.Host)
	}
	if cfg.Discord.Username != "Plexfilter" {
		t.Errorf("Discord.Username = %q", cfg.Discord.Username)
	}
	if cfg.Notify.Timezone != "Pacific/Auckland" {
		t.Errorf("Notify.Timezone = %q", cfg.Notify.Timezone)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Security.RateLimitReqs != 100 || cfg.Security.RateLimitWindow != time.Minute {
		t.Errorf("Security = %+v", cfg.Security)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.com/api/webhooks/1/abc")
	t.Setenv("TMDB_API_KEY", "secret")
	t.Setenv("IGNORED_EVENTS", "media.pause, media.resume")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Discord.WebhookURL != "https://discord.com/api/webhooks/1/abc" {
		t.Errorf("Discord.WebhookURL = %q", cfg.Discord.WebhookURL)
	}
	if cfg.TMDB.APIKey != "secret" {
		t.Errorf("TMDB.APIKey = %q", cfg.TMDB.APIKey)
	}
	if len(cfg.Events.Ignored) != 2 || cfg.Events.Ignored[0] != "media.pause" || cfg.Events.Ignored[1] != "media.resume" {
		t.Errorf("Events.Ignored = %v", cfg.Events.Ignored)
	}
	if cfg.Notify.Timezone != "UTC" {
		t.Errorf("Notify.Timezone = %q", cfg.Notify.Timezone)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7000
events:
  ignored:
    - media.pause
discord:
  username: Cinema Bot
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", cfg.Server.Port)
	}
	if len(cfg.Events.Ignored) != 1 || cfg.Events.Ignored[0] != "media.pause" {
		t.Errorf("Events.Ignored = %v", cfg.Events.Ignored)
	}
	if cfg.Discord.Username != "Cinema Bot" {
		t.Errorf("Discord.Username = %q", cfg.Discord.Username)
	}
	// Untouched settings keep defaults.
	if cfg.Notify.Timezone != "Pacific/Auckland" {
		t.Errorf("Notify.Timezone = %q", cfg.Notify.Timezone)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7000\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HTTP_PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000 (env over file)", cfg.Server.Port)
	}
}

func TestLoadValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"port out of range", "HTTP_PORT", "99999", "Port"},
		{"bad timezone", "TIMEZONE", "Atlantis/Lost", "Timezone"},
		{"bad log level", "LOG_LEVEL", "verbose", "Level"},
		{"bad webhook url", "DISCORD_WEBHOOK_URL", "not-a-url", "WebhookURL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() error = nil, want validation failure")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestIgnoredSet(t *testing.T) {
	t.Parallel()

	events := EventsConfig{Ignored: []string{"media.pause", " media.resume ", "", "media.pause"}}
	set := events.IgnoredSet()

	if len(set) != 2 {
		t.Errorf("len(set) = %d, want 2: %v", len(set), set)
	}
	if _, ok := set["media.pause"]; !ok {
		t.Error("set missing media.pause")
	}
	if _, ok := set["media.resume"]; !ok {
		t.Error("set missing trimmed media.resume")
	}
}
