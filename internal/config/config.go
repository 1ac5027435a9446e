// Plexfilter - Plex Webhook Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexfilter

// Package config provides layered configuration for Plexfilter using Koanf v2.
//
// Precedence: environment variables > YAML config file > built-in defaults.
// The loaded Config is validated once at startup and treated as read-only
// afterwards; components receive it (or a sub-struct) explicitly instead of
// reading ambient global state.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the Plexfilter service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Discord  DiscordConfig  `koanf:"discord"`
	TMDB     TMDBConfig     `koanf:"tmdb"`
	Events   EventsConfig   `koanf:"events"`
	Notify   NotifyConfig   `koanf:"notify"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port" validate:"min=1,max=65535"`
	// Timeout bounds request handling and graceful shutdown.
	Timeout time.Duration `koanf:"timeout"`
}

// DiscordConfig holds the outbound Discord webhook settings.
type DiscordConfig struct {
	// WebhookURL is the Discord webhook to deliver notifications to.
	// Empty disables delivery (events are still classified and rendered).
	WebhookURL string `koanf:"webhook_url" validate:"omitempty,url"`
	// Username is the sender display name shown on delivered messages.
	Username string `koanf:"username"`
	// Timeout bounds a single delivery attempt.
	Timeout time.Duration `koanf:"timeout"`
	// RateLimitMs is the minimum interval between deliveries in milliseconds.
	RateLimitMs int `koanf:"rate_limit_ms" validate:"min=0"`
}

// TMDBConfig holds the metadata-lookup settings.
type TMDBConfig struct {
	// APIKey enables TMDB enrichment when non-empty. The key is never
	// written to logs; lookup URLs are redacted before logging.
	APIKey string `koanf:"api_key"`
	// Timeout bounds a single search attempt.
	Timeout time.Duration `koanf:"timeout"`
}

// EventsConfig controls which webhook events are processed.
type EventsConfig struct {
	// Ignored lists event names that are rejected with "Ignored Event"
	// before any classification or rendering.
	Ignored []string `koanf:"ignored"`
}

// IgnoredSet returns the ignored event names as a set for O(1) lookups.
func (e *EventsConfig) IgnoredSet() map[string]struct{} {
	set := make(map[string]struct{}, len(e.Ignored))
	for _, name := range e.Ignored {
		if name = strings.TrimSpace(name); name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// NotifyConfig holds rendering settings.
type NotifyConfig struct {
	// Timezone is the IANA zone identifier used for embed timestamps.
	// Validated at startup so the renderer never needs a fallback path.
	Timezone string `koanf:"timezone" validate:"required,timezone"`
}

// SecurityConfig holds inbound rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration using go-playground/validator.
// It returns a single error describing every failing field.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !asValidationErrors(err, &verrs) {
		return fmt.Errorf("config validation: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("config validation: %s", strings.Join(msgs, "; "))
}

// asValidationErrors unwraps err into validator.ValidationErrors.
func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}
