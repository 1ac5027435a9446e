// Plexfilter - Plex Webhook Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexfilter

// Plexfilter relays Plex Media Server webhooks to Discord. It classifies each
// inbound event, optionally enriches it with TMDB metadata, renders a Discord
// embed and delivers it, with a configurable ignore list filtering events out
// up front.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/plexfilter/internal/api"
	"github.com/tomtom215/plexfilter/internal/config"
	"github.com/tomtom215/plexfilter/internal/discord"
	"github.com/tomtom215/plexfilter/internal/logging"
	"github.com/tomtom215/plexfilter/internal/notify"
	"github.com/tomtom215/plexfilter/internal/supervisor"
	"github.com/tomtom215/plexfilter/internal/tmdb"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Plexfilter failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logging.Init(logCfg)

	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Bool("discord_enabled", cfg.Discord.WebhookURL != "").
		Bool("tmdb_enabled", cfg.TMDB.APIKey != "").
		Strs("ignored_events", cfg.Events.Ignored).
		Msg("Starting Plexfilter")

	renderer, err := notify.NewRenderer(cfg.Notify.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Notify.Timezone, err)
	}

	var enricher notify.Enricher
	if tmdbClient := tmdb.NewClient(&cfg.TMDB); tmdbClient.Enabled() {
		enricher = tmdbClient
	}

	dispatcher := notify.NewDispatcher(
		cfg.Events.IgnoredSet(),
		enricher,
		renderer,
		discord.NewNotifier(&cfg.Discord),
	)

	router := api.NewRouter(&cfg.Security, api.NewHandler(dispatcher))
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.Add(supervisor.NewHTTPService(server, cfg.Server.Timeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}

	logging.Info().Msg("Plexfilter stopped")
	return nil
}
