// Plexfilter - Plex Webhook Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexfilter

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/plexfilter/internal/config"
)

// NewRouter builds the Chi router with the full middleware chain and all
// routes mounted.
//
// Routes:
//   - POST /plex     Plex webhook ingestion
//   - GET  /health   liveness check
//   - GET  /metrics  Prometheus metrics
func NewRouter(cfg *config.SecurityConfig, handler *Handler) http.Handler {
	mw := NewChiMiddleware(cfg)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(SecurityHeaders())
	r.Use(RequestMetrics())
	r.Use(mw.CORS())
	r.Use(mw.RateLimit())

	r.Post("/plex", handler.PlexWebhook)
	r.Get("/health", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
