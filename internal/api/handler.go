// Plexfilter - Plex Webhook Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexfilter

// Package api provides the HTTP surface of Plexfilter: the Plex webhook
// ingestion endpoint, health checking and Prometheus metrics.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/plexfilter/internal/event"
	"github.com/tomtom215/plexfilter/internal/logging"
	"github.com/tomtom215/plexfilter/internal/metrics"
	"github.com/tomtom215/plexfilter/internal/models"
	"github.com/tomtom215/plexfilter/internal/notify"
)

// maxPayloadBytes bounds the decoded multipart form. Plex payloads are a few
// kilobytes; anything near this limit is hostile.
const maxPayloadBytes = 1 << 20

// WebhookProcessor runs the notification pipeline for one decoded payload.
type WebhookProcessor interface {
	Handle(ctx context.Context, payload *models.PlexWebhook) (models.RenderedMessage, error)
}

// Handler holds the HTTP handlers and their collaborators.
type Handler struct {
	processor WebhookProcessor
	started   time.Time
}

// NewHandler creates the API handler.
func NewHandler(processor WebhookProcessor) *Handler {
	return &Handler{
		processor: processor,
		started:   time.Now(),
	}
}

// PlexWebhook handles incoming Plex webhook notifications
// POST /plex
//
// Plex delivers webhooks as a multipart form with a "payload" field holding
// the JSON document.
//
// Webhook Setup:
//  1. Go to Plex Settings → Webhooks
//  2. Add webhook URL: http://your-host:6795/plex
//
// Responses:
//   - 200 with {"success": true} after the pipeline ran (delivery outcome
//     does not change the response)
//   - 400 IGNORED_EVENT when the event name is on the ignored list
//   - 400 MALFORMED_PAYLOAD when the payload cannot be decoded or names
//     no event
func (h *Handler) PlexWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPayloadBytes)

	if err := r.ParseMultipartForm(maxPayloadBytes); err != nil {
		// Fall back to a urlencoded form; Plex normally posts multipart.
		if err := r.ParseForm(); err != nil {
			metrics.WebhooksReceived.WithLabelValues("other", "invalid_request").Inc()
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request form", err)
			return
		}
	}

	raw := r.FormValue("payload")
	if raw == "" {
		metrics.WebhooksReceived.WithLabelValues("other", "malformed").Inc()
		respondError(w, http.StatusBadRequest, "MALFORMED_PAYLOAD", "Malformed Payload", nil)
		return
	}

	var payload models.PlexWebhook
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		metrics.WebhooksReceived.WithLabelValues("other", "malformed").Inc()
		respondError(w, http.StatusBadRequest, "MALFORMED_PAYLOAD", "Malformed Payload", err)
		return
	}

	// Sanitize all user-provided values to prevent log injection.
	logging.Info().
		Str("event", sanitizeLogValue(payload.Event)).
		Str("user", sanitizeLogValue(payload.GetUsername())).
		Str("ip", sanitizeLogValue(payload.GetPlayerIP())).
		Msg("Webhook received")

	eventLabel := metricEventLabel(payload.Event)

	_, err := h.processor.Handle(r.Context(), &payload)
	switch {
	case errors.Is(err, notify.ErrEventIgnored):
		metrics.WebhooksReceived.WithLabelValues(eventLabel, "ignored").Inc()
		respondError(w, http.StatusBadRequest, "IGNORED_EVENT", "Ignored Event", nil)
		return
	case errors.Is(err, notify.ErrMalformedPayload):
		metrics.WebhooksReceived.WithLabelValues(eventLabel, "malformed").Inc()
		respondError(w, http.StatusBadRequest, "MALFORMED_PAYLOAD", "Malformed Payload", nil)
		return
	case err != nil:
		metrics.WebhooksReceived.WithLabelValues(eventLabel, "error").Inc()
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process webhook", err)
		return
	}

	metrics.WebhooksReceived.WithLabelValues(eventLabel, "processed").Inc()
	respondSuccess(w, map[string]interface{}{"success": true})
}

// metricEventLabel buckets event names outside the known webhook vocabulary
// under "other". Event names arrive from untrusted input and must not mint
// unbounded metric label values.
func metricEventLabel(name string) string {
	if event.IsKnownName(name) {
		return name
	}
	return "other"
}

// Health handles liveness checks
// GET /health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}
