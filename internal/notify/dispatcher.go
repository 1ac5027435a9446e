// Plexfilter - Plex Webhook Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexfilter

package notify

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/plexfilter/internal/event"
	"github.com/tomtom215/plexfilter/internal/logging"
	"github.com/tomtom215/plexfilter/internal/models"
	"github.com/tomtom215/plexfilter/internal/tmdb"
)

var (
	// ErrEventIgnored marks events on the configured ignored list. The API
	// layer maps it to HTTP 400 "Ignored Event".
	ErrEventIgnored = errors.New("ignored event")

	// ErrMalformedPayload marks payloads without an event name. This is the
	// only payload defect treated as fatal.
	ErrMalformedPayload = errors.New("malformed payload")
)

// Enricher looks up metadata for an event. A nil result means no enrichment;
// lookups never fail visibly.
type Enricher interface {
	Search(ctx context.Context, ev *event.Event) *tmdb.Match
}

// Deliverer sends a rendered message and reports the transport's status code
// and response body for logging. A zero status means delivery was skipped.
type Deliverer interface {
	Send(ctx context.Context, msg *models.RenderedMessage) (int, string, error)
}

// Dispatcher runs the webhook pipeline: ignore-list check, classification,
// enrichment, rendering, delivery. Delivery failures are logged and absorbed;
// the outcome returned to the caller is decided before delivery starts.
type Dispatcher struct {
	ignored   map[string]struct{}
	enricher  Enricher
	renderer  *Renderer
	deliverer Deliverer
	now       func() time.Time
}

// NewDispatcher wires the pipeline. enricher and deliverer may be nil, which
// disables the respective stage.
func NewDispatcher(ignored map[string]struct{}, enricher Enricher, renderer *Renderer, deliverer Deliverer) *Dispatcher {
	return &Dispatcher{
		ignored:   ignored,
		enricher:  enricher,
		renderer:  renderer,
		deliverer: deliverer,
		now:       time.Now,
	}
}

// Handle processes one decoded webhook payload end to end and returns the
// rendered message, or ErrEventIgnored/ErrMalformedPayload when the payload
// is rejected before classification.
func (d *Dispatcher) Handle(ctx context.Context, payload *models.PlexWebhook) (models.RenderedMessage, error) {
	if payload == nil || payload.Event == "" {
		return models.RenderedMessage{}, ErrMalformedPayload
	}

	if _, ok := d.ignored[payload.Event]; ok {
		logging.Debug().Str("event", payload.Event).Msg("Ignored event")
		return models.RenderedMessage{}, ErrEventIgnored
	}

	ev := event.Classify(payload)

	var match *tmdb.Match
	if d.enricher != nil && ev.IsMedia() {
		match = d.enricher.Search(ctx, &ev)
	}

	msg := d.renderer.Render(&ev, match, d.now())
	d.deliver(ctx, &ev, &msg)

	return msg, nil
}

// deliver hands the message to the delivery collaborator and logs the
// transport response. Failures do not propagate.
func (d *Dispatcher) deliver(ctx context.Context, ev *event.Event, msg *models.RenderedMessage) {
	if d.deliverer == nil {
		return
	}

	status, body, err := d.deliverer.Send(ctx, msg)
	switch {
	case err != nil:
		logging.Warn().Err(err).Str("event", ev.Name).Msg("Discord delivery failed")
	case status == 0:
		logging.Debug().Str("event", ev.Name).Msg("Discord delivery disabled")
	default:
		logging.Info().Int("status", status).Str("body", body).Msg("Discord response")
	}
}
