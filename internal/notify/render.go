// Plexfilter - Plex Webhook Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexfilter

// Package notify turns classified events into rendered notifications and
// coordinates enrichment and delivery for each inbound webhook.
package notify

import (
	"strings"
	"time"

	"github.com/tomtom215/plexfilter/internal/event"
	"github.com/tomtom215/plexfilter/internal/models"
	"github.com/tomtom215/plexfilter/internal/tmdb"
)

// steelBlue is the accent color of every notification, packed 24-bit RGB
// (70, 130, 180).
const steelBlue = 70<<16 | 130<<8 | 180

// footerSuppressedAccounts lists events whose footer omits the account name.
// These are server-triggered, not user-triggered.
var footerSuppressedAccounts = map[string]struct{}{
	"library.new":           {},
	"admin.database.backup": {},
}

// Renderer derives RenderedMessages from events. The display timezone is
// validated at config load, so construction cannot fail at render time.
type Renderer struct {
	location *time.Location
}

// NewRenderer creates a renderer that formats timestamps in the given zone.
func NewRenderer(timezone string) (*Renderer, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &Renderer{location: loc}, nil
}

// Render builds the outbound message for an event. A nil match renders the
// reduced form: no link, no thumbnail.
func (r *Renderer) Render(ev *event.Event, match *tmdb.Match, now time.Time) models.RenderedMessage {
	msg := models.RenderedMessage{
		Title:         ev.Label(),
		Description:   ev.Description(),
		Color:         steelBlue,
		Timestamp:     now.In(r.location).Format(time.RFC3339),
		FooterText:    footerText(ev),
		FooterIconURL: ev.AccountThumbURL,
	}
	// Non-media events never carry a link or thumbnail, match or not.
	if match != nil && ev.IsMedia() {
		msg.LinkURL = match.WebURL()
		msg.ThumbnailURL = match.ImageURL()
	}
	return msg
}

// footerText joins the identity fields with "|": account name (unless the
// event suppresses it), device title, server title. Absent parts are skipped
// so no empty segment is ever emitted.
func footerText(ev *event.Event) string {
	parts := make([]string, 0, 3)
	if _, suppressed := footerSuppressedAccounts[ev.Name]; !suppressed && ev.AccountName != "" {
		parts = append(parts, ev.AccountName)
	}
	if ev.DeviceTitle != "" {
		parts = append(parts, ev.DeviceTitle)
	}
	if ev.ServerTitle != "" {
		parts = append(parts, ev.ServerTitle)
	}
	return strings.Join(parts, "|")
}
