// Plexfilter - Plex Webhook Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexfilter

package models

// RenderedMessage is a fully derived outbound notification, independent of
// the delivery transport. The renderer owns every field; delivery collaborators
// map it onto their wire format without further interpretation.
type RenderedMessage struct {
	Title       string
	Description string
	// Color is a packed 24-bit RGB accent color.
	Color int
	// Timestamp is RFC 3339 in the configured display timezone.
	Timestamp     string
	LinkURL       string
	ThumbnailURL  string
	FooterText    string
	FooterIconURL string
}
