// Plexfilter - Plex Webhook Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexfilter

// Package models defines the wire-level payload structures Plexfilter
// consumes and produces.
package models

// Plex Webhook Models
// These structures represent HTTP webhook payloads from Plex Media Server.
// Plex POSTs a multipart form with a "payload" field containing the JSON
// document decoded into PlexWebhook.
// Setup: Plex Settings → Webhooks → Add webhook URL
// Documentation: https://support.plex.tv/articles/115002267687-webhooks/

// PlexWebhook represents a Plex webhook HTTP POST payload.
//
// Every field is optional from the decoder's point of view: Plex omits
// sections that do not apply to an event, and downstream rendering must
// tolerate absence. Only a missing Event value is treated as malformed.
type PlexWebhook struct {
	Event    string               `json:"event"`              // Webhook event type (e.g., "media.play", "library.new")
	User     bool                 `json:"user"`               // True if user-initiated action
	Owner    bool                 `json:"owner"`              // True if server owner triggered event
	Account  PlexWebhookAccount   `json:"Account"`            // User account information
	Server   PlexWebhookServer    `json:"Server"`             // Plex server information
	Player   PlexWebhookPlayer    `json:"Player"`             // Client/device information
	Metadata *PlexWebhookMetadata `json:"Metadata,omitempty"` // Content metadata (present for media events)
}

// PlexWebhookAccount represents the user account in webhook payload.
type PlexWebhookAccount struct {
	ID    int    `json:"id"`    // Plex account ID
	Thumb string `json:"thumb"` // Profile picture URL
	Title string `json:"title"` // Username/display name
}

// PlexWebhookServer represents the Plex server in webhook payload.
type PlexWebhookServer struct {
	Title string `json:"title"` // Server name
	UUID  string `json:"uuid"`  // Server machine identifier
}

// PlexWebhookPlayer represents the client/device in webhook payload.
type PlexWebhookPlayer struct {
	Local         bool   `json:"local"`         // True if on local network
	PublicAddress string `json:"publicAddress"` // Client IP address
	Title         string `json:"title"`         // Device name
	UUID          string `json:"uuid"`          // Device unique identifier
}

// PlexWebhookMetadata represents content metadata in webhook payload.
type PlexWebhookMetadata struct {
	LibrarySectionType  string `json:"librarySectionType"`  // "movie", "show", "artist"
	LibrarySectionTitle string `json:"librarySectionTitle"` // Library name
	RatingKey           string `json:"ratingKey"`           // Content unique identifier
	Type                string `json:"type"`                // Content type: "movie", "episode", "show", "clip"
	Subtype             string `json:"subtype"`             // Clip subtype (e.g., "trailer", "behindTheScenes")
	Title               string `json:"title"`               // Content title
	GrandparentTitle    string `json:"grandparentTitle"`    // Show title (episodes)
	ParentTitle         string `json:"parentTitle"`         // Season title (episodes)
	Summary             string `json:"summary"`             // Description/synopsis
	Index               int    `json:"index"`               // Episode number
	ParentIndex         int    `json:"parentIndex"`         // Season number
	Year                int    `json:"year"`                // Release year
	Thumb               string `json:"thumb"`               // Thumbnail URL
}

// GetUsername returns the username from the webhook account.
func (w *PlexWebhook) GetUsername() string {
	return w.Account.Title
}

// GetPlayerIP returns the client IP address.
func (w *PlexWebhook) GetPlayerIP() string {
	return w.Player.PublicAddress
}
