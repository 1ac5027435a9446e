// Plexfilter - Plex Webhook Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexfilter

// Package event classifies raw Plex webhook payloads into a typed event model.
//
// The model is a tagged union: one Event struct carrying a Kind discriminator
// plus the fields each kind needs. Behavior that varies per kind (label and
// description derivation) is a switch over the tag, not a method hierarchy.
package event

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tomtom215/plexfilter/internal/logging"
	"github.com/tomtom215/plexfilter/internal/models"
)

// Kind discriminates the event variants.
type Kind int

const (
	// KindGeneric is any event without media metadata, including events
	// outside the known vocabulary.
	KindGeneric Kind = iota
	// KindMedia is a media-bearing event whose metadata type is not one of
	// the recognized concrete kinds; it carries the raw type verbatim.
	KindMedia
	// KindMovie is a media event with Metadata.type == "movie".
	KindMovie
	// KindClip is a media event with Metadata.type == "clip"; its display
	// type derives from the clip subtype, not the literal "clip".
	KindClip
	// KindShow is a media event with Metadata.type == "show".
	KindShow
	// KindEpisode is a media event with Metadata.type == "episode"; its
	// media title is derived from show title, season/episode index and
	// episode title.
	KindEpisode
)

// Event is a classified webhook notification. Construct via Classify; values
// are immutable once built and live only for the duration of one request.
type Event struct {
	Kind Kind

	// Fields present on every event.
	Name            string // raw event name, e.g. "media.play"
	ServerTitle     string
	DeviceTitle     string
	AccountName     string
	AccountThumbURL string

	// Media fields (KindMedia and more specific kinds).
	MediaType  string // raw Metadata.type
	MediaTitle string
	Summary    string

	// KindMovie.
	ReleaseYear int

	// KindClip.
	MediaSubtype string

	// KindEpisode.
	ShowTitle    string
	SeasonIndex  int
	EpisodeIndex int
	EpisodeTitle string
}

// mediaEvents are the event names that carry a Metadata section selecting a
// concrete media kind.
var mediaEvents = map[string]struct{}{
	"library.new":      {},
	"media.pause":      {},
	"media.play":       {},
	"media.rate":       {},
	"media.resume":     {},
	"media.scrobble":   {},
	"media.stop":       {},
	"playback.started": {},
}

// genericEvents are the known event names without media metadata.
var genericEvents = map[string]struct{}{
	"library.on.deck":          {},
	"admin.database.backup":    {},
	"admin.database.corrupted": {},
	"device.new":               {},
}

// IsKnownName reports whether name belongs to the fixed webhook event
// vocabulary.
func IsKnownName(name string) bool {
	if _, ok := mediaEvents[name]; ok {
		return true
	}
	_, ok := genericEvents[name]
	return ok
}

// Classify maps a decoded webhook payload to its typed event.
//
// Classification never fails: names outside the known vocabulary and
// unrecognized media types degrade to KindGeneric/KindMedia with a logged
// warning, and missing fields are carried as zero values for downstream
// renderers to tolerate. Callers must reject payloads without an event name
// before classifying.
func Classify(payload *models.PlexWebhook) Event {
	ev := Event{
		Kind:            KindGeneric,
		Name:            payload.Event,
		ServerTitle:     payload.Server.Title,
		DeviceTitle:     payload.Player.Title,
		AccountName:     payload.Account.Title,
		AccountThumbURL: payload.Account.Thumb,
	}

	if _, ok := mediaEvents[payload.Event]; ok {
		meta := payload.Metadata
		if meta == nil {
			// Fields are optional by contract; degrade rather than fail.
			logging.Debug().Str("event", payload.Event).Msg("Media event without metadata")
			return ev
		}

		ev.MediaType = meta.Type
		ev.MediaTitle = meta.Title
		ev.Summary = meta.Summary

		switch meta.Type {
		case "movie":
			ev.Kind = KindMovie
			ev.ReleaseYear = meta.Year
		case "clip":
			ev.Kind = KindClip
			ev.MediaSubtype = meta.Subtype
		case "show":
			ev.Kind = KindShow
		case "episode":
			ev.Kind = KindEpisode
			ev.ShowTitle = meta.GrandparentTitle
			ev.SeasonIndex = meta.ParentIndex
			ev.EpisodeIndex = meta.Index
			ev.EpisodeTitle = meta.Title
			ev.MediaTitle = EpisodeTitle(meta.GrandparentTitle, meta.ParentIndex, meta.Index, meta.Title)
		default:
			ev.Kind = KindMedia
			logging.Warn().
				Str("event", payload.Event).
				Str("media_type", meta.Type).
				Msg("Unrecognized media type")
		}
		return ev
	}

	if _, ok := genericEvents[payload.Event]; !ok {
		logging.Warn().Str("event", payload.Event).Msg("Unknown webhook event")
	}
	return ev
}

// EpisodeTitle derives the composed episode title. Season and episode indexes
// are zero-padded to at least two digits; values of 100 or more keep their
// full width.
func EpisodeTitle(show string, season, episode int, title string) string {
	return fmt.Sprintf("%s - S%02dE%02d - %s", show, season, episode, title)
}

// IsMedia reports whether the event carries media metadata.
func (e *Event) IsMedia() bool {
	return e.Kind != KindGeneric
}

// DisplayType returns the human-facing media type. Clips display as their
// subtype; unrecognized types display verbatim.
func (e *Event) DisplayType() string {
	if e.Kind == KindClip && e.MediaSubtype != "" {
		return e.MediaSubtype
	}
	return e.MediaType
}

// Label derives the human-readable event title: dots become spaces, each word
// is title-cased, and for media events the word "Media" is replaced by the
// display type ("media.play" + movie -> "Movie Play").
//
// The caser is built per call: cases.Caser carries transformer state and is
// not safe for concurrent use, and Label runs on concurrent request paths.
func (e *Event) Label() string {
	caser := cases.Title(language.English)
	label := caser.String(strings.ReplaceAll(e.Name, ".", " "))
	if e.IsMedia() {
		if display := e.DisplayType(); display != "" {
			label = strings.Replace(label, "Media", caser.String(display), 1)
		}
	}
	return label
}

// Description derives the message body: empty for generic events, otherwise
// the media title followed by the summary in a code block when present.
func (e *Event) Description() string {
	if !e.IsMedia() {
		return ""
	}
	if e.Summary == "" {
		return e.MediaTitle
	}
	return e.MediaTitle + "\n```" + e.Summary + "```"
}
