// Plexfilter - Plex Webhook Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexfilter

package event

import (
	"sync"
	"testing"

	"github.com/tomtom215/plexfilter/internal/models"
)

func TestClassifyMovie(t *testing.T) {
	t.Parallel()

	payload := &models.PlexWebhook{
		Event:   "media.play",
		Account: models.PlexWebhookAccount{Title: "alice", Thumb: "https://plex.tv/users/alice/avatar"},
		Server:  models.PlexWebhookServer{Title: "Den"},
		Player:  models.PlexWebhookPlayer{Title: "Living Room TV"},
		Metadata: &models.PlexWebhookMetadata{
			Type:    "movie",
			Title:   "Heat",
			Summary: "A group of professional bank robbers start to feel the heat.",
			Year:    1995,
		},
	}

	ev := Classify(payload)

	if ev.Kind != KindMovie {
		t.Fatalf("Kind = %d, want KindMovie", ev.Kind)
	}
	if ev.MediaTitle != "Heat" {
		t.Errorf("MediaTitle = %q, want %q", ev.MediaTitle, "Heat")
	}
	if ev.ReleaseYear != 1995 {
		t.Errorf("ReleaseYear = %d, want 1995", ev.ReleaseYear)
	}
	if ev.ServerTitle != "Den" || ev.DeviceTitle != "Living Room TV" || ev.AccountName != "alice" {
		t.Errorf("context fields = %q/%q/%q", ev.ServerTitle, ev.DeviceTitle, ev.AccountName)
	}
	if got, want := ev.Label(), "Movie Play"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
	wantDesc := "Heat\n```A group of professional bank robbers start to feel the heat.```"
	if got := ev.Description(); got != wantDesc {
		t.Errorf("Description() = %q, want %q", got, wantDesc)
	}
}

func TestClassifyEpisode(t *testing.T) {
	t.Parallel()

	payload := &models.PlexWebhook{
		Event: "media.scrobble",
		Metadata: &models.PlexWebhookMetadata{
			Type:             "episode",
			Title:            "Broken to the Fist",
			GrandparentTitle: "Shogun",
			ParentIndex:      1,
			Index:            5,
		},
	}

	ev := Classify(payload)

	if ev.Kind != KindEpisode {
		t.Fatalf("Kind = %d, want KindEpisode", ev.Kind)
	}
	if got, want := ev.MediaTitle, "Shogun - S01E05 - Broken to the Fist"; got != want {
		t.Errorf("MediaTitle = %q, want %q", got, want)
	}
	if ev.ShowTitle != "Shogun" || ev.SeasonIndex != 1 || ev.EpisodeIndex != 5 {
		t.Errorf("episode fields = %q/%d/%d", ev.ShowTitle, ev.SeasonIndex, ev.EpisodeIndex)
	}
	if got, want := ev.Label(), "Episode Scrobble"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}

func TestClassifyClipUsesSubtype(t *testing.T) {
	t.Parallel()

	payload := &models.PlexWebhook{
		Event: "media.play",
		Metadata: &models.PlexWebhookMetadata{
			Type:    "clip",
			Subtype: "trailer",
			Title:   "Dune: Part Two",
		},
	}

	ev := Classify(payload)

	if ev.Kind != KindClip {
		t.Fatalf("Kind = %d, want KindClip", ev.Kind)
	}
	if got, want := ev.Label(), "Trailer Play"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}

func TestClassifyDegradations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		payload  *models.PlexWebhook
		wantKind Kind
	}{
		{
			name:     "generic event",
			payload:  &models.PlexWebhook{Event: "admin.database.backup"},
			wantKind: KindGeneric,
		},
		{
			name:     "unknown event name",
			payload:  &models.PlexWebhook{Event: "media.telepathy"},
			wantKind: KindGeneric,
		},
		{
			name:     "media event without metadata",
			payload:  &models.PlexWebhook{Event: "media.play"},
			wantKind: KindGeneric,
		},
		{
			name: "unrecognized media type",
			payload: &models.PlexWebhook{
				Event:    "media.play",
				Metadata: &models.PlexWebhookMetadata{Type: "track", Title: "Teardrop"},
			},
			wantKind: KindMedia,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ev := Classify(tt.payload)
			if ev.Kind != tt.wantKind {
				t.Errorf("Kind = %d, want %d", ev.Kind, tt.wantKind)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{
			name: "generic dotted name",
			ev:   Event{Kind: KindGeneric, Name: "library.on.deck"},
			want: "Library On Deck",
		},
		{
			name: "media type substitution",
			ev:   Event{Kind: KindMovie, Name: "media.scrobble", MediaType: "movie"},
			want: "Movie Scrobble",
		},
		{
			name: "library.new keeps its own words",
			ev:   Event{Kind: KindMovie, Name: "library.new", MediaType: "movie"},
			want: "Library New",
		},
		{
			name: "unrecognized type shown verbatim",
			ev:   Event{Kind: KindMedia, Name: "media.play", MediaType: "track"},
			want: "Track Play",
		},
		{
			name: "empty type keeps Media",
			ev:   Event{Kind: KindMedia, Name: "media.play"},
			want: "Media Play",
		},
		{
			name: "clip without subtype falls back to type",
			ev:   Event{Kind: KindClip, Name: "media.play", MediaType: "clip"},
			want: "Clip Play",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.ev.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{
			name: "generic is empty",
			ev:   Event{Kind: KindGeneric, Name: "device.new"},
			want: "",
		},
		{
			name: "media without summary",
			ev:   Event{Kind: KindMovie, MediaTitle: "Heat"},
			want: "Heat",
		},
		{
			name: "media with summary",
			ev:   Event{Kind: KindShow, MediaTitle: "Shogun", Summary: "Feudal Japan."},
			want: "Shogun\n```Feudal Japan.```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.ev.Description(); got != tt.want {
				t.Errorf("Description() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Label runs on concurrent request goroutines; it must not share caser state.
func TestLabelConcurrent(t *testing.T) {
	t.Parallel()

	events := []Event{
		{Kind: KindMovie, Name: "media.play", MediaType: "movie"},
		{Kind: KindEpisode, Name: "media.scrobble", MediaType: "episode"},
		{Kind: KindGeneric, Name: "library.on.deck"},
	}
	want := []string{"Movie Play", "Episode Scrobble", "Library On Deck"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				idx := (i + j) % len(events)
				if got := events[idx].Label(); got != want[idx] {
					t.Errorf("Label() = %q, want %q", got, want[idx])
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestIsKnownName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"media.play", true},
		{"library.new", true},
		{"admin.database.corrupted", true},
		{"weird.thing", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsKnownName(tt.name); got != tt.want {
			t.Errorf("IsKnownName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestEpisodeTitlePadding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		season  int
		episode int
		want    string
	}{
		{1, 5, "X - S01E05 - Y"},
		{10, 12, "X - S10E12 - Y"},
		{1, 100, "X - S01E100 - Y"},
		{0, 0, "X - S00E00 - Y"},
	}

	for _, tt := range tests {
		if got := EpisodeTitle("X", tt.season, tt.episode, "Y"); got != tt.want {
			t.Errorf("EpisodeTitle(%d, %d) = %q, want %q", tt.season, tt.episode, got, tt.want)
		}
	}
}
