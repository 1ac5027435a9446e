// Plexfilter - Plex Webhook Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexfilter

// Package tmdb looks up movie and TV metadata from The Movie Database.
//
// Enrichment is strictly best-effort: every failure mode (disabled client,
// transport error, non-200 status, empty result set, open circuit) collapses
// to a nil Match. Callers render a reduced message and never see an error.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/plexfilter/internal/config"
	"github.com/tomtom215/plexfilter/internal/event"
	"github.com/tomtom215/plexfilter/internal/logging"
	"github.com/tomtom215/plexfilter/internal/metrics"
)

const (
	defaultAPIURL = "https://api.themoviedb.org/3"
	imageBaseURL  = "https://image.tmdb.org/t/p/w500"
	webBaseURL    = "https://www.themoviedb.org"

	userAgent = "Plexfilter"
)

// MatchKind selects the TMDB resource family a match belongs to. The value
// doubles as the path segment in canonical web URLs.
type MatchKind string

const (
	MatchMovie MatchKind = "movie"
	MatchTV    MatchKind = "tv"
)

// Match is the first search result for a lookup.
type Match struct {
	Kind        MatchKind
	ID          int
	Name        string
	Overview    string
	PosterPath  string
	ReleaseDate string // movies only, "YYYY-MM-DD"
}

// ImageURL returns the w500 poster URL, or empty when TMDB has no poster.
func (m *Match) ImageURL() string {
	if m.PosterPath == "" {
		return ""
	}
	return imageBaseURL + m.PosterPath
}

// WebURL returns the canonical TMDB page URL,
// e.g. https://www.themoviedb.org/movie/603-The-Matrix.
func (m *Match) WebURL() string {
	slug := strings.ReplaceAll(m.Name, " ", "-")
	return fmt.Sprintf("%s/%s/%d-%s", webBaseURL, m.Kind, m.ID, slug)
}

// Client performs TMDB search requests behind a circuit breaker.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	logger     zerolog.Logger
	cb         *gobreaker.CircuitBreaker[*Match]
}

// NewClient creates a TMDB client. An empty API key yields a disabled client
// whose Search always returns nil without touching the network.
func NewClient(cfg *config.TMDBConfig) *Client {
	cbName := "tmdb-api"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	logger := logging.With().Str("component", "tmdb").Logger()

	cb := gobreaker.NewCircuitBreaker[*Match](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				logger.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening TMDB circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logger.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &Client{
		apiKey:     cfg.APIKey,
		apiURL:     defaultAPIURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		cb:         cb,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Search dispatches a lookup for the event's media. Movies search /search/movie
// with the title and release year; episodes search /search/tv with the show
// title; shows search /search/tv with their own title. Other kinds, including
// clips, are never looked up.
func (c *Client) Search(ctx context.Context, ev *event.Event) *Match {
	if !c.Enabled() {
		return nil
	}

	switch ev.Kind {
	case event.KindMovie:
		return c.searchMovie(ctx, ev.MediaTitle, ev.ReleaseYear)
	case event.KindEpisode:
		return c.searchTV(ctx, ev.ShowTitle)
	case event.KindShow:
		return c.searchTV(ctx, ev.MediaTitle)
	default:
		return nil
	}
}

type movieResult struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	PosterPath  string `json:"poster_path"`
	ReleaseDate string `json:"release_date"`
}

type tvResult struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Overview   string `json:"overview"`
	PosterPath string `json:"poster_path"`
}

func (c *Client) searchMovie(ctx context.Context, title string, year int) *Match {
	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("query", title)
	if year > 0 {
		query.Set("year", strconv.Itoa(year))
	}

	var results struct {
		Results []movieResult `json:"results"`
	}
	match := c.lookup(ctx, string(MatchMovie), "/search/movie", query, func(body []byte) (*Match, error) {
		if err := json.Unmarshal(body, &results); err != nil {
			return nil, fmt.Errorf("decode movie search response: %w", err)
		}
		if len(results.Results) == 0 {
			return nil, nil
		}
		first := results.Results[0]
		return &Match{
			Kind:        MatchMovie,
			ID:          first.ID,
			Name:        first.Title,
			Overview:    first.Overview,
			PosterPath:  first.PosterPath,
			ReleaseDate: first.ReleaseDate,
		}, nil
	})
	return match
}

func (c *Client) searchTV(ctx context.Context, title string) *Match {
	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("query", title)

	var results struct {
		Results []tvResult `json:"results"`
	}
	match := c.lookup(ctx, string(MatchTV), "/search/tv", query, func(body []byte) (*Match, error) {
		if err := json.Unmarshal(body, &results); err != nil {
			return nil, fmt.Errorf("decode tv search response: %w", err)
		}
		if len(results.Results) == 0 {
			return nil, nil
		}
		first := results.Results[0]
		return &Match{
			Kind:       MatchTV,
			ID:         first.ID,
			Name:       first.Name,
			Overview:   first.Overview,
			PosterPath: first.PosterPath,
		}, nil
	})
	return match
}

// lookup runs one search request through the circuit breaker and maps every
// failure to nil. The API key never reaches the logs.
func (c *Client) lookup(ctx context.Context, kind, path string, query url.Values, decode func([]byte) (*Match, error)) *Match {
	start := time.Now()
	requestURL := c.apiURL + path + "?" + query.Encode()

	match, err := c.cb.Execute(func() (*Match, error) {
		body, err := c.get(ctx, requestURL)
		if err != nil {
			return nil, err
		}
		return decode(body)
	})
	metrics.TMDBLookupDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil && match != nil:
		metrics.TMDBLookups.WithLabelValues(kind, "match").Inc()
		return match
	case err == nil:
		metrics.TMDBLookups.WithLabelValues(kind, "no_match").Inc()
		c.logger.Debug().Str("url", redactURL(requestURL)).Msg("TMDB search returned no results")
		return nil
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.TMDBLookups.WithLabelValues(kind, "rejected").Inc()
		metrics.CircuitBreakerRequests.WithLabelValues("tmdb-api", "rejected").Inc()
		c.logger.Warn().Err(err).Msg("[CIRCUIT BREAKER] TMDB lookup rejected")
		return nil
	default:
		metrics.TMDBLookups.WithLabelValues(kind, "error").Inc()
		metrics.CircuitBreakerRequests.WithLabelValues("tmdb-api", "failure").Inc()
		c.logger.Warn().Err(err).Str("url", redactURL(requestURL)).Msg("TMDB search failed")
		return nil
	}
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// redactURL masks the api_key query parameter for logging.
func redactURL(requestURL string) string {
	parsed, err := url.Parse(requestURL)
	if err != nil {
		return "<unparseable>"
	}
	query := parsed.Query()
	if query.Has("api_key") {
		query.Set("api_key", "<HIDDEN>")
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
