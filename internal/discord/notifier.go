// Plexfilter - Plex Webhook Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexfilter

// Package discord delivers rendered notifications to a Discord webhook.
package discord

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/plexfilter/internal/config"
	"github.com/tomtom215/plexfilter/internal/metrics"
	"github.com/tomtom215/plexfilter/internal/models"
)

// Notifier sends rendered messages to a Discord webhook. A Notifier without
// a webhook URL is disabled and drops every message silently.
type Notifier struct {
	webhookURL string
	username   string
	client     *http.Client
	mu         sync.Mutex

	// Rate limiting: nextSlot is the earliest time the next delivery may
	// start. Senders claim their slot under mu before any network I/O.
	nextSlot  time.Time
	rateLimit time.Duration
}

// NewNotifier creates a Discord notifier from configuration.
func NewNotifier(cfg *config.DiscordConfig) *Notifier {
	return &Notifier{
		webhookURL: cfg.WebhookURL,
		username:   cfg.Username,
		rateLimit:  time.Duration(cfg.RateLimitMs) * time.Millisecond,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Enabled reports whether a webhook URL is configured.
func (n *Notifier) Enabled() bool {
	return n.webhookURL != ""
}

// Send delivers one message. It returns the Discord response status code and
// body verbatim for the caller to log; a zero status means delivery was
// skipped because the notifier is disabled.
func (n *Notifier) Send(ctx context.Context, msg *models.RenderedMessage) (int, string, error) {
	if !n.Enabled() {
		return 0, "", nil
	}

	if err := n.reserveSendSlot(ctx); err != nil {
		return 0, "", err
	}

	payload := webhookPayload{
		Username: n.username,
		Embeds:   []embed{buildEmbed(msg)},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("marshal Discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("create Discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		metrics.DiscordDeliveries.WithLabelValues("error").Inc()
		return 0, "", fmt.Errorf("send Discord webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	metrics.DiscordDeliveries.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	return resp.StatusCode, string(respBody), nil
}

// reserveSendSlot claims the next delivery slot under the mutex, so
// concurrent senders each get a distinct slot and the minimum interval holds
// regardless of how long the HTTP round trips take. It then blocks until the
// claimed slot arrives, or the context is canceled.
func (n *Notifier) reserveSendSlot(ctx context.Context) error {
	if n.rateLimit <= 0 {
		return nil
	}

	n.mu.Lock()
	slot := n.nextSlot
	if now := time.Now(); slot.Before(now) {
		slot = now
	}
	n.nextSlot = slot.Add(n.rateLimit)
	n.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}

	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// buildEmbed maps a rendered message onto the Discord embed wire format.
func buildEmbed(msg *models.RenderedMessage) embed {
	e := embed{
		Title:       msg.Title,
		Description: msg.Description,
		URL:         msg.LinkURL,
		Color:       msg.Color,
		Timestamp:   msg.Timestamp,
	}
	if msg.ThumbnailURL != "" {
		e.Thumbnail = &embedThumbnail{URL: msg.ThumbnailURL}
	}
	if msg.FooterText != "" || msg.FooterIconURL != "" {
		e.Footer = &embedFooter{Text: msg.FooterText, IconURL: msg.FooterIconURL}
	}
	return e
}

// Discord webhook structures
type webhookPayload struct {
	Username string  `json:"username,omitempty"`
	Content  string  `json:"content,omitempty"`
	Embeds   []embed `json:"embeds,omitempty"`
}

type embed struct {
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	URL         string          `json:"url,omitempty"`
	Color       int             `json:"color,omitempty"`
	Timestamp   string          `json:"timestamp,omitempty"`
	Thumbnail   *embedThumbnail `json:"thumbnail,omitempty"`
	Footer      *embedFooter    `json:"footer,omitempty"`
}

type embedThumbnail struct {
	URL string `json:"url"`
}

type embedFooter struct {
	Text    string `json:"text,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}
