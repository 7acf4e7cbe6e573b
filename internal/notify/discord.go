// Package notify posts operator notifications to a Discord webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"fichesynthese/internal/logger"
)

const (
	defaultUsername = "Fiche de Synthèse Notifier"
	requestTimeout  = 5 * time.Second

	ColorError   = 0xFF0000
	ColorSuccess = 0x84CC16
)

// Discord embed structures, as documented by the webhook API.
type EmbedFooter struct {
	Text    string `json:"text,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Color       int          `json:"color,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// WebhookPayload is the body Discord expects for webhook requests with embeds.
type WebhookPayload struct {
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Content   string  `json:"content,omitempty"`
	Embeds    []Embed `json:"embeds"`
}

// Discord sends embeds in the background. A Discord with an empty webhook URL
// drops everything.
type Discord struct {
	webhookURL string
	client     *http.Client
	log        *logger.Logger
	wg         sync.WaitGroup
}

func NewDiscord(webhookURL string, log *logger.Logger) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: requestTimeout},
		log:        log.With("component", "discord"),
	}
}

// Enabled reports whether a webhook is configured.
func (d *Discord) Enabled() bool { return d != nil && d.webhookURL != "" }

// Send posts embed asynchronously; delivery failures are only logged.
func (d *Discord) Send(embed Embed) {
	if !d.Enabled() {
		return
	}
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().Format(time.RFC3339)
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.post(embed); err != nil {
			d.log.Error("discord notification failed", "title", embed.Title, "error", err)
			return
		}
		d.log.Debug("discord notification sent", "title", embed.Title)
	}()
}

// Wait blocks until every pending notification has been attempted.
func (d *Discord) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

func (d *Discord) post(embed Embed) error {
	body, err := json.Marshal(WebhookPayload{
		Username: defaultUsername,
		Embeds:   []Embed{embed},
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}
	return nil
}

// ErrorEmbed builds the red embed used for failed requests.
func ErrorEmbed(action string, status int, path string, err error) Embed {
	return Embed{
		Title:       fmt.Sprintf("🚨 API Error: %s", action),
		Description: fmt.Sprintf("**Error Details:**\n```%s```", err.Error()),
		Color:       ColorError,
		Fields: []EmbedField{
			{Name: "HTTP Status", Value: fmt.Sprintf("%d", status), Inline: true},
			{Name: "Path", Value: path},
		},
	}
}
