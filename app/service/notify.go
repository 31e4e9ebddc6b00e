package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-relay-keys/config"
)

var ErrNoWebhookConfigured = errors.New("no notification webhook configured")

// KeyCreatedEvent is the payload for a key-creation notification. It
// carries the full secret value; the notifier is the only consumer
// besides the creation response that ever sees it.
type KeyCreatedEvent struct {
	SecretValue      string
	KeyID            string
	Name             string
	Description      string
	KeyPrefix        string
	TokenLimit       *int64
	DailyCostLimit   *float64
	MonthlyCostLimit *float64
	ExpiresAt        *time.Time
	CreatedAt        time.Time
	// WebhookOverride, when set, replaces the configured webhook URL
	// for this event only.
	WebhookOverride string
}

// Notifier delivers best-effort notifications. Callers observe the
// returned error for logging only; a failed notification never affects
// the operation that produced the event.
type Notifier interface {
	NotifyKeyCreated(ctx context.Context, event KeyCreatedEvent) error
}

type feishuCard struct {
	MsgType string `json:"msg_type"`
	Card    struct {
		Header struct {
			Title struct {
				Tag     string `json:"tag"`
				Content string `json:"content"`
			} `json:"title"`
			Template string `json:"template"`
		} `json:"header"`
		Elements []feishuCardElement `json:"elements"`
	} `json:"card"`
}

type feishuCardElement struct {
	Tag  string `json:"tag"`
	Text struct {
		Tag     string `json:"tag"`
		Content string `json:"content"`
	} `json:"text"`
}

type feishuResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// FeishuNotifier posts interactive cards to a Feishu group webhook.
type FeishuNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewFeishuNotifier(cfg config.FeishuConfig) *FeishuNotifier {
	return &FeishuNotifier{
		webhookURL: cfg.WebhookURL,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

func (n *FeishuNotifier) NotifyKeyCreated(ctx context.Context, event KeyCreatedEvent) error {
	webhookURL := n.webhookURL
	if event.WebhookOverride != "" {
		webhookURL = event.WebhookOverride
	}
	if webhookURL == "" {
		return ErrNoWebhookConfigured
	}

	payload, err := json.Marshal(buildKeyCreatedCard(event))
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feishu webhook returned status %d", resp.StatusCode)
	}

	var result feishuResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("feishu webhook response decode failed: %w", err)
	}
	if result.Code != 0 {
		return fmt.Errorf("feishu webhook rejected message: code=%d msg=%s", result.Code, result.Msg)
	}

	return nil
}

func buildKeyCreatedCard(event KeyCreatedEvent) feishuCard {
	var lines []string
	lines = append(lines, fmt.Sprintf("**Name:** %s", event.Name))
	if event.Description != "" {
		lines = append(lines, fmt.Sprintf("**Description:** %s", event.Description))
	}
	lines = append(lines, fmt.Sprintf("**Key:** %s", event.SecretValue))
	lines = append(lines, fmt.Sprintf("**Prefix:** %s", event.KeyPrefix))
	lines = append(lines, fmt.Sprintf("**Token limit:** %s", formatInt64Limit(event.TokenLimit)))
	lines = append(lines, fmt.Sprintf("**Daily cost limit:** %s", formatFloatLimit(event.DailyCostLimit)))
	lines = append(lines, fmt.Sprintf("**Monthly cost limit:** %s", formatFloatLimit(event.MonthlyCostLimit)))
	if event.ExpiresAt != nil {
		lines = append(lines, fmt.Sprintf("**Expires at:** %s", event.ExpiresAt.Format(time.RFC3339)))
	} else {
		lines = append(lines, "**Expires at:** never")
	}
	lines = append(lines, fmt.Sprintf("**Created at:** %s", event.CreatedAt.Format(time.RFC3339)))

	var card feishuCard
	card.MsgType = "interactive"
	card.Card.Header.Title.Tag = "plain_text"
	card.Card.Header.Title.Content = "API Key Created"
	card.Card.Header.Template = "green"

	var element feishuCardElement
	element.Tag = "div"
	element.Text.Tag = "lark_md"
	element.Text.Content = strings.Join(lines, "\n")
	card.Card.Elements = []feishuCardElement{element}

	return card
}

func formatInt64Limit(limit *int64) string {
	if limit == nil {
		return "unlimited"
	}
	return fmt.Sprintf("%d", *limit)
}

func formatFloatLimit(limit *float64) string {
	if limit == nil {
		return "unlimited"
	}
	return fmt.Sprintf("%.2f", *limit)
}
