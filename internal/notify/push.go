package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Pusher delivers one pre-formatted summary per run to a Notify-style
// webhook: bearer token, form field "message". The text arrives already
// truncated; Pusher does no splitting and no retry.
type Pusher struct {
	client   *resty.Client
	endpoint string
	token    string
	log      *logrus.Entry
}

// NewPusher creates a Pusher. An empty endpoint disables delivery.
func NewPusher(endpoint, token string) *Pusher {
	client := resty.New()
	client.SetTimeout(30 * time.Second)

	return &Pusher{
		client:   client,
		endpoint: endpoint,
		token:    token,
		log:      logrus.WithField("component", "notify"),
	}
}

// Push sends text to the configured endpoint.
func (p *Pusher) Push(ctx context.Context, text string) error {
	if p.endpoint == "" {
		p.log.Info("notify endpoint not configured, skipping push")
		return nil
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+p.token).
		SetFormData(map[string]string{"message": text}).
		Post(p.endpoint)
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("notification error %d: %s", resp.StatusCode(), resp.String())
	}

	p.log.WithField("chars", len([]rune(text))).Info("notification delivered")
	return nil
}
