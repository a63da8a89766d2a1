package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openwatch/beacon/internal/domain"
)

// Slack posts down-alerts to a webhook. It is an optional secondary channel;
// the recipient address is ignored because the webhook has a fixed audience.
type Slack struct {
	Webhook string
	Client  *http.Client
}

func NewSlack(webhook string) *Slack {
	if webhook == "" {
		return nil
	}
	return &Slack{
		Webhook: webhook,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type slackPayload struct {
	Text string `json:"text"`
}

func (s *Slack) Send(ctx context.Context, _ string, ep domain.Endpoint) error {
	if s == nil || s.Webhook == "" {
		return errors.New("slack disabled")
	}
	text := fmt.Sprintf("*%s is unavailable!*\nEndpoint %s is %s.", ep.URL, ep.ID, ep.Status)
	body, _ := json.Marshal(slackPayload{Text: text})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, s.Webhook, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return errors.New("slack non-2xx")
	}
	return nil
}
