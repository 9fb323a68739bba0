package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
)

// WebhookNotifier posts a JSON summary of every dead letter to a callback
// URL. The task payload itself is not forwarded.
type WebhookNotifier struct {
	url    string
	client *http.Client
	log    *slog.Logger
}

func NewWebhookNotifier(url string, log *slog.Logger) *WebhookNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

func (n *WebhookNotifier) Send(ctx context.Context, letter domain.DeadLetter) error {
	body, err := json.Marshal(DeadLetterPayload{
		Stage:    letter.Stage,
		Pair:     letter.Key,
		Attempts: letter.Attempts,
		Error:    letter.Error,
		FailedAt: letter.FailedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal callback: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("callback to %s failed: %w", n.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback to %s returned status %d", n.url, resp.StatusCode)
	}
	n.log.Debug("dead letter callback sent", "url", n.url, "pair", letter.Key)
	return nil
}
