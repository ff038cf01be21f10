package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	userAgent      = "Podscribe-Go/0.1.0"
	publishTimeout = 10 * time.Second
)

// Publisher pushes events to a remote podscribe instance over HTTP. Delivery
// problems are reported so callers can log them, but a lost progress event
// never fails the job that produced it.
type Publisher struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewPublisher builds a publisher for the given server base URL, for example
// "http://127.0.0.1:8642".
func NewPublisher(baseURL string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: publishTimeout},
		logger:  logger.With("component", "notify"),
	}
}

// Publish POSTs one event to the per-episode endpoint. Delivery runs on its
// own deadline so a slow endpoint cannot stall the job that produced the
// event; a failed delivery is logged and swallowed.
func (p *Publisher) Publish(episodeID string, event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.send(ctx, episodeID, event); err != nil {
		p.logger.Warn("event delivery failed",
			"episode_id", episodeID, "event_type", event.Type, "error", err)
	}
}

func (p *Publisher) send(ctx context.Context, episodeID string, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	endpoint := p.baseURL + "/events/" + episodeID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build event request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("event endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
