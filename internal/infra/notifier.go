package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notifier POSTs alert payloads to an external webhook (ops chat, monitoring
// bridge, etc.). A downed endpoint gets quarantined instead of hammered;
// alert delivery is best-effort by contract.
type Notifier struct {
	url     string
	client  *http.Client
	breaker *Breaker
}

func NewNotifier(url string) *Notifier {
	return &Notifier{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: NewBreaker(5, time.Minute),
	}
}

// Configured reports whether a webhook URL was provided.
func (n *Notifier) Configured() bool { return n.url != "" }

// EstadoBreaker exposes the quarantine state for the health endpoint.
func (n *Notifier) EstadoBreaker() BreakerState { return n.breaker.State() }

// Notify sends the payload as JSON. Non-2xx responses count as failures
// toward the quarantine.
func (n *Notifier) Notify(ctx context.Context, payload interface{}) error {
	if !n.Configured() {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return n.breaker.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("webhook respondió %d", resp.StatusCode)
		}
		return nil
	})
}
