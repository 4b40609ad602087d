// Package push delivers mobile push payloads to an HTTP push provider.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/danielBingham/communities-sub006/internal/pkg/circuitbreaker"
	"github.com/danielBingham/communities-sub006/internal/port"
)

// Client posts {deviceToken, title, body} payloads to the provider endpoint.
// A circuit breaker stops hammering the provider once it starts failing;
// while the breaker is open every Send fails fast and the dispatcher records
// the unit as failed without waiting on a timeout.
type Client struct {
	url     string
	http    *http.Client
	breaker *circuitbreaker.Breaker
}

func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:     url,
		http:    &http.Client{Timeout: timeout},
		breaker: circuitbreaker.New(5, 30*time.Second, 1),
	}
}

func (c *Client) Send(ctx context.Context, msg port.PushMessage) error {
	if c.url == "" {
		return fmt.Errorf("push provider url is not configured")
	}
	return c.breaker.Do(func() error {
		body, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("encode push payload: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build push request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("push request: %w", err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode >= 300 {
			return fmt.Errorf("push provider returned %s", resp.Status)
		}
		return nil
	})
}

var _ port.PushSender = (*Client)(nil)
