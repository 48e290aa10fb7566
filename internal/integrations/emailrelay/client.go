// Package emailrelay отправляет заявки с формы обратной связи во внешний email-relay.
package emailrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/pkg/errors"
)

type Client struct {
	url    string
	apiKey string
	httpc  *http.Client
}

func New(url, apiKey string) *Client {
	return &Client{
		url:    url,
		apiKey: apiKey,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send отправляет {to, name, email, subject, message}. to пуст для заявок с сайта,
// email адрес отправителя.
func (c *Client) Send(ctx context.Context, m models.ContactMessage) error {
	if c.url == "" {
		return errors.New("email relay url is not configured")
	}
	body, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "marshal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests {
		return errors.New("email relay rate limit (429)")
	}
	if resp.StatusCode/100 != 2 {
		return errors.Errorf("email relay http %d", resp.StatusCode)
	}
	return nil
}
