package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// Client delivers one-time codes through the mail gateway. SendOTP returns
// the gateway's delivery id.
type Client interface {
	SendOTP(ctx context.Context, email, code string) (string, error)
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) Client {
	return &httpClient{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

func (c *httpClient) SendOTP(ctx context.Context, email, code string) (string, error) {
	payload := map[string]interface{}{
		"message_id": uuid.NewString(),
		"to":         email,
		"template":   "otp-code",
		"variables":  map[string]string{"code": code},
	}
	var resp struct {
		DeliveryID string `json:"delivery_id"`
	}
	if err := c.post(ctx, "/api/v1/messages", payload, &resp); err != nil {
		return "", err
	}
	return resp.DeliveryID, nil
}

func (c *httpClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	op := func() error {
		body, err := json.Marshal(payload)
		if err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s%s", c.baseURL, path), bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		res, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.StatusCode >= 500 {
			return fmt.Errorf("mail gateway error: %d", res.StatusCode)
		}
		if res.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("mail gateway rejected message: %d", res.StatusCode))
		}
		if out != nil {
			if err := json.NewDecoder(res.Body).Decode(out); err != nil {
				return backoff.Permanent(err)
			}
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 3 * time.Second
	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}
