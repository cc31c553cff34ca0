// Package gateway is the payment gateway boundary: outbound order creation
// and webhook signature verification. Amounts cross this boundary in
// integer minor units (paise).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrUnverifiedWebhook = errors.New("gateway webhook signature verification failed")

// Orders creates orders with the external gateway.
type Orders interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency string) (orderRef string, err error)
}

// Client talks to a Razorpay-style orders API over HTTP with basic auth.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

var _ Orders = (*Client)(nil)

func NewClient(baseURL, keyID, keySecret string) *Client {
	return &Client{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

type orderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	PaymentCapture int    `json:"payment_capture"`
}

type orderResponse struct {
	ID string `json:"id"`
}

func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency string) (string, error) {
	body, err := json.Marshal(orderRequest{
		Amount:         amountMinor,
		Currency:       currency,
		PaymentCapture: 1,
	})
	if err != nil {
		return "", fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gateway order create: status %d: %s", resp.StatusCode, snippet)
	}

	var out orderResponse
	err = json.NewDecoder(resp.Body).Decode(&out)
	if err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}

	if out.ID == "" {
		return "", fmt.Errorf("gateway returned empty order id")
	}

	return out.ID, nil
}
