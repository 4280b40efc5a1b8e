package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.creem.io/v1"

var creemHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// Creem is a thin client for the Creem REST API.
type Creem struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewCreem(apiKey, baseURL string) *Creem {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Creem{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: creemHTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
	}
}

func (c *Creem) WithHTTPClient(client *http.Client) *Creem {
	c.httpClient = client
	return c
}

func (c *Creem) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	var session CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/checkout/sessions", req, &session); err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	if session.CheckoutURL == "" {
		return nil, fmt.Errorf("create checkout session: provider returned no checkout url")
	}

	return &session, nil
}

func (c *Creem) GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error) {
	var sub ProviderSubscription
	if err := c.do(ctx, http.MethodGet, "/subscriptions/"+url.PathEscape(subscriptionID), nil, &sub); err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	return &sub, nil
}

func (c *Creem) CancelSubscription(ctx context.Context, subscriptionID string, atPeriodEnd bool) (*ProviderSubscription, error) {
	body := map[string]bool{"cancelAtPeriodEnd": atPeriodEnd}

	var sub ProviderSubscription
	if err := c.do(ctx, http.MethodPost, "/subscriptions/"+url.PathEscape(subscriptionID)+"/cancel", body, &sub); err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}

	return &sub, nil
}

func (c *Creem) do(ctx context.Context, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}

		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("creem api error: %d - %s", resp.StatusCode, string(errBody))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

var _ Provider = (*Creem)(nil)
