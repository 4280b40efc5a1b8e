package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"codeberg.org/promptfotos/server/internal/logger"
	"codeberg.org/promptfotos/server/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "google/gemini-2.5-flash-image-preview"

	maxTokens   = 1024
	temperature = 0.7
)

// image models are slow; generous timeout, shared connection pool
var gatewayHTTPClient = &http.Client{
	Timeout: 120 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Modalities  []string      `json:"modalities"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Images  []struct {
				Type     string   `json:"type"`
				ImageURL imageURL `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// OpenRouter calls the chat completions endpoint with image output enabled.
// Calls go through a circuit breaker so a failing gateway is not hammered while
// it recovers, and an outbound limiter paces traffic across all users.
type OpenRouter struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*Result]
}

func NewOpenRouter(config Config) *OpenRouter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}

	if config.Model == "" {
		config.Model = defaultModel
	}

	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 5
	}

	if config.Burst <= 0 {
		config.Burst = 10
	}

	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &OpenRouter{
		config:     config,
		httpClient: gatewayHTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		breaker: gobreaker.NewCircuitBreaker[*Result](gobreaker.Settings{
			Name:        "openrouter",
			MaxRequests: 2,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// bad input from our side says nothing about gateway health
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrInvalidRequest) || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					"breaker", name,
					"from", from.String(),
					"to", to.String(),
				)
			},
		}),
	}
}

// swaps the HTTP client
func (o *OpenRouter) WithHTTPClient(client *http.Client) *OpenRouter {
	o.httpClient = client
	return o
}

func (o *OpenRouter) Configured() bool {
	return o.config.APIKey != ""
}

// Generate expands the prompt template and returns the first generated image.
func (o *OpenRouter) Generate(ctx context.Context, req Request) (*Result, error) {
	if !o.Configured() {
		return nil, ErrNotConfigured
	}

	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("gateway rate limiter: %w", err)
	}

	start := time.Now()

	result, err := o.breaker.Execute(func() (*Result, error) {
		return o.generate(ctx, req)
	})

	metrics.RecordGeneration(req.Resolution, time.Since(start), err)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrGatewayBusy, err)
	}

	if err != nil {
		return nil, err
	}

	return result, nil
}

func (o *OpenRouter) generate(ctx context.Context, req Request) (*Result, error) {
	prompt := req.Prompt
	if req.Category != "" && req.Style != "" {
		prompt = BuildPrompt(req.Prompt, req.Category, req.Style)
	}

	content := []contentPart{{Type: "text", Text: prompt}}
	if req.ImageURL != "" {
		content = append(content, contentPart{Type: "image_url", ImageURL: &imageURL{URL: req.ImageURL}})
	}

	body, err := json.Marshal(chatRequest{
		Model:       o.config.Model,
		Messages:    []chatMessage{{Role: "user", Content: content}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Modalities:  []string{"image", "text"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	o.setHeaders(httpReq)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		err := fmt.Errorf("gateway request failed with status %d: %s", resp.StatusCode, string(errBody))
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}

		return nil, err
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no message in gateway response: %w", ErrNoImage)
	}

	images := chatResp.Choices[0].Message.Images
	if len(images) == 0 || images[0].ImageURL.URL == "" {
		return nil, ErrNoImage
	}

	return &Result{
		ImageURL: images[0].ImageURL.URL,
		Prompt:   prompt,
		Usage: Usage{
			Tokens: chatResp.Usage.TotalTokens,
			Cost:   CostFor(req.Resolution),
		},
	}, nil
}

// Ping lists models to check connectivity and credentials, used by readiness checks.
func (o *OpenRouter) Ping(ctx context.Context) error {
	if !o.Configured() {
		return ErrNotConfigured
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, o.config.BaseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	o.setHeaders(httpReq)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to reach gateway: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway models request failed with status %d", resp.StatusCode)
	}

	var models struct {
		Data []json.RawMessage `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return fmt.Errorf("failed to decode models: %w", err)
	}

	if len(models.Data) == 0 {
		return fmt.Errorf("gateway returned no models")
	}

	return nil
}

// current breaker state for health output
func (o *OpenRouter) State() string {
	return o.breaker.State().String()
}

func (o *OpenRouter) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.config.APIKey)

	if o.config.AppURL != "" {
		req.Header.Set("HTTP-Referer", o.config.AppURL)
	}

	if o.config.AppName != "" {
		req.Header.Set("X-Title", o.config.AppName)
	}
}

var _ Generator = (*OpenRouter)(nil)
