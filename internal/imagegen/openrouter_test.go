package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *OpenRouter {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOpenRouter(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test/model",
		AppURL:  "https://example.test",
		AppName: "Prompt Fotos",
	}).WithHTTPClient(server.Client())
}

func TestGenerate_Success(t *testing.T) {
	var got chatRequest

	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "https://example.test", r.Header.Get("HTTP-Referer"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"content": "here you go", "images": [
				{"type": "image_url", "image_url": {"url": "data:image/png;base64,iVBORw0KGgo="}}
			]}}],
			"usage": {"total_tokens": 1290}
		}`))
	})

	result, err := gateway.Generate(context.Background(), Request{
		Prompt:     "a woman in a red coat",
		ImageURL:   "https://cdn.example.test/me.jpg",
		Category:   CategoryPortrait,
		Style:      StyleDramatic,
		Resolution: "1024x1024",
	})
	require.NoError(t, err)

	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", result.ImageURL)
	assert.Equal(t, 1290, result.Usage.Tokens)
	assert.InDelta(t, CostHighRes, result.Usage.Cost, 0.0001)
	assert.True(t, strings.HasPrefix(result.Prompt, "Create a professional dramatic portrait photograph: a woman in a red coat."))

	assert.Equal(t, "test/model", got.Model)
	assert.Equal(t, []string{"image", "text"}, got.Modalities)
	assert.Equal(t, maxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	require.Len(t, got.Messages[0].Content, 2)
	assert.Equal(t, "image_url", got.Messages[0].Content[1].Type)
	assert.Equal(t, "https://cdn.example.test/me.jpg", got.Messages[0].Content[1].ImageURL.URL)
}

func TestGenerate_NoImage(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "I cannot do that"}}]}`))
	})

	_, err := gateway.Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestGenerate_UpstreamError(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := gateway.Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestGenerate_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32

	gateway := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	for range 5 {
		_, err := gateway.Generate(context.Background(), Request{Prompt: "x"})
		require.Error(t, err)
	}

	_, err := gateway.Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrGatewayBusy)
	assert.Equal(t, int32(5), calls.Load())
	assert.Equal(t, "open", gateway.State())
}

func TestGenerate_BadRequestDoesNotTripBreaker(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad image", http.StatusBadRequest)
	})

	for range 8 {
		_, err := gateway.Generate(context.Background(), Request{Prompt: "x"})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}

	assert.Equal(t, "closed", gateway.State())
}

func TestGenerate_Validation(t *testing.T) {
	_, err := NewOpenRouter(Config{}).Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewOpenRouter(Config{APIKey: "k"}).Generate(context.Background(), Request{Prompt: "  "})
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestPing(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": [{"id": "google/gemini-2.5-flash-image-preview"}]}`))
	})

	assert.NoError(t, gateway.Ping(context.Background()))
}

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t, "just me", BuildPrompt("just me", "landscape", StyleNatural))
	assert.Equal(t, "just me", BuildPrompt("just me", CategoryCouple, StyleCinematic))
	assert.Contains(t, BuildPrompt("CEO", CategoryProfessional, StyleExecutive), "Premium executive corporate photography: CEO.")
	assert.Contains(t, BuildPrompt("us", CategoryCouple, StyleNatural), "golden hour: us.")

	assert.InDelta(t, CostStandard, CostFor("512x512"), 0.0001)
	assert.InDelta(t, CostStandard, CostFor(""), 0.0001)
}
