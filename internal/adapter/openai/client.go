// Package openai implements the generative text service client: a chat
// completions call with a fixed system instruction demanding strict JSON,
// plus a serializing decorator that bounds the service to one in-flight
// request at a time.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/citybreath/mumbai-aqi-pipeline/internal/domain"
	"github.com/citybreath/mumbai-aqi-pipeline/internal/observability"
)

// placeholderKey is the unedited sample value operators sometimes leave in
// .env files; it is treated the same as a missing key.
const placeholderKey = "YOUR_OPENAI_API_KEY_HERE"

const systemInstruction = "You are a senior environmental consultant and air quality expert. " +
	"Always return STRICTLY valid JSON as requested by the user, with no extra text."

// Client implements domain.Generator against the chat completions API.
type Client struct {
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	baseURL     string
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewClient creates a generation client. The timeout should be generous
// (minutes, not seconds): a 7-10 entry response takes a while to produce.
func NewClient(apiKey, model string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		apiKey:      apiKey,
		model:       model,
		temperature: 0.7,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.openai.com/v1/chat/completions",
		logger:  logger,
		metrics: metrics,
	}
}

// Generate submits the prompt and returns the raw text payload. Every
// failure mode, including a missing credential and an empty payload, wraps
// domain.ErrServiceUnavailable; there is no retry at this layer.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" || c.apiKey == placeholderKey {
		return "", fmt.Errorf("api key not configured: %w", domain.ErrServiceUnavailable)
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GenerationRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("generation request: %v: %w", err, domain.ErrServiceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.metrics.GenerationRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("generation error: status %d: %s: %w", resp.StatusCode, apiErrorMessage(respBody), domain.ErrServiceUnavailable)
	}

	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.metrics.GenerationRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("decode response: %v: %w", err, domain.ErrServiceUnavailable)
	}

	if len(payload.Choices) == 0 || payload.Choices[0].Message.Content == "" {
		c.metrics.GenerationRequests.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("empty generation response: %w", domain.ErrServiceUnavailable)
	}

	c.metrics.GenerationRequests.WithLabelValues("success").Inc()
	return payload.Choices[0].Message.Content, nil
}

// apiErrorMessage extracts the service's error message from an error body,
// falling back to the raw bytes.
func apiErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return string(body)
}

// Chat completions wire types.

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []choice `json:"choices"`
}

type choice struct {
	Message chatMessage `json:"message"`
}
