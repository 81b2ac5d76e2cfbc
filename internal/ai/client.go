// Package ai implements the chat-completion client. Calls are retried
// with exponential backoff; definitive provider rejections (4xx) abort
// immediately and carry the upstream status and body.
package ai

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

	"github.com/wavetrader/wave-backend/internal/httputil"
	"github.com/wavetrader/wave-backend/internal/models"
)

// ErrExhausted is returned when every attempt failed without a
// definitive rejection.
var ErrExhausted = errors.New("AI provider retries exhausted")

// RejectedError is a definitive client-error response from the provider.
// Status and body are propagated to the caller verbatim.
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("AI API error %d: %s", e.StatusCode, e.Body)
}

// Credentials is the resolved provider configuration for one request.
type Credentials struct {
	Model  string
	APIURL string
	APIKey string
}

// Params are the generation knobs. Nil pointers fall back to the
// defaults below; the provider never sees a null field.
type Params struct {
	Temperature      *float64
	MaxTokens        *int
	TopP             *float64
	PresencePenalty  *float64
	FrequencyPenalty *float64
	Stream           *bool
	Stop             []string
	N                *int
	Tools            []map[string]any
}

type Client struct {
	httpClient *http.Client
	retry      httputil.RetryConfig
	timeout    time.Duration
}

// NewClient builds a completion client. timeout bounds each attempt;
// large-model completions are slow, so the default is generous.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 600 * time.Second
	}
	return &Client{
		httpClient: &http.Client{},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
		},
		timeout: timeout,
	}
}

// Complete sends the conversation and returns the strategy text with
// newlines rewritten to <br> for the front end.
func (c *Client) Complete(ctx context.Context, creds Credentials, msgs []models.ChatMessage, p Params) (string, error) {
	url := endpointURL(creds.APIURL)
	body, err := json.Marshal(buildPayload(creds.Model, msgs, p))
	if err != nil {
		return "", fmt.Errorf("marshal AI request: %w", err)
	}

	var content string
	err = httputil.Do(ctx, c.retry, func(ctx context.Context) error {
		text, err := c.attempt(ctx, url, creds.APIKey, body)
		if err != nil {
			return err
		}
		content = text
		return nil
	})
	if err != nil {
		var rej *RejectedError
		if errors.As(err, &rej) {
			return "", rej
		}
		if ctx.Err() != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrExhausted, err)
	}

	return strings.ReplaceAll(content, "\n", "<br>"), nil
}

func (c *Client) attempt(ctx context.Context, url, apiKey string, body []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", httputil.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures, timeouts included, are retriable.
		return "", fmt.Errorf("AI API request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read AI response: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("AI API returned status %d: %s", resp.StatusCode, truncate(raw))
	case resp.StatusCode != http.StatusOK:
		return "", httputil.Permanent(&RejectedError{StatusCode: resp.StatusCode, Body: string(raw)})
	}

	// A 200 without usable content is treated like a server failure.
	return extractContent(raw)
}

// buildPayload maps set fields only; unset optional knobs take the
// provider defaults and stop/tools are omitted entirely when empty.
func buildPayload(model string, msgs []models.ChatMessage, p Params) map[string]any {
	payload := map[string]any{
		"model":             model,
		"messages":          msgs,
		"temperature":       orFloat(p.Temperature, 0.7),
		"max_tokens":        orInt(p.MaxTokens, 4096),
		"top_p":             orFloat(p.TopP, 0.7),
		"presence_penalty":  orFloat(p.PresencePenalty, 0),
		"frequency_penalty": orFloat(p.FrequencyPenalty, 0),
		"stream":            orBool(p.Stream, false),
		"n":                 orInt(p.N, 1),
	}
	if len(p.Stop) > 0 {
		payload["stop"] = p.Stop
	}
	if len(p.Tools) > 0 {
		payload["tools"] = p.Tools
	}
	return payload
}

// endpointURL normalizes the base URL: a missing /v1 segment is appended
// before the /chat/completions suffix.
func endpointURL(base string) string {
	base = strings.TrimRight(base, "/")
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	return base + "/chat/completions"
}

var errNoContent = errors.New("no usable content in AI response")

// extractContent accepts both response shapes seen in the wild:
// choices[0].message.content and choices[0].content.
func extractContent(raw []byte) (string, error) {
	var parsed struct {
		Choices []struct {
			Content string `json:"content"`
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("unexpected AI response format: %v", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errNoContent
	}
	if c := parsed.Choices[0].Message.Content; c != "" {
		return c, nil
	}
	if c := parsed.Choices[0].Content; c != "" {
		return c, nil
	}
	return "", errNoContent
}

func truncate(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

func orFloat(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}

func orInt(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}

func orBool(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}
