package models

import "time"

type ChatMessage struct {
	Role    string `json:"role"` // "system", "user", "assistant" or "tool"
	Content string `json:"content"`
}

// AnalyzeRequest is the body of POST /api/analyze. Credential and model
// overrides are optional; unset generation knobs fall back to provider
// defaults and are never sent as null.
type AnalyzeRequest struct {
	TokenAddress string        `json:"token_address"`
	Messages     []ChatMessage `json:"messages"`

	Model  string `json:"model,omitempty"`
	APIURL string `json:"api_url,omitempty"`
	APIKey string `json:"api_key,omitempty"`

	Temperature      *float64         `json:"temperature,omitempty"`
	MaxTokens        *int             `json:"max_tokens,omitempty"`
	TopP             *float64         `json:"top_p,omitempty"`
	PresencePenalty  *float64         `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64         `json:"frequency_penalty,omitempty"`
	Stream           *bool            `json:"stream,omitempty"`
	Stop             []string         `json:"stop,omitempty"`
	N                *int             `json:"n,omitempty"`
	Tools            []map[string]any `json:"tools,omitempty"`
}

type AnalyzeResponse struct {
	Status   string `json:"status"`
	Strategy string `json:"strategy"`
}

// AnalysisRecord is one row of analysis history.
type AnalysisRecord struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	TokenAddress string    `json:"tokenAddress"`
	TokenSymbol  string    `json:"tokenSymbol"`
	Model        string    `json:"model"`
	Strategy     string    `json:"strategy"`
	DurationMs   int64     `json:"durationMs"`
	CreatedAt    time.Time `json:"createdAt"`
}
