// Package analyzer wires the analysis pipeline: resolve credentials,
// fetch market data, build the prompt, call the completion provider.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wavetrader/wave-backend/internal/ai"
	"github.com/wavetrader/wave-backend/internal/models"
	"github.com/wavetrader/wave-backend/internal/prompt"
)

var ErrAPIKeyNotConfigured = errors.New("API key not configured")

type MarketData interface {
	TopPair(ctx context.Context, tokenAddress string) (*models.Pair, error)
}

type Completer interface {
	Complete(ctx context.Context, creds ai.Credentials, msgs []models.ChatMessage, p ai.Params) (string, error)
}

type HistoryStore interface {
	Record(ctx context.Context, rec *models.AnalysisRecord) (*models.AnalysisRecord, error)
}

// Defaults are the process-wide credentials used when the request
// supplies none.
type Defaults struct {
	Model  string
	APIURL string
	APIKey string
}

type Analyzer struct {
	defaults Defaults
	market   MarketData
	ai       Completer
	history  HistoryStore // nil when no DB is configured
}

func New(defaults Defaults, market MarketData, completer Completer, history HistoryStore) *Analyzer {
	return &Analyzer{
		defaults: defaults,
		market:   market,
		ai:       completer,
		history:  history,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	creds := ai.Credentials{
		Model:  resolve(req.Model, a.defaults.Model),
		APIURL: resolve(req.APIURL, a.defaults.APIURL),
		APIKey: resolve(req.APIKey, a.defaults.APIKey),
	}
	if creds.APIKey == "" {
		return nil, ErrAPIKeyNotConfigured
	}

	start := time.Now()

	pair, err := a.market.TopPair(ctx, req.TokenAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market data: %w", err)
	}

	msgs := prompt.Build(pair, req.TokenAddress, req.Messages)

	strategy, err := a.ai.Complete(ctx, creds, msgs, paramsFrom(req))
	if err != nil {
		return nil, err
	}

	if a.history != nil {
		rec := &models.AnalysisRecord{
			Timestamp:    start,
			TokenAddress: req.TokenAddress,
			TokenSymbol:  pair.BaseToken.Symbol,
			Model:        creds.Model,
			Strategy:     strategy,
			DurationMs:   time.Since(start).Milliseconds(),
		}
		// Best effort: a storage failure never fails the analysis.
		if _, err := a.history.Record(ctx, rec); err != nil {
			fmt.Printf("[ANALYZE] Failed to record history: %v\n", err)
		}
	}

	return &models.AnalyzeResponse{Status: "success", Strategy: strategy}, nil
}

// resolve picks the request-supplied value over the process default.
func resolve(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func paramsFrom(req *models.AnalyzeRequest) ai.Params {
	return ai.Params{
		Temperature:      req.Temperature,
		MaxTokens:        req.MaxTokens,
		TopP:             req.TopP,
		PresencePenalty:  req.PresencePenalty,
		FrequencyPenalty: req.FrequencyPenalty,
		Stream:           req.Stream,
		Stop:             req.Stop,
		N:                req.N,
		Tools:            req.Tools,
	}
}
