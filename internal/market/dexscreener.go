// Package market implements the DexScreener client used to enrich
// analysis prompts with live trading-pair data.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/wavetrader/wave-backend/internal/models"
)

var (
	ErrUpstream = errors.New("failed to fetch DexScreener data")
	ErrNoPairs  = errors.New("no trading pairs found")
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type tokenResponse struct {
	Pairs []models.Pair `json:"pairs"`
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// TopPair returns the most active pair for a token: the one with the
// highest 24h volume, first-listed winning ties. No retry here, the
// lookup is a single cheap GET.
func (c *Client) TopPair(ctx context.Context, tokenAddress string) (*models.Pair, error) {
	url := fmt.Sprintf("%s/tokens/%s", c.baseURL, tokenAddress)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var data tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}

	if len(data.Pairs) == 0 {
		return nil, ErrNoPairs
	}

	pairs := data.Pairs
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Volume24h() > pairs[j].Volume24h()
	})
	return &pairs[0], nil
}
