// Package gmgn wraps the GMGN Solana router: swap-route quoting, signed
// transaction submission and status polling. The handlers proxy these
// calls, so upstream failures keep their status codes.
package gmgn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wavetrader/wave-backend/internal/httputil"
)

// WrappedSOL is the mint address of wrapped SOL, the quote side of every
// routed swap.
const WrappedSOL = "So11111111111111111111111111111111111111112"

// LamportsPerSOL converts SOL amounts to the router's integer unit.
const LamportsPerSOL = 1e9

// APIError carries an upstream router failure for status passthrough.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GMGN API error %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	host       string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewClient(host string) *Client {
	return &Client{
		host:       host,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
		},
	}
}

type RouteParams struct {
	TokenIn     string
	TokenOut    string
	InAmount    string
	FromAddress string
	Slippage    string
}

type SwapRoute struct {
	SwapTransaction      string `json:"swapTransaction"`
	LastValidBlockHeight *int64 `json:"lastValidBlockHeight"`
}

type TokenAccount struct {
	Balance  json.Number `json:"balance"`
	Decimals *int        `json:"decimals"`
}

// DecimalsOrDefault returns the token's decimals, assuming the SPL
// default of 9 when the router omits the field.
func (a *TokenAccount) DecimalsOrDefault() int {
	if a.Decimals == nil {
		return 9
	}
	return *a.Decimals
}

// GetSwapRoute asks the router for an unsigned swap transaction.
func (c *Client) GetSwapRoute(ctx context.Context, p RouteParams) (*SwapRoute, error) {
	q := url.Values{}
	q.Set("token_in_address", p.TokenIn)
	q.Set("token_out_address", p.TokenOut)
	q.Set("in_amount", p.InAmount)
	q.Set("from_address", p.FromAddress)
	q.Set("slippage", p.Slippage)

	endpoint := c.host + "/defi/router/v1/sol/tx/get_swap_route?" + q.Encode()

	var data struct {
		Data struct {
			RawTx *SwapRoute `json:"raw_tx"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, endpoint, &data); err != nil {
		return nil, err
	}

	if data.Data.RawTx == nil || data.Data.RawTx.SwapTransaction == "" {
		return nil, fmt.Errorf("no swap transaction in router response")
	}
	return data.Data.RawTx, nil
}

// GetTokenAccount looks up a wallet's token account (balance, decimals).
func (c *Client) GetTokenAccount(ctx context.Context, tokenAddress, walletAddress string) (*TokenAccount, error) {
	endpoint := fmt.Sprintf("%s/defi/token/sol/%s/account/%s", c.host, tokenAddress, walletAddress)

	var data struct {
		Data *TokenAccount `json:"data"`
	}
	if err := c.getJSON(ctx, endpoint, &data); err != nil {
		return nil, err
	}

	if data.Data == nil || data.Data.Balance == "" {
		return nil, fmt.Errorf("token account not found or zero balance")
	}
	return data.Data, nil
}

// SubmitSignedTransaction posts a signed transaction and returns its hash.
// No retry: resubmitting a mutation after an ambiguous failure is the
// caller's call.
func (c *Client) SubmitSignedTransaction(ctx context.Context, signedTx string) (string, error) {
	body, err := json.Marshal(map[string]string{"signed_tx": signedTx})
	if err != nil {
		return "", err
	}

	endpoint := c.host + "/defi/router/v1/sol/tx/submit_signed_transaction"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit transaction: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var data struct {
		Data struct {
			Hash string `json:"hash"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if data.Data.Hash == "" {
		return "", fmt.Errorf("no transaction hash returned")
	}
	return data.Data.Hash, nil
}

// GetTransactionStatus returns the router's status payload unmodified.
func (c *Client) GetTransactionStatus(ctx context.Context, hash string, lastValidHeight int64) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("hash", hash)
	q.Set("last_valid_height", fmt.Sprintf("%d", lastValidHeight))

	endpoint := c.host + "/defi/router/v1/sol/tx/get_transaction_status?" + q.Encode()

	var raw json.RawMessage
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// getJSON fetches endpoint with transport-level retry. Non-200 responses
// abort immediately so the upstream status survives to the handler.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	return httputil.Do(ctx, c.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return httputil.Permanent(err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("router request: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read router response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return httputil.Permanent(&APIError{StatusCode: resp.StatusCode, Body: string(raw)})
		}

		if err := json.Unmarshal(raw, out); err != nil {
			return httputil.Permanent(fmt.Errorf("decode router response: %w", err))
		}
		return nil
	})
}
