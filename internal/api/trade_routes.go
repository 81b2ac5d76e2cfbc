package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/wavetrader/wave-backend/internal/gmgn"
	"github.com/wavetrader/wave-backend/internal/models"
)

// handleTrade quotes a swap. Sells check the wallet's token account
// first and scale the amount by the token's decimals; buys convert SOL
// to lamports.
func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var p models.TradeParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if p.WalletAddress == "" {
		writeError(w, http.StatusBadRequest, "Wallet address is required")
		return
	}

	ctx := r.Context()
	var amount int64

	if p.TradeMode == "sell" {
		acct, err := s.router.GetTokenAccount(ctx, p.TokenAddress, p.WalletAddress)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to get token account info: "+err.Error())
			return
		}

		decimals := acct.DecimalsOrDefault()
		amount = int64(p.Amount * math.Pow10(decimals))

		balance, err := acct.Balance.Int64()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid token balance: "+acct.Balance.String())
			return
		}
		if balance < amount {
			available := float64(balance) / math.Pow10(decimals)
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("Insufficient token balance. Available: %g", available))
			return
		}
	} else {
		amount = int64(p.Amount * gmgn.LamportsPerSOL)
	}

	s.quoteSwap(w, r, p, amount)
}

// handleTradeWithToken quotes a swap with the amount always taken in
// base units scaled by 1e9, skipping the balance check.
func (s *Server) handleTradeWithToken(w http.ResponseWriter, r *http.Request) {
	var p models.TradeParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if p.WalletAddress == "" {
		writeError(w, http.StatusBadRequest, "Wallet address is required")
		return
	}

	s.quoteSwap(w, r, p, int64(p.Amount*gmgn.LamportsPerSOL))
}

func (s *Server) quoteSwap(w http.ResponseWriter, r *http.Request, p models.TradeParams, amount int64) {
	tokenIn, tokenOut := gmgn.WrappedSOL, p.TokenAddress
	if p.TradeMode == "sell" {
		tokenIn, tokenOut = p.TokenAddress, gmgn.WrappedSOL
	}

	route, err := s.router.GetSwapRoute(r.Context(), gmgn.RouteParams{
		TokenIn:     tokenIn,
		TokenOut:    tokenOut,
		InAmount:    strconv.FormatInt(amount, 10),
		FromAddress: p.WalletAddress,
		Slippage:    strconv.FormatFloat(p.Slippage, 'f', -1, 64),
	})
	if err != nil {
		var apiErr *gmgn.APIError
		if errors.As(err, &apiErr) {
			writeError(w, apiErr.StatusCode, "Failed to get trade quote: "+apiErr.Body)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.TradeResponse{
		Status:               "success",
		Transaction:          route.SwapTransaction,
		LastValidBlockHeight: route.LastValidBlockHeight,
	})
}

func (s *Server) handleConfirmTrade(w http.ResponseWriter, r *http.Request) {
	var signed models.SignedTransaction
	if err := json.NewDecoder(r.Body).Decode(&signed); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if signed.SignedTransaction == "" {
		writeError(w, http.StatusBadRequest, "signed_transaction is required")
		return
	}

	hash, err := s.router.SubmitSignedTransaction(r.Context(), signed.SignedTransaction)
	if err != nil {
		var apiErr *gmgn.APIError
		if errors.As(err, &apiErr) {
			writeError(w, apiErr.StatusCode, "Failed to submit transaction")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.notify != nil && s.notify.Enabled() {
		s.notify.Send("Trade submitted: " + hash)
	}

	writeJSON(w, http.StatusOK, models.ConfirmResponse{Status: "success", TxHash: hash})
}

func (s *Server) handleTransactionStatus(w http.ResponseWriter, r *http.Request) {
	hash := r.URL.Query().Get("hash")
	if hash == "" {
		writeError(w, http.StatusBadRequest, "hash is required")
		return
	}
	height, err := strconv.ParseInt(r.URL.Query().Get("last_valid_height"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "last_valid_height must be an integer")
		return
	}

	raw, err := s.router.GetTransactionStatus(r.Context(), hash, height)
	if err != nil {
		var apiErr *gmgn.APIError
		if errors.As(err, &apiErr) {
			writeError(w, apiErr.StatusCode, "Failed to get transaction status")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}
