package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/wavetrader/wave-backend/internal/ai"
	"github.com/wavetrader/wave-backend/internal/analyzer"
	"github.com/wavetrader/wave-backend/internal/market"
	"github.com/wavetrader/wave-backend/internal/models"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(req.TokenAddress) == "" {
		writeError(w, http.StatusBadRequest, "token_address is required")
		return
	}

	resp, err := s.analysis.Analyze(r.Context(), &req)
	if err != nil {
		status, detail := analyzeErrorStatus(err)
		fmt.Printf("[ANALYZE] %s failed: %v\n", req.TokenAddress, err)
		writeError(w, status, detail)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// analyzeErrorStatus maps pipeline failures to HTTP statuses. Provider
// rejections pass the upstream status through; everything else is a 500
// except the missing-pair 404.
func analyzeErrorStatus(err error) (int, string) {
	var rej *ai.RejectedError
	switch {
	case errors.Is(err, analyzer.ErrAPIKeyNotConfigured):
		return http.StatusInternalServerError, analyzer.ErrAPIKeyNotConfigured.Error()
	case errors.Is(err, market.ErrNoPairs):
		return http.StatusNotFound, "No trading pairs found"
	case errors.Is(err, market.ErrUpstream):
		return http.StatusInternalServerError, err.Error()
	case errors.As(err, &rej):
		return rej.StatusCode, "AI API error: " + rej.Body
	case errors.Is(err, ai.ErrExhausted):
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusInternalServerError, "Error: " + err.Error()
	}
}

func (s *Server) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "analysis history not configured")
		return
	}

	limit := parseLimit(r, 50)
	records, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		fmt.Printf("[API] Error fetching analyses: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch analyses")
		return
	}
	if records == nil {
		records = []models.AnalysisRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"model":   s.cfg.AIModelID,
		"api_url": s.cfg.AIAPIURL,
		"api_key": s.cfg.AIAPIKey,
	})
}
