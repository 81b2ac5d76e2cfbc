package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wavetrader/wave-backend/internal/ai"
	"github.com/wavetrader/wave-backend/internal/analyzer"
	"github.com/wavetrader/wave-backend/internal/config"
	"github.com/wavetrader/wave-backend/internal/market"
	"github.com/wavetrader/wave-backend/internal/models"
)

type stubAnalysis struct {
	resp *models.AnalyzeResponse
	err  error
}

func (s *stubAnalysis) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	return s.resp, s.err
}

func analyzeServer(a AnalysisService) *Server {
	return &Server{cfg: &config.Config{}, analysis: a}
}

func postAnalyze(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	rr := httptest.NewRecorder()
	s.handleAnalyze(rr, req)
	return rr
}

func decodeDetail(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	return body["detail"]
}

func TestHandleAnalyze_Success(t *testing.T) {
	s := analyzeServer(&stubAnalysis{resp: &models.AnalyzeResponse{Status: "success", Strategy: "buy<br>hold"}})

	rr := postAnalyze(t, s, `{"token_address": "tok1", "messages": []}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp models.AnalyzeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "success" || resp.Strategy != "buy<br>hold" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHandleAnalyze_MissingTokenAddress(t *testing.T) {
	s := analyzeServer(&stubAnalysis{})

	rr := postAnalyze(t, s, `{"messages": []}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHandleAnalyze_BadJSON(t *testing.T) {
	s := analyzeServer(&stubAnalysis{})

	rr := postAnalyze(t, s, `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHandleAnalyze_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"missing api key", analyzer.ErrAPIKeyNotConfigured, http.StatusInternalServerError, "API key not configured"},
		{"no pairs", fmt.Errorf("failed to fetch market data: %w", market.ErrNoPairs), http.StatusNotFound, "No trading pairs found"},
		{"upstream down", fmt.Errorf("failed to fetch market data: %w", market.ErrUpstream), http.StatusInternalServerError, ""},
		{"provider rejected", &ai.RejectedError{StatusCode: 401, Body: "bad key"}, http.StatusUnauthorized, "AI API error: bad key"},
		{"provider exhausted", fmt.Errorf("%w: last error", ai.ErrExhausted), http.StatusInternalServerError, ""},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "Error: boom"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := analyzeServer(&stubAnalysis{err: tc.err})
			rr := postAnalyze(t, s, `{"token_address": "tok1"}`)
			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			if tc.wantDetail != "" && decodeDetail(t, rr) != tc.wantDetail {
				t.Fatalf("expected detail %q, got %q", tc.wantDetail, decodeDetail(t, rr))
			}
		})
	}
}

type stubHistory struct {
	recs []models.AnalysisRecord
	err  error
}

func (s *stubHistory) Recent(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.recs) {
		return s.recs[:limit], nil
	}
	return s.recs, nil
}

func TestHandleAnalyses_NoDB(t *testing.T) {
	s := &Server{cfg: &config.Config{}}
	req := httptest.NewRequest(http.MethodGet, "/api/analyses", nil)
	rr := httptest.NewRecorder()
	s.handleAnalyses(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without history store, got %d", rr.Code)
	}
}

func TestHandleAnalyses_ReturnsRecords(t *testing.T) {
	s := &Server{cfg: &config.Config{}, history: &stubHistory{recs: []models.AnalysisRecord{
		{ID: 1, TokenSymbol: "WAVE"},
	}}}
	req := httptest.NewRequest(http.MethodGet, "/api/analyses", nil)
	rr := httptest.NewRecorder()
	s.handleAnalyses(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var recs []models.AnalysisRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 1 || recs[0].TokenSymbol != "WAVE" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestHandleConfig(t *testing.T) {
	s := &Server{cfg: &config.Config{AIModelID: "m1", AIAPIURL: "https://ai", AIAPIKey: "k1"}}
	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rr := httptest.NewRecorder()
	s.handleConfig(rr, req)

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["model"] != "m1" || body["api_url"] != "https://ai" || body["api_key"] != "k1" {
		t.Fatalf("unexpected config body: %v", body)
	}
}
