package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/wavetrader/wave-backend/internal/config"
	"github.com/wavetrader/wave-backend/internal/gmgn"
	"github.com/wavetrader/wave-backend/internal/models"
)

const maxQueryLimit = 1000

// AnalysisService is implemented by analyzer.Analyzer.
type AnalysisService interface {
	Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalyzeResponse, error)
}

// Router is implemented by gmgn.Client.
type Router interface {
	GetSwapRoute(ctx context.Context, p gmgn.RouteParams) (*gmgn.SwapRoute, error)
	GetTokenAccount(ctx context.Context, tokenAddress, walletAddress string) (*gmgn.TokenAccount, error)
	SubmitSignedTransaction(ctx context.Context, signedTx string) (string, error)
	GetTransactionStatus(ctx context.Context, hash string, lastValidHeight int64) (json.RawMessage, error)
}

// HistoryReader is implemented by repository.AnalysisRepo.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]models.AnalysisRecord, error)
}

type Notifier interface {
	Send(msg string)
	Enabled() bool
}

type Server struct {
	cfg        *config.Config
	analysis   AnalysisService
	router     Router
	history    HistoryReader // nil when no DB is configured
	notify     Notifier
	httpServer *http.Server
}

func NewServer(cfg *config.Config, analysis AnalysisService, router Router, history HistoryReader, notify Notifier) *Server {
	s := &Server{
		cfg:      cfg,
		analysis: analysis,
		router:   router,
		history:  history,
		notify:   notify,
	}

	mux := http.NewServeMux()

	// Analysis
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/analyses", s.handleAnalyses)
	mux.HandleFunc("GET /api/config", s.handleConfig)

	// Trading proxies
	mux.HandleFunc("POST /api/trade", s.handleTrade)
	mux.HandleFunc("POST /api/trade_with_token", s.handleTradeWithToken)
	mux.HandleFunc("POST /api/confirm_trade", s.handleConfirmTrade)
	mux.HandleFunc("GET /api/transaction_status", s.handleTransactionStatus)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Static front end
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /static/", http.StripPrefix("/static/",
		http.FileServer(http.Dir(cfg.StaticDir))))

	// CORS sits outermost so browser preflights never hit auth.
	handler := corsMiddleware(s.authMiddleware(mux), cfg.CORSAllowOrigin)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 11 * time.Minute, // analyze calls can sit behind slow completions
	}

	return s
}

func (s *Server) Start() error {
	fmt.Printf("[API] Server started on http://localhost%s\n", s.httpServer.Addr)
	if s.cfg.APIKey != "" {
		fmt.Println("[API] Authentication: enabled (Bearer token)")
	} else {
		fmt.Println("[API] Authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.cfg.StaticDir, "index.html"))
}

// --- middleware ---

// authMiddleware guards /api/ routes with an optional Bearer token.
// Static pages and /health stay open.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIKey == "" || !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.cfg.APIKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- validation helpers ---

func parseLimit(r *http.Request, defaultLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxQueryLimit {
		return maxQueryLimit
	}
	return n
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}
