package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wavetrader/wave-backend/internal/ai"
	"github.com/wavetrader/wave-backend/internal/analyzer"
	"github.com/wavetrader/wave-backend/internal/api"
	"github.com/wavetrader/wave-backend/internal/config"
	"github.com/wavetrader/wave-backend/internal/db"
	"github.com/wavetrader/wave-backend/internal/gmgn"
	"github.com/wavetrader/wave-backend/internal/market"
	"github.com/wavetrader/wave-backend/internal/notifications"
	"github.com/wavetrader/wave-backend/internal/repository"
)

const banner = `
╔══════════════════════════════════════╗
║        WaveTrader Backend v0.2       ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Optional analysis history
	var history *repository.AnalysisRepo
	if cfg.HistoryEnabled() {
		fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
		pool, err := db.Connect(cfg.DSN())
		if err != nil {
			fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			pool.Close()
			fmt.Println("[DB] Connection pool closed")
		}()

		if err := db.TestConnection(pool); err != nil {
			fmt.Fprintf(os.Stderr, "[DB] Test query failed: %v\n", err)
			os.Exit(1)
		}
		history = repository.NewAnalysisRepo(pool)
	} else {
		fmt.Println("[DB] Skipped - analysis history disabled")
	}

	// Clients
	marketClient := market.NewClient(cfg.DexScreenerAPIURL)
	aiClient := ai.NewClient(time.Duration(cfg.AITimeoutSeconds) * time.Second)
	router := gmgn.NewClient(cfg.GMGNAPIHost)
	notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName)

	// analyzer.HistoryStore is an interface; a typed nil pointer would
	// dodge the nil check inside Analyze.
	var store analyzer.HistoryStore
	if history != nil {
		store = history
	}

	analysis := analyzer.New(analyzer.Defaults{
		Model:  cfg.AIModelID,
		APIURL: cfg.AIAPIURL,
		APIKey: cfg.AIAPIKey,
	}, marketClient, aiClient, store)

	var reader api.HistoryReader
	if history != nil {
		reader = history
	}

	srv := api.NewServer(cfg, analysis, router, reader, notify)

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	fmt.Println("\nAll services started successfully")

	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
