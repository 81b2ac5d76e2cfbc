package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// AI completion provider
	AIModelID        string
	AIAPIURL         string
	AIAPIKey         string
	AITimeoutSeconds int

	// External services
	GMGNAPIHost       string
	DexScreenerAPIURL string

	// Server
	ServerPort      int
	CORSAllowOrigin string
	StaticDir       string
	APIKey          string

	// Notifications
	WebhookURL string
	BotName    string

	// Database (optional; analysis history is skipped when unset)
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AIModelID:        envStr("AI_MODEL_ID", ""),
		AIAPIURL:         envStr("AI_API_URL", ""),
		AIAPIKey:         envStr("AI_API_KEY", ""),
		AITimeoutSeconds: envInt("AI_TIMEOUT_SECONDS", 600),

		GMGNAPIHost:       envStr("GMGN_API_HOST", ""),
		DexScreenerAPIURL: envStr("DEXSCREENER_API_URL", "https://api.dexscreener.com/latest/dex"),

		ServerPort:      envInt("SERVER_PORT", 8000),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),
		StaticDir:       envStr("STATIC_DIR", "static"),
		APIKey:          envStr("API_KEY", ""),

		WebhookURL: envStr("WEBHOOK_URL", ""),
		BotName:    envStr("BOT_NAME", "WaveTrader"),

		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "wavetrader"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT %d is out of range", c.ServerPort))
	}
	if c.AIAPIKey == "" {
		fmt.Println("[WARN] AI_API_KEY not set — analyze requests must supply api_key themselves")
	}
	if c.AIAPIURL == "" {
		fmt.Println("[WARN] AI_API_URL not set — analyze requests must supply api_url themselves")
	}
	if c.GMGNAPIHost == "" {
		fmt.Println("[WARN] GMGN_API_HOST not set — trade endpoints will fail")
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set — REST API has no authentication")
	}
	if c.DBUser == "" {
		fmt.Println("[WARN] DB_USER not set — analysis history disabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== WaveTrader Backend Configuration ===")
	fmt.Printf("Server: :%d (CORS origin %s)\n", c.ServerPort, c.CORSAllowOrigin)
	fmt.Printf("Static dir: %s\n", c.StaticDir)
	fmt.Println("--------------------------------------")
	fmt.Printf("AI model: %s\n", orLabel(c.AIModelID, "(per-request)"))
	fmt.Printf("AI endpoint: %s\n", orLabel(c.AIAPIURL, "(per-request)"))
	fmt.Printf("AI key: %s\n", boolLabel(c.AIAPIKey != "", "configured", "not set"))
	fmt.Printf("AI timeout: %ds per attempt\n", c.AITimeoutSeconds)
	fmt.Println("--------------------------------------")
	fmt.Printf("DexScreener: %s\n", c.DexScreenerAPIURL)
	fmt.Printf("GMGN router: %s\n", orLabel(c.GMGNAPIHost, "not set"))
	fmt.Printf("Webhook: %s\n", boolLabel(c.WebhookURL != "", "configured", "disabled"))
	fmt.Printf("History DB: %s\n", boolLabel(c.DBUser != "", c.DBHost+"/"+c.DBName, "disabled"))
	fmt.Println("======================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// HistoryEnabled reports whether the optional Postgres store is configured.
func (c *Config) HistoryEnabled() bool {
	return c.DBUser != ""
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func orLabel(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
