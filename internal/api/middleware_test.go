package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wavetrader/wave-backend/internal/config"
)

func okHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_NoKeyConfigured(t *testing.T) {
	s := &Server{cfg: &config.Config{}}
	handler := s.authMiddleware(okHandler(t))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 when no API key configured, got %d", rr.Code)
	}
}

func TestAuthMiddleware_StaticBypass(t *testing.T) {
	s := &Server{cfg: &config.Config{APIKey: "secret123"}}
	handler := s.authMiddleware(okHandler(t))

	for _, path := range []string{"/", "/static/app.js", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected %s to bypass auth, got %d", path, rr.Code)
		}
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	s := &Server{cfg: &config.Config{APIKey: "secret123"}}
	handler := s.authMiddleware(okHandler(t))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_WrongKey(t *testing.T) {
	s := &Server{cfg: &config.Config{APIKey: "secret123"}}
	handler := s.authMiddleware(okHandler(t))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
	req.Header.Set("Authorization", "Bearer wrong_key")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_CorrectKey(t *testing.T) {
	s := &Server{cfg: &config.Config{APIKey: "secret123"}}
	handler := s.authMiddleware(okHandler(t))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestAuthMiddleware_MalformedBearer(t *testing.T) {
	s := &Server{cfg: &config.Config{APIKey: "secret123"}}
	handler := s.authMiddleware(okHandler(t))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
	req.Header.Set("Authorization", "Basic secret123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-Bearer auth, got %d", rr.Code)
	}
}

func TestCorsMiddleware_Headers(t *testing.T) {
	handler := corsMiddleware(okHandler(t), "https://myapp.example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if origin := rr.Header().Get("Access-Control-Allow-Origin"); origin != "https://myapp.example.com" {
		t.Fatalf("expected custom origin, got %q", origin)
	}
	if allow := rr.Header().Get("Access-Control-Allow-Headers"); allow == "" {
		t.Fatal("expected Allow-Headers to include Authorization")
	}
}

func TestCorsMiddleware_Preflight(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called for OPTIONS")
	})
	handler := corsMiddleware(inner, "*")

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", rr.Code)
	}
}

func TestCorsMiddleware_EmptyOriginDefaultsToWildcard(t *testing.T) {
	handler := corsMiddleware(okHandler(t), "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if origin := rr.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Fatalf("expected wildcard origin, got %q", origin)
	}
}

func TestParseLimit(t *testing.T) {
	cases := []struct {
		query    string
		deflt    int
		expected int
	}{
		{"", 50, 50},
		{"?limit=10", 50, 10},
		{"?limit=0", 50, 50},
		{"?limit=-5", 50, 50},
		{"?limit=abc", 50, 50},
		{"?limit=2000", 50, maxQueryLimit},
		{"?limit=1000", 50, 1000},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/test"+tc.query, nil)
		got := parseLimit(req, tc.deflt)
		if got != tc.expected {
			t.Fatalf("parseLimit(%q, %d) = %d, want %d", tc.query, tc.deflt, got, tc.expected)
		}
	}
}
