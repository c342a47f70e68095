package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestIDGenerated(t *testing.T) {
	h := RequestID(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected a generated request id")
	}
}

func TestCORS(t *testing.T) {
	h := CORS(okHandler(), []string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("allowed origin not reflected, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected origin reflected: %q", got)
	}

	// Preflight short-circuits.
	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Headers"), "X-Api-Key") {
		t.Fatal("credential headers missing from preflight response")
	}
}

func TestCORSAnyOrigin(t *testing.T) {
	h := CORS(okHandler(), nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://anything.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://anything.example.com" {
		t.Fatalf("expected any-origin reflection, got %q", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing nosniff header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("missing frame options header")
	}
}

func TestMaxBodyBytes(t *testing.T) {
	read := MaxBodyBytes(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf [64]byte
		if _, err := r.Body.Read(buf[:]); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}), 8)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 32)))
	rec := httptest.NewRecorder()
	read.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected oversized body rejected, got %d", rec.Code)
	}
}

func TestIPThrottle(t *testing.T) {
	throttle := NewIPThrottle(1, 1)
	defer throttle.Close()
	h := throttle.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request within burst: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("burst exhausted: expected 429, got %d", rec.Code)
	}

	// Another address has its own bucket.
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("distinct address: expected 200, got %d", rec.Code)
	}

	// Close is idempotent.
	throttle.Close()
	throttle.Close()
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5544"
	if got := clientIP(req); got != "10.1.2.3" {
		t.Fatalf("expected remote addr host, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.7" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}
}

func TestIdentityKeyPrecedence(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5544"
	if got := identityKey(req); got != "10.1.2.3" {
		t.Fatalf("expected IP fallback, got %q", got)
	}

	req.Header.Set("Authorization", "Bearer tok")
	if got := identityKey(req); got != "Bearer tok" {
		t.Fatalf("expected bearer identity, got %q", got)
	}

	// API key outranks the bearer credential.
	req.Header.Set("X-Api-Key", "ek_123")
	if got := identityKey(req); got != "ek_123" {
		t.Fatalf("expected api key identity, got %q", got)
	}
}
