package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func responderOK(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestLimitadorPorIP(t *testing.T) {
	l := NewLimitador(1, 2)
	agora := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	l.agora = func() time.Time { return agora }
	h := PorIP(l)(http.HandlerFunc(responderOK))

	chamar := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := chamar("10.0.0.1:5000"); rec.Code != http.StatusOK {
			t.Fatalf("call %d: expected 200, got %d", i, rec.Code)
		}
	}
	rec := chamar("10.0.0.1:5001")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After 1, got %q", rec.Header().Get("Retry-After"))
	}
	if !strings.Contains(rec.Body.String(), `"ok":false`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	if rec := chamar("10.0.0.2:5000"); rec.Code != http.StatusOK {
		t.Fatalf("other ip should not be limited, got %d", rec.Code)
	}

	agora = agora.Add(time.Second)
	if rec := chamar("10.0.0.1:5000"); rec.Code != http.StatusOK {
		t.Fatalf("expected refill after 1s, got %d", rec.Code)
	}
}

func TestLimitadorDescartaChavesInativas(t *testing.T) {
	l := NewLimitador(10, 10)
	agora := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	l.agora = func() time.Time { return agora }

	l.Permite("a")
	agora = agora.Add(inatividadeLimitador + intervaloLimpeza)
	l.Permite("b")

	if _, ok := l.buckets["a"]; ok {
		t.Fatalf("expected stale key to be removed")
	}
	if len(l.buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(l.buckets))
	}
}

func TestCORS(t *testing.T) {
	t.Run("lista vazia aceita qualquer origem", func(t *testing.T) {
		h := CORS(nil)(http.HandlerFunc(responderOK))
		req := httptest.NewRequest(http.MethodGet, "/api/setores", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Fatalf("expected *, got %q", got)
		}
		if rec.Header().Get("Access-Control-Allow-Credentials") != "" {
			t.Fatalf("wildcard must not allow credentials")
		}
	})

	t.Run("origem fora da lista", func(t *testing.T) {
		h := CORS([]string{"https://painel.empresa.com.br/"})(http.HandlerFunc(responderOK))
		req := httptest.NewRequest(http.MethodGet, "/api/setores", nil)
		req.Header.Set("Origin", "https://outro.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Fatalf("unexpected allow origin")
		}
	})

	t.Run("preflight permitido", func(t *testing.T) {
		h := CORS([]string{"https://painel.empresa.com.br"})(http.HandlerFunc(responderOK))
		req := httptest.NewRequest(http.MethodOptions, "/api/drafts", nil)
		req.Header.Set("Origin", "https://painel.empresa.com.br")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "https://painel.empresa.com.br" {
			t.Fatalf("unexpected allow origin %q", rec.Header().Get("Access-Control-Allow-Origin"))
		}
	})
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "erro interno") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
