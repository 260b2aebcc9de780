package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gestaozabele/indicadores/internal/auth"
	"github.com/gestaozabele/indicadores/internal/service"
)

type contextKey string

const ContextKeyAtor contextKey = "ator"

// Auth valida JWT de acesso e injeta o ator no contexto.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Token ausente")
				return
			}
			ator, err := atorDoToken(jwtManager, token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Token inválido")
				return
			}
			next.ServeHTTP(w, r.WithContext(SetAtor(r.Context(), ator)))
		})
	}
}

// OptionalAuth injeta o ator quando há token; sem cabeçalho a requisição segue anônima.
// Token presente e inválido é recusado.
func OptionalAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ator, err := atorDoToken(jwtManager, token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Token inválido")
				return
			}
			next.ServeHTTP(w, r.WithContext(SetAtor(r.Context(), ator)))
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func atorDoToken(jwtManager *auth.JWTManager, token string) (service.Ator, error) {
	claims, err := jwtManager.ParseAndValidate(token)
	if err != nil {
		return service.Ator{}, err
	}
	return service.AtorDe(claims)
}

// SetAtor injeta o ator no contexto.
func SetAtor(ctx context.Context, ator service.Ator) context.Context {
	return context.WithValue(ctx, ContextKeyAtor, ator)
}

// GetAtor recupera o ator do contexto.
func GetAtor(ctx context.Context) (service.Ator, bool) {
	ator, ok := ctx.Value(ContextKeyAtor).(service.Ator)
	return ator, ok
}

// RequireNivel exige nível mínimo do ator autenticado.
func RequireNivel(minimo int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ator, ok := GetAtor(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Token ausente")
				return
			}
			if ator.Nivel < minimo {
				writeError(w, http.StatusForbidden, fmt.Sprintf("Permissão insuficiente (requer nível >= %d)", minimo))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":    false,
		"error": message,
	})
}
