package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ChaveToken é a chave sob a qual o token da sessão é persistido.
const ChaveToken = "authToken"

// NormalizeToken devolve o token aparado quando ele tem formato de JWT
// (três segmentos separados por ponto). Não verifica assinatura nem claims.
func NormalizeToken(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	lower := strings.ToLower(trimmed)
	if lower == "null" || lower == "undefined" {
		return "", false
	}

	if len(strings.Split(trimmed, ".")) != 3 {
		return "", false
	}
	return trimmed, true
}

// TokenInfo resume claims lidas sem verificação de assinatura.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// InspectToken lê claims do token sem validar assinatura; útil apenas para TTL local.
func InspectToken(token string) (TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, err
	}

	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}
