package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims representa o JWT emitido pelo backend de desenvolvimento.
type Claims struct {
	Email   string `json:"email"`
	Nome    string `json:"nome"`
	SetorID *int64 `json:"setor_id"`
	Nivel   int    `json:"nivel"`
	jwt.RegisteredClaims
}

// UserID converte o subject de volta para o id numérico do funcionário.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// JWTManager encapsula geração e validação de tokens.
type JWTManager struct {
	secret    []byte
	accessTTL time.Duration
}

// NewJWTManager cria o gerenciador com segredo e TTL configurados.
func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), accessTTL: accessTTL}
}

// TokenSubject reúne os dados do funcionário gravados no token.
type TokenSubject struct {
	ID      int64
	Email   string
	Nome    string
	SetorID *int64
	Nivel   int
}

// GenerateAccessToken cria um JWT HS256 para o funcionário.
func (m *JWTManager) GenerateAccessToken(sub TokenSubject) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		Email:   sub.Email,
		Nome:    sub.Nome,
		SetorID: sub.SetorID,
		Nivel:   sub.Nivel,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(sub.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseAndValidate verifica assinatura e expiração.
func (m *JWTManager) ParseAndValidate(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("token inválido")
	}

	return claims, nil
}
