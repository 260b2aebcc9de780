package util

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
)

var (
	// ErrEmailObrigatorio indica email ausente.
	ErrEmailObrigatorio = errors.New("email obrigatório")
	// ErrEmailInvalido indica email mal formado.
	ErrEmailInvalido = errors.New("email inválido")
	// ErrSenhaFraca indica senha fora da política mínima.
	ErrSenhaFraca = errors.New("senha fraca (min 8 caracteres, letras e numeros)")
	// ErrCampoObrigatorio indica campo obrigatório vazio.
	ErrCampoObrigatorio = errors.New("campo obrigatório")
)

// ValidateEmail retorna erro para e-mails inválidos.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailObrigatorio
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrEmailInvalido
	}
	return nil
}

// ValidatePassword exige pelo menos 8 caracteres com letras e números.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrSenhaFraca
	}
	var letra, numero bool
	for _, r := range password {
		switch {
		case r <= unicode.MaxASCII && unicode.IsLetter(r):
			letra = true
		case r >= '0' && r <= '9':
			numero = true
		}
	}
	if !letra || !numero {
		return ErrSenhaFraca
	}
	return nil
}

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s: %w", field, ErrCampoObrigatorio)
	}
	return nil
}
