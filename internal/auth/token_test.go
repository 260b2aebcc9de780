package auth

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeToken(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"a.b.c", "a.b.c", true},
		{"  a.b.c\n", "a.b.c", true},
		{"null", "", false},
		{"NULL", "", false},
		{" undefined ", "", false},
		{"", "", false},
		{"   ", "", false},
		{"abc", "", false},
		{"a.b", "", false},
		{"a.b.c.d", "", false},
	}

	for _, tc := range cases {
		got, ok := NormalizeToken(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("NormalizeToken(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestInspectTokenReadsExpirationWithoutSecret(t *testing.T) {
	mgr := NewJWTManager(strings.Repeat("s", 32), time.Hour)
	token, err := mgr.GenerateAccessToken(TokenSubject{ID: 7, Email: "ana@empresa.com", Nivel: 2})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	info, err := InspectToken(token)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if info.Subject != "7" {
		t.Fatalf("expected subject 7, got %q", info.Subject)
	}
	if until := time.Until(info.ExpiresAt); until < 50*time.Minute || until > time.Hour+time.Minute {
		t.Fatalf("unexpected expiration %v", info.ExpiresAt)
	}

	if _, err := InspectToken("a.b.c"); err == nil {
		t.Fatal("expected error for structurally valid but undecodable token")
	}
}

func TestJWTManagerRoundTrip(t *testing.T) {
	mgr := NewJWTManager(strings.Repeat("k", 32), time.Minute)
	setor := int64(3)
	token, err := mgr.GenerateAccessToken(TokenSubject{ID: 42, Email: "x@y.com", Nome: "X", SetorID: &setor, Nivel: 4})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := mgr.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != 42 {
		t.Fatalf("UserID = %d, %v", id, err)
	}
	if claims.Nivel != 4 || claims.SetorID == nil || *claims.SetorID != 3 {
		t.Fatalf("unexpected claims %+v", claims)
	}

	other := NewJWTManager(strings.Repeat("z", 32), time.Minute)
	if _, err := other.ParseAndValidate(token); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestSenhaArgon2(t *testing.T) {
	hash, err := HashSenha("Senha123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	ok, err := VerificarSenha("Senha123", hash)
	if err != nil || !ok {
		t.Fatalf("expected match, got %v %v", ok, err)
	}
	ok, _ = VerificarSenha("outra123", hash)
	if ok {
		t.Fatal("expected mismatch")
	}
	ok, _ = VerificarSenha("Senha123", "")
	if ok {
		t.Fatal("empty hash must never match")
	}
}
