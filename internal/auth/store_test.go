package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type stubRedis struct {
	store map[string]string
	ttls  map[string]time.Duration
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if s.store == nil {
		s.store = make(map[string]string)
		s.ttls = make(map[string]time.Duration)
	}
	s.store[key] = fmt.Sprint(value)
	s.ttls[key] = expiration
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	val, ok := s.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			removed++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func exercitarStore(t *testing.T, store TokenStore) {
	t.Helper()
	ctx := context.Background()

	got, err := store.Get(ctx)
	if err != nil || got != "" {
		t.Fatalf("empty store Get = %q, %v", got, err)
	}
	if err := store.Set(ctx, "a.b.c"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err = store.Get(ctx)
	if err != nil || got != "a.b.c" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, _ = store.Get(ctx)
	if got != "" {
		t.Fatalf("expected cleared token, got %q", got)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exercitarStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "painel", "sessao.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	exercitarStore(t, store)

	if err := store.Set(context.Background(), "x.y.z"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600, got %o", perm)
	}

	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), `"authToken":"x.y.z"`) {
		t.Fatalf("token not stored under authToken: %s", raw)
	}
}

func TestFileStoreCorruptedFileIsEmptySession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessao.json")
	if err := os.WriteFile(path, []byte("{nao json"), 0o600); err != nil {
		t.Fatal(err)
	}
	store, _ := NewFileStore(path)
	got, err := store.Get(context.Background())
	if err != nil || got != "" {
		t.Fatalf("Get = %q, %v", got, err)
	}
}

func TestRedisStoreUsesTokenExpiration(t *testing.T) {
	stub := &stubRedis{}
	store := NewRedisStore(stub, "painel:maquina1:", 12*time.Hour)
	exercitarStore(t, store)

	mgr := NewJWTManager(strings.Repeat("r", 32), 30*time.Minute)
	token, err := mgr.GenerateAccessToken(TokenSubject{ID: 1, Nivel: 5})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(context.Background(), token); err != nil {
		t.Fatal(err)
	}
	ttl := stub.ttls["painel:maquina1:authToken"]
	if ttl <= 25*time.Minute || ttl > 30*time.Minute {
		t.Fatalf("expected ttl from exp claim, got %v", ttl)
	}

	if err := store.Set(context.Background(), "a.b.c"); err != nil {
		t.Fatal(err)
	}
	if got := stub.ttls["painel:maquina1:authToken"]; got != 12*time.Hour {
		t.Fatalf("expected default ttl, got %v", got)
	}
}
