package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gestaozabele/indicadores/internal/auth"
	"github.com/gestaozabele/indicadores/internal/metrics"
	"github.com/gestaozabele/indicadores/internal/policy"
	"github.com/gestaozabele/indicadores/internal/submissao"
)

const tokenValido = "aaa.bbb.ccc"

func novoCliente(t *testing.T, srv *httptest.Server, store auth.TokenStore) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL: srv.URL + "/",
		Store:   store,
		Metrics: metrics.NewClientMetrics(prometheus.NewRegistry()),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func storeCom(t *testing.T, token string) *auth.MemoryStore {
	t.Helper()
	s := auth.NewMemoryStore()
	if token != "" {
		if err := s.Set(context.Background(), token); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestNewValidaConfig(t *testing.T) {
	if _, err := New(Config{Store: auth.NewMemoryStore()}); err == nil {
		t.Fatal("expected error without base url")
	}
	if _, err := New(Config{BaseURL: "http://x"}); err == nil {
		t.Fatal("expected error without store")
	}
}

func TestLoginGravaTokenNormalizado(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not send Authorization")
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "ana@empresa.com" || body["senha"] != "segredo1" {
			t.Errorf("unexpected body %v", body)
		}
		_, _ = io.WriteString(w, `{"ok":true,"token":"  `+tokenValido+` ","user":{"id":5,"email":"ana@empresa.com","nome":"Ana","setor_id":2,"nivel":2,"perfil":"EDITOR"}}`)
	}))
	defer srv.Close()

	store := storeCom(t, "")
	c := novoCliente(t, srv, store)

	u, err := c.Login(context.Background(), " ana@empresa.com ", "segredo1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.ID != 5 || u.Perfil != "EDITOR" || u.SetorID == nil || *u.SetorID != 2 {
		t.Fatalf("unexpected user %+v", u)
	}
	saved, _ := store.Get(context.Background())
	if saved != tokenValido {
		t.Fatalf("expected normalized token stored, got %q", saved)
	}
}

func TestSessaoSemPerfilViraLeitor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		usuario := `{"id":9,"email":"chefe@empresa.com","nome":"Chefe","nivel":5}`
		if r.URL.Path == "/api/auth/login" {
			_, _ = io.WriteString(w, `{"ok":true,"token":"`+tokenValido+`","user":`+usuario+`}`)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true,"user":`+usuario+`}`)
	}))
	defer srv.Close()

	c := novoCliente(t, srv, storeCom(t, ""))
	u, err := c.Login(context.Background(), "chefe@empresa.com", "segredo1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Perfil != "LEITOR" || u.Nivel != 5 {
		t.Fatalf("unexpected user %+v", u)
	}
	if policy.IsAdmin(u) || policy.PodeAdministrar(u) == nil || policy.PodeEnviar(u) == nil {
		t.Fatalf("missing perfil must not grant permissions: %+v", u)
	}

	me, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.Perfil != "LEITOR" {
		t.Fatalf("Me perfil = %q", me.Perfil)
	}
}

func TestLoginTokenInvalidoDoServidor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true,"token":"null","user":{"id":1}}`)
	}))
	defer srv.Close()

	store := storeCom(t, tokenValido)
	c := novoCliente(t, srv, store)
	if _, err := c.Login(context.Background(), "a@b.com", "x"); !errors.Is(err, ErrTokenServidor) {
		t.Fatalf("expected ErrTokenServidor, got %v", err)
	}
	if saved, _ := store.Get(context.Background()); saved != "" {
		t.Fatal("token antigo deveria ser removido")
	}
}

func TestLoginRecusado(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"ok":false,"error":"Usuário/senha inválidos"}`)
	}))
	defer srv.Close()

	var chamado atomic.Bool
	c := novoCliente(t, srv, storeCom(t, ""))
	c.OnUnauthorized(func(context.Context) { chamado.Store(true) })

	_, err := c.Login(context.Background(), "a@b.com", "x")
	if err == nil || err.Error() != "Usuário/senha inválidos" {
		t.Fatalf("unexpected error %v", err)
	}
	if StatusDe(err) != http.StatusUnauthorized {
		t.Fatalf("status = %d", StatusDe(err))
	}
	if chamado.Load() {
		t.Fatal("401 no login não deve forçar logout")
	}
}

func TestChamadaAutenticadaEnviaBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+tokenValido {
			t.Errorf("Authorization = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		_, _ = io.WriteString(w, `[{"ZSE_ID":3,"ZSE_NOME":"Financeiro","ZSE_ATIVO":1},{"id":4,"nome":"RH"}]`)
	}))
	defer srv.Close()

	c := novoCliente(t, srv, storeCom(t, " "+tokenValido+"\n"))
	setores, err := c.ListarSetores(context.Background())
	if err != nil {
		t.Fatalf("ListarSetores: %v", err)
	}
	if len(setores) != 2 || setores[0].Nome != "Financeiro" || setores[1].ID != 4 {
		t.Fatalf("unexpected setores %+v", setores)
	}
	if setores[0].Classe != "blue" || setores[1].Classe != "green" {
		t.Fatalf("unexpected classes %+v", setores)
	}
}

func TestTokenInvalidoForcaLogoutSemRede(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	store := storeCom(t, "undefined")
	c := novoCliente(t, srv, store)
	var chamado atomic.Bool
	c.OnUnauthorized(func(context.Context) { chamado.Store(true) })

	if _, err := c.ListarSetores(context.Background()); !errors.Is(err, ErrNaoAutorizado) {
		t.Fatalf("expected ErrNaoAutorizado, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatal("no request should reach the server")
	}
	if !chamado.Load() {
		t.Fatal("hook de logout não executado")
	}
	if saved, _ := store.Get(context.Background()); saved != "" {
		t.Fatal("store deveria estar limpo")
	}
}

func TestSemSessaoNaoVaiARede(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := novoCliente(t, srv, storeCom(t, ""))
	if _, err := c.Me(context.Background()); !errors.Is(err, ErrSemSessao) {
		t.Fatalf("expected ErrSemSessao, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatal("no request should reach the server")
	}
}

func TestStatus401ForcaLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"ok":false,"error":"Token expirado"}`)
	}))
	defer srv.Close()

	store := storeCom(t, tokenValido)
	c := novoCliente(t, srv, store)
	var chamado atomic.Bool
	c.OnUnauthorized(func(context.Context) { chamado.Store(true) })

	if _, err := c.ListarIndicadores(context.Background(), 1); !errors.Is(err, ErrNaoAutorizado) {
		t.Fatalf("expected ErrNaoAutorizado, got %v", err)
	}
	if !chamado.Load() {
		t.Fatal("hook de logout não executado")
	}
	if saved, _ := store.Get(context.Background()); saved != "" {
		t.Fatal("store deveria estar limpo")
	}
}

func TestErrosHTTP(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"mensagem do servidor", http.StatusForbidden, `{"ok":false,"error":"Acesso negado a este setor"}`, "Acesso negado a este setor"},
		{"sem mensagem", http.StatusInternalServerError, `<html>oops</html>`, "Erro HTTP 500"},
		{"error vazio", http.StatusBadRequest, `{"error":""}`, "Erro HTTP 400"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			c := novoCliente(t, srv, storeCom(t, tokenValido))
			err := c.CriarSetor(context.Background(), "Novo")
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if apiErr.Status != tc.status || apiErr.Mensagem != tc.want {
				t.Fatalf("got %+v", apiErr)
			}
		})
	}
}

func TestJSONMalFormadoEmSucesso(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"ZIN_ID":1,`)
	}))
	defer srv.Close()

	c := novoCliente(t, srv, storeCom(t, tokenValido))
	if _, err := c.ListarIndicadores(context.Background(), 1); !errors.Is(err, ErrRespostaInvalida) {
		t.Fatalf("expected ErrRespostaInvalida, got %v", err)
	}
}

func TestSalvarRascunhoEnviaCorpo(t *testing.T) {
	var recebido map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/drafts" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("content-type = %s", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&recebido)
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	c := novoCliente(t, srv, storeCom(t, tokenValido))
	envio := submissao.Envio{SetorID: 1, SetorNome: "RH", Periodo: "2025-06", Valores: []submissao.ValorPayload{{IndicadorID: 9, IndicadorCodigo: "9"}}}
	if err := c.SalvarRascunho(context.Background(), envio); err != nil {
		t.Fatalf("SalvarRascunho: %v", err)
	}
	if recebido["periodo"] != "2025-06" {
		t.Fatalf("periodo = %v", recebido["periodo"])
	}
	if vals, ok := recebido["valores"].([]any); !ok || len(vals) != 1 {
		t.Fatalf("valores = %v", recebido["valores"])
	}
}

func TestAtualizarIndicadorLimpaResponsavel(t *testing.T) {
	var recebido map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/indicadores/7" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&recebido)
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	c := novoCliente(t, srv, storeCom(t, tokenValido))
	nome := "Novo nome"
	if err := c.AtualizarIndicador(context.Background(), 7, IndicadorUpdate{Nome: &nome, LimparResponsavel: true}); err != nil {
		t.Fatal(err)
	}
	v, ok := recebido["responsavel_id"]
	if !ok || v != nil {
		t.Fatalf("responsavel_id should be explicit null, got %v (present=%v)", v, ok)
	}
	if _, ok := recebido["tipo"]; ok {
		t.Fatal("campos não informados não devem ser enviados")
	}
}
