package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gestaozabele/indicadores/internal/api"
	"github.com/gestaozabele/indicadores/internal/auth"
	"github.com/gestaozabele/indicadores/internal/config"
	"github.com/gestaozabele/indicadores/internal/painel"
	"github.com/gestaozabele/indicadores/internal/repo"
	"github.com/gestaozabele/indicadores/internal/service"
)

const senhaTeste = "segredo123"

type ambiente struct {
	q      *repo.Queries
	jwt    *auth.JWTManager
	srv    *httptest.Server
	setor  repo.Setor
	outro  repo.Setor
	inds   []repo.Indicador
	editor repo.Funcionario
	gestor repo.Funcionario
	adm    repo.Funcionario

	mu       sync.Mutex
	rascunho []byte
}

func novoAmbiente(t *testing.T) *ambiente {
	t.Helper()
	ctx := context.Background()
	cfg := &config.Servidor{
		JWTSecret:        strings.Repeat("s", 32),
		JWTAccessTTL:     time.Hour,
		RateLimitPublic:  config.RateLimitServidor{RequestsPerSecond: 1000, Burst: 1000},
		RateLimitUsuario: config.RateLimitUsuario{RequestsPerSecond: 1000, Burst: 1000},
	}
	a := &ambiente{q: repo.New(), jwt: auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)}

	var err error
	if a.setor, err = a.q.InsertSetor(ctx, "Financeiro"); err != nil {
		t.Fatalf("setor: %v", err)
	}
	if a.outro, err = a.q.InsertSetor(ctx, "Obras"); err != nil {
		t.Fatalf("setor: %v", err)
	}
	for _, ind := range []repo.Indicador{
		{SetorID: a.setor.ID, Codigo: "1", Nome: "Data de referência", Tipo: "date"},
		{SetorID: a.setor.ID, Codigo: "2", Nome: "Receita", Tipo: "number"},
		{SetorID: a.setor.ID, Codigo: "3", Nome: "Despesa", Tipo: "number"},
	} {
		ind.Ativo = true
		got, err := a.q.InsertIndicador(ctx, ind)
		if err != nil {
			t.Fatalf("indicador: %v", err)
		}
		a.inds = append(a.inds, got)
	}

	hash, err := auth.HashSenha(senhaTeste)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	inserir := func(nome, email string, nivel int, setorID *int64) repo.Funcionario {
		f, err := a.q.InsertFuncionario(ctx, repo.Funcionario{
			Nome: nome, Email: email, SenhaHash: hash, Nivel: nivel, SetorID: setorID, Ativo: true,
		})
		if err != nil {
			t.Fatalf("funcionario: %v", err)
		}
		return f
	}
	a.editor = inserir("Edna", "edna@example.com", 2, &a.setor.ID)
	a.gestor = inserir("Gil", "gil@example.com", 3, &a.setor.ID)
	a.adm = inserir("Ada", "ada@example.com", 5, nil)

	authSvc := service.NewAuthService(a.q, a.jwt)
	router, err := NewRouter(cfg, a.q, authSvc, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	a.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/drafts" {
			raw, _ := io.ReadAll(r.Body)
			a.mu.Lock()
			a.rascunho = raw
			a.mu.Unlock()
			r.Body = io.NopCloser(bytes.NewReader(raw))
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(a.srv.Close)
	return a
}

func (a *ambiente) token(t *testing.T, f repo.Funcionario) string {
	t.Helper()
	tok, err := a.jwt.GenerateAccessToken(auth.TokenSubject{
		ID: f.ID, Email: f.Email, Nome: f.Nome, SetorID: f.SetorID, Nivel: f.Nivel,
	})
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

func (a *ambiente) chamar(t *testing.T, method, path, token string, body any) (int, map[string]any, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	obj := map[string]any{}
	_ = json.Unmarshal(raw, &obj)
	return resp.StatusCode, obj, raw
}

func (a *ambiente) controlador(t *testing.T) *painel.Controlador {
	t.Helper()
	client, err := api.New(api.Config{BaseURL: a.srv.URL, Timeout: 5 * time.Second, Store: auth.NewMemoryStore()})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return painel.New(client, painel.Opcoes{
		Concorrencia: 2,
		Agora:        func() time.Time { return time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC) },
	})
}

func TestFluxoEditorSalvaRascunho(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()
	c := a.controlador(t)

	u, err := c.Login(ctx, "edna@example.com", senhaTeste)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.Nivel != 2 || u.SetorID == nil || *u.SetorID != a.setor.ID {
		t.Fatalf("unexpected user %+v", u)
	}

	resumos, err := c.CarregarSetores(ctx, "")
	if err != nil {
		t.Fatalf("setores: %v", err)
	}
	if len(resumos) != 1 || resumos[0].Indicadores != 3 {
		t.Fatalf("editor sees own sector with 3 indicators, got %+v", resumos)
	}

	visao, err := c.AbrirSetor(ctx, a.setor.ID)
	if err != nil {
		t.Fatalf("abrir: %v", err)
	}
	if visao.Editaveis() != 2 || len(visao.Campos) != 2 {
		t.Fatalf("expected 2 editable inputs, got %d of %d", visao.Editaveis(), len(visao.Campos))
	}
	if visao.Periodo.IndicadorID != a.inds[0].ID || !visao.Periodo.Editavel {
		t.Fatalf("expected date indicator as period control, got %+v", visao.Periodo)
	}
	if !visao.MostrarRejeitados {
		t.Fatalf("editor must see the rejected drafts panel")
	}

	if err := c.AtualizarIndicador(a.inds[1].ID, "1500"); err != nil {
		t.Fatalf("atualizar: %v", err)
	}
	if err := c.AtualizarIndicador(a.inds[2].ID, "900"); err != nil {
		t.Fatalf("atualizar: %v", err)
	}
	if _, err := c.SalvarRascunho(ctx); err != nil {
		t.Fatalf("salvar: %v", err)
	}

	a.mu.Lock()
	raw := a.rascunho
	a.mu.Unlock()
	var enviado struct {
		SetorID int64  `json:"setorId"`
		Periodo string `json:"periodo"`
		Valores []struct {
			IndicadorID int64   `json:"indicadorId"`
			Valor       *string `json:"valor"`
		} `json:"valores"`
	}
	if err := json.Unmarshal(raw, &enviado); err != nil {
		t.Fatalf("draft body: %v", err)
	}
	if enviado.Periodo != "2025-06" || len(enviado.Valores) != 2 || enviado.SetorID != a.setor.ID {
		t.Fatalf("unexpected draft payload %s", raw)
	}

	drafts, err := a.q.ListDrafts(ctx, repo.DraftFiltro{SetorID: a.setor.ID, Status: repo.DraftPendente})
	if err != nil || len(drafts) != 2 {
		t.Fatalf("expected 2 pending drafts, got %d %v", len(drafts), err)
	}
	for _, d := range drafts {
		if d.Periodo != "2025-06-01" || d.FuncionarioID != a.editor.ID {
			t.Fatalf("unexpected draft %+v", d)
		}
	}
}

func TestFluxoGestorAprovaEEnvia(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()

	editor := a.controlador(t)
	if _, err := editor.Login(ctx, "edna@example.com", senhaTeste); err != nil {
		t.Fatalf("login editor: %v", err)
	}
	if _, err := editor.CarregarSetores(ctx, ""); err != nil {
		t.Fatalf("setores: %v", err)
	}
	if _, err := editor.AbrirSetor(ctx, a.setor.ID); err != nil {
		t.Fatalf("abrir: %v", err)
	}
	if err := editor.AtualizarPeriodo("20/05/2025"); err != nil {
		t.Fatalf("periodo: %v", err)
	}
	if err := editor.AtualizarIndicador(a.inds[1].ID, "10"); err != nil {
		t.Fatalf("atualizar: %v", err)
	}
	if _, err := editor.SalvarRascunho(ctx); err != nil {
		t.Fatalf("salvar: %v", err)
	}

	gestor := a.controlador(t)
	if _, err := gestor.Login(ctx, "gil@example.com", senhaTeste); err != nil {
		t.Fatalf("login gestor: %v", err)
	}
	visao, err := gestor.PainelGestor(ctx)
	if err != nil {
		t.Fatalf("painel gestor: %v", err)
	}
	if len(visao.Funcionarios) != 2 || len(visao.Pendentes) != 2 {
		t.Fatalf("unexpected manager view %+v", visao)
	}

	var receita, despesa int64
	for _, d := range visao.Pendentes {
		if d.Periodo != "2025-05-01" || d.FuncionarioNome != "Edna" {
			t.Fatalf("unexpected pending draft %+v", d)
		}
		if d.IndicadorID == a.inds[1].ID {
			receita = d.ID
		} else {
			despesa = d.ID
		}
	}
	if err := gestor.AprovarRascunho(ctx, receita); err != nil {
		t.Fatalf("aprovar: %v", err)
	}
	if err := gestor.RejeitarRascunho(ctx, despesa, "sem valor"); err != nil {
		t.Fatalf("rejeitar: %v", err)
	}
	if v, err := a.q.GetValor(ctx, a.inds[1].ID, "2025-05-01"); err != nil || v.Valor == nil || *v.Valor != "10" {
		t.Fatalf("approved value not stored: %+v %v", v, err)
	}

	reaberto, err := editor.AbrirSetor(ctx, a.setor.ID)
	if err != nil {
		t.Fatalf("reabrir: %v", err)
	}
	if len(reaberto.Rejeitados) != 1 || reaberto.Rejeitados[0].RejeitadoMotivo != "sem valor" {
		t.Fatalf("expected rejected draft for editor, got %+v", reaberto.Rejeitados)
	}

	if _, err := gestor.CarregarSetores(ctx, ""); err != nil {
		t.Fatalf("setores gestor: %v", err)
	}
	if _, err := gestor.AbrirSetor(ctx, a.setor.ID); err != nil {
		t.Fatalf("abrir gestor: %v", err)
	}
	if err := gestor.AtualizarIndicador(a.inds[2].ID, "7"); err != nil {
		t.Fatalf("atualizar gestor: %v", err)
	}
	if _, err := gestor.EnviarFinal(ctx); err != nil {
		t.Fatalf("enviar: %v", err)
	}
	if v, err := a.q.GetValor(ctx, a.inds[2].ID, "2025-06-01"); err != nil || *v.Valor != "7" {
		t.Fatalf("final value not stored: %+v %v", v, err)
	}
}

func TestLoginCredenciaisInvalidas(t *testing.T) {
	a := novoAmbiente(t)

	status, body, _ := a.chamar(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "edna@example.com", "senha": "errada999",
	})
	if status != http.StatusUnauthorized || body["ok"] != false || body["error"] != "Usuário/senha inválidos" {
		t.Fatalf("unexpected response %d %v", status, body)
	}

	status, body, _ = a.chamar(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "edna@example.com"})
	if status != http.StatusBadRequest || body["error"] != "Informe email e senha" {
		t.Fatalf("unexpected response %d %v", status, body)
	}
}

func TestLoginDevolveTokenEUsuario(t *testing.T) {
	a := novoAmbiente(t)

	status, body, _ := a.chamar(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ADA@example.com", "senha": senhaTeste,
	})
	if status != http.StatusOK || body["ok"] != true {
		t.Fatalf("unexpected response %d %v", status, body)
	}
	token, _ := body["token"].(string)
	if _, ok := auth.NormalizeToken(token); !ok {
		t.Fatalf("expected JWT, got %q", token)
	}
	user, _ := body["user"].(map[string]any)
	if user["perfil"] != "ADM" || user["nivel"] != float64(5) {
		t.Fatalf("unexpected user %v", user)
	}

	status, body, _ = a.chamar(t, http.MethodGet, "/api/me", token, nil)
	if status != http.StatusOK || body["ok"] != true {
		t.Fatalf("me: %d %v", status, body)
	}
}

func TestAuthMensagens(t *testing.T) {
	a := novoAmbiente(t)

	status, body, _ := a.chamar(t, http.MethodGet, "/api/me", "", nil)
	if status != http.StatusUnauthorized || body["error"] != "Token ausente" {
		t.Fatalf("missing token: %d %v", status, body)
	}
	status, body, _ = a.chamar(t, http.MethodGet, "/api/me", "a.b.c", nil)
	if status != http.StatusUnauthorized || body["error"] != "Token inválido" {
		t.Fatalf("invalid token: %d %v", status, body)
	}
	status, body, _ = a.chamar(t, http.MethodGet, "/api/users", a.token(t, a.gestor), nil)
	if status != http.StatusForbidden || body["error"] != "Permissão insuficiente (requer nível >= 4)" {
		t.Fatalf("level gate: %d %v", status, body)
	}
	status, body, _ = a.chamar(t, http.MethodGet, "/api/setores", "lixo", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("optional auth with bad token: %d %v", status, body)
	}
}

func TestIndicadoresAnonimosSaoSomenteLeitura(t *testing.T) {
	a := novoAmbiente(t)

	status, _, raw := a.chamar(t, http.MethodGet, "/api/setores", "", nil)
	var setores []map[string]any
	if status != http.StatusOK || json.Unmarshal(raw, &setores) != nil || len(setores) != 2 {
		t.Fatalf("anonymous sectors: %d %s", status, raw)
	}

	status, _, raw = a.chamar(t, http.MethodGet, "/api/indicadores?setorId="+itoa(a.setor.ID), "", nil)
	var inds []map[string]any
	if status != http.StatusOK || json.Unmarshal(raw, &inds) != nil || len(inds) != 3 {
		t.Fatalf("anonymous indicators: %d %s", status, raw)
	}
	for _, ind := range inds {
		if ind["read_only"] != true {
			t.Fatalf("expected read_only for anonymous listing: %v", ind)
		}
	}

	status, body, _ := a.chamar(t, http.MethodGet, "/api/indicadores?setor_id="+itoa(a.outro.ID), a.token(t, a.editor), nil)
	if status != http.StatusForbidden || body["error"] != "Acesso negado a este setor" {
		t.Fatalf("foreign sector: %d %v", status, body)
	}
}

func TestAdminCrud(t *testing.T) {
	a := novoAmbiente(t)
	tok := a.token(t, a.adm)

	status, body, _ := a.chamar(t, http.MethodPost, "/api/setores", tok, map[string]any{"nome": "financeiro"})
	if status != http.StatusConflict || body["error"] != "Setor ja existe" {
		t.Fatalf("duplicate sector: %d %v", status, body)
	}
	status, body, _ = a.chamar(t, http.MethodPost, "/api/setores", tok, map[string]any{"nome": "Jurídico"})
	if status != http.StatusCreated || body["ok"] != true {
		t.Fatalf("create sector: %d %v", status, body)
	}

	status, body, _ = a.chamar(t, http.MethodPut, "/api/setores/"+itoa(a.outro.ID), tok, map[string]any{"ativo": 0})
	if status != http.StatusOK {
		t.Fatalf("deactivate sector: %d %v", status, body)
	}

	status, body, _ = a.chamar(t, http.MethodPost, "/api/indicadores", tok, map[string]any{
		"setor_id": a.setor.ID, "codigo": "4", "nome": "Caixa", "meta": "10,5", "responsavel_id": a.gestor.ID,
	})
	if status != http.StatusCreated {
		t.Fatalf("create indicator: %d %v", status, body)
	}
	criado, _ := body["indicador"].(map[string]any)
	if criado["ZIN_TIPO"] != "number" || criado["ZIN_META"] != 10.5 {
		t.Fatalf("unexpected indicator %v", criado)
	}
	id := int64(body["id"].(float64))

	status, body, _ = a.chamar(t, http.MethodPut, "/api/indicadores/"+itoa(id), tok, map[string]any{"responsavel_id": nil})
	if status != http.StatusOK {
		t.Fatalf("clear responsible: %d %v", status, body)
	}
	ind, _ := a.q.GetIndicador(context.Background(), id)
	if ind.ResponsavelID != nil {
		t.Fatalf("expected responsible cleared, got %v", *ind.ResponsavelID)
	}

	status, body, _ = a.chamar(t, http.MethodPut, "/api/indicadores/"+itoa(id), tok, map[string]any{})
	if status != http.StatusBadRequest || body["error"] != "Nada para atualizar" {
		t.Fatalf("empty update: %d %v", status, body)
	}
}

func TestUsuariosRespeitamNivel(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()
	gestao, err := a.q.InsertFuncionario(ctx, repo.Funcionario{Nome: "Gus", Email: "gus@example.com", Nivel: 4, Ativo: true})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	tok := a.token(t, gestao)

	status, body, _ := a.chamar(t, http.MethodPost, "/api/users", tok, map[string]any{
		"nome": "Nova", "email": "nova@example.com", "senha": "senha1234", "nivel": 4,
	})
	if status != http.StatusForbidden || body["error"] != "Você só pode criar usuários abaixo do seu nível" {
		t.Fatalf("create above level: %d %v", status, body)
	}

	status, body, _ = a.chamar(t, http.MethodPost, "/api/users", tok, map[string]any{
		"nome": "Nova", "email": "nova@example.com", "senha": "senha1234", "nivel": 3, "setor_id": a.setor.ID,
	})
	if status != http.StatusCreated {
		t.Fatalf("create user: %d %v", status, body)
	}

	status, body, _ = a.chamar(t, http.MethodPut, "/api/users/"+itoa(a.adm.ID), tok, map[string]any{"ativo": false})
	if status != http.StatusForbidden || body["error"] != "Você só pode alterar usuários abaixo do seu nível" {
		t.Fatalf("update superior: %d %v", status, body)
	}

	status, body, _ = a.chamar(t, http.MethodPut, "/api/users/"+itoa(a.editor.ID), tok, map[string]any{"setor_id": nil})
	if status != http.StatusOK {
		t.Fatalf("clear sector: %d %v", status, body)
	}
	f, _ := a.q.GetFuncionarioByID(ctx, a.editor.ID)
	if f.SetorID != nil {
		t.Fatalf("expected sector cleared")
	}

	status, _, raw := a.chamar(t, http.MethodGet, "/api/users", tok, nil)
	var users []map[string]any
	if status != http.StatusOK || json.Unmarshal(raw, &users) != nil || len(users) != 5 {
		t.Fatalf("list users: %d %s", status, raw)
	}
	if users[0]["ZFU_NIVEL"] != float64(5) {
		t.Fatalf("users ordered by level desc, got %v", users[0])
	}
}

func TestValidacaoDeEnvio(t *testing.T) {
	a := novoAmbiente(t)
	tok := a.token(t, a.gestor)

	cases := []struct {
		body map[string]any
		msg  string
	}{
		{map[string]any{"funcionarioEmail": "gil@example.com", "periodo": "2025-06"}, "Envie setorId/setor_id ou setorNome/setor_nome"},
		{map[string]any{"setor_id": a.setor.ID, "periodo": "2025-06"}, "Envie funcionarioEmail ou funcionarioNome"},
		{map[string]any{"setorNome": "Financeiro", "funcionarioNome": "Gil"}, "Envie periodo (YYYY-MM ou YYYY-MM-01)"},
		{map[string]any{"setorId": a.setor.ID, "funcionarioNome": "Gil", "periodo": "2025/06"}, "periodo inválido. Use YYYY-MM ou YYYY-MM-01"},
	}
	for _, tc := range cases {
		status, body, _ := a.chamar(t, http.MethodPost, "/api/valores", tok, tc.body)
		if status != http.StatusBadRequest || body["error"] != tc.msg {
			t.Fatalf("body %v: %d %v", tc.body, status, body)
		}
	}

	status, body, _ := a.chamar(t, http.MethodPost, "/api/valores", a.token(t, a.editor), cases[0].body)
	if status != http.StatusForbidden || body["error"] != "Permissão insuficiente (requer nível >= 3)" {
		t.Fatalf("editor posting final values: %d %v", status, body)
	}

	status, body, _ = a.chamar(t, http.MethodPost, "/api/drafts/999/reject", tok, map[string]any{"motivo": " "})
	if status != http.StatusBadRequest || body["error"] != "Informe o motivo" {
		t.Fatalf("reject without motivo: %d %v", status, body)
	}
}

func TestHealthEMetrics(t *testing.T) {
	a := novoAmbiente(t)

	status, body, _ := a.chamar(t, http.MethodGet, "/health", "", nil)
	if status != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health: %d %v", status, body)
	}

	status, _, raw := a.chamar(t, http.MethodGet, "/metrics", "", nil)
	if status != http.StatusOK || !strings.Contains(string(raw), "painel_indicadores_server_requests_total") {
		t.Fatalf("metrics: %d %s", status, raw)
	}
}
