package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gestaozabele/indicadores/internal/auth"
	"github.com/gestaozabele/indicadores/internal/model"
	"github.com/gestaozabele/indicadores/internal/submissao"
)

var (
	// ErrLoginInvalido é a mensagem padrão quando o backend não explica a recusa.
	ErrLoginInvalido = errors.New("login inválido")
	// ErrTokenServidor indica token mal formado devolvido no login.
	ErrTokenServidor = errors.New("token inválido retornado pelo servidor")
)

type respostaLogin struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
	User  Linha  `json:"user"`
	Error string `json:"error"`
}

type respostaMe struct {
	OK   bool  `json:"ok"`
	User Linha `json:"user"`
}

// Login autentica e persiste o token normalizado.
func (c *Client) Login(ctx context.Context, email, senha string) (*model.Usuario, error) {
	body := map[string]string{"email": strings.TrimSpace(email), "senha": senha}

	var resp respostaLogin
	err := c.do(ctx, http.MethodPost, "/api/auth/login", body, false, &resp)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && strings.HasPrefix(apiErr.Mensagem, "Erro HTTP") {
			return nil, &Error{Status: apiErr.Status, Mensagem: ErrLoginInvalido.Error()}
		}
		return nil, err
	}
	if !resp.OK {
		msg := strings.TrimSpace(resp.Error)
		if msg == "" {
			return nil, ErrLoginInvalido
		}
		return nil, errors.New(msg)
	}

	token, ok := auth.NormalizeToken(resp.Token)
	if !ok {
		_ = c.store.Clear(ctx)
		return nil, ErrTokenServidor
	}
	if err := c.store.Set(ctx, token); err != nil {
		return nil, fmt.Errorf("gravar sessão: %w", err)
	}

	u := UsuarioDe(resp.User)
	return &u, nil
}

// Me valida a sessão salva e devolve o usuário.
func (c *Client) Me(ctx context.Context) (*model.Usuario, error) {
	var resp respostaMe
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, true, &resp); err != nil {
		return nil, err
	}
	if !resp.OK || len(resp.User) == 0 {
		return nil, ErrNaoAutorizado
	}
	u := UsuarioDe(resp.User)
	return &u, nil
}

func (c *Client) listar(ctx context.Context, path string) ([]Linha, error) {
	var linhas []Linha
	if err := c.do(ctx, http.MethodGet, path, nil, true, &linhas); err != nil {
		return nil, err
	}
	return linhas, nil
}

// ListarSetores devolve os setores visíveis ao usuário.
func (c *Client) ListarSetores(ctx context.Context) ([]model.Setor, error) {
	linhas, err := c.listar(ctx, "/api/setores")
	if err != nil {
		return nil, err
	}
	setores := make([]model.Setor, 0, len(linhas))
	for i, l := range linhas {
		setores = append(setores, SetorDe(l, i))
	}
	return setores, nil
}

// CriarSetor cadastra um setor.
func (c *Client) CriarSetor(ctx context.Context, nome string) error {
	return c.do(ctx, http.MethodPost, "/api/setores", map[string]any{"nome": nome}, true, nil)
}

// SetorUpdate descreve campos opcionais de PUT /api/setores/:id.
type SetorUpdate struct {
	Nome  *string
	Ativo *bool
}

// AtualizarSetor altera nome e/ou situação do setor.
func (c *Client) AtualizarSetor(ctx context.Context, id int64, upd SetorUpdate) error {
	body := map[string]any{}
	if upd.Nome != nil {
		body["nome"] = *upd.Nome
	}
	if upd.Ativo != nil {
		body["ativo"] = *upd.Ativo
	}
	return c.do(ctx, http.MethodPut, "/api/setores/"+strconv.FormatInt(id, 10), body, true, nil)
}

// ListarIndicadores devolve os indicadores ativos do setor.
func (c *Client) ListarIndicadores(ctx context.Context, setorID int64) ([]model.Indicador, error) {
	q := url.Values{}
	q.Set("setorId", strconv.FormatInt(setorID, 10))
	linhas, err := c.listar(ctx, "/api/indicadores?"+q.Encode())
	if err != nil {
		return nil, err
	}
	indicadores := make([]model.Indicador, 0, len(linhas))
	for _, l := range linhas {
		indicadores = append(indicadores, IndicadorDe(l))
	}
	return indicadores, nil
}

// NovoIndicador é o corpo de POST /api/indicadores.
type NovoIndicador struct {
	SetorID       int64    `json:"setor_id"`
	Codigo        string   `json:"codigo"`
	Nome          string   `json:"nome"`
	Tipo          string   `json:"tipo"`
	Unidade       *string  `json:"unidade"`
	Meta          *float64 `json:"meta"`
	ResponsavelID *int64   `json:"responsavel_id"`
}

// CriarIndicador cadastra um indicador.
func (c *Client) CriarIndicador(ctx context.Context, ind NovoIndicador) error {
	return c.do(ctx, http.MethodPost, "/api/indicadores", ind, true, nil)
}

// IndicadorUpdate descreve campos opcionais de PUT /api/indicadores/:id.
// LimparResponsavel envia responsavel_id nulo.
type IndicadorUpdate struct {
	Nome              *string
	Tipo              *string
	Unidade           *string
	Meta              *float64
	Ativo             *bool
	ResponsavelID     *int64
	LimparResponsavel bool
}

// AtualizarIndicador altera a definição do indicador.
func (c *Client) AtualizarIndicador(ctx context.Context, id int64, upd IndicadorUpdate) error {
	body := map[string]any{}
	if upd.Nome != nil {
		body["nome"] = *upd.Nome
	}
	if upd.Tipo != nil {
		body["tipo"] = *upd.Tipo
	}
	if upd.Unidade != nil {
		body["unidade"] = *upd.Unidade
	}
	if upd.Meta != nil {
		body["meta"] = *upd.Meta
	}
	if upd.Ativo != nil {
		body["ativo"] = *upd.Ativo
	}
	switch {
	case upd.LimparResponsavel:
		body["responsavel_id"] = nil
	case upd.ResponsavelID != nil:
		body["responsavel_id"] = *upd.ResponsavelID
	}
	return c.do(ctx, http.MethodPut, "/api/indicadores/"+strconv.FormatInt(id, 10), body, true, nil)
}

// ListarUsuarios devolve todos os usuários (gestão/ADM).
func (c *Client) ListarUsuarios(ctx context.Context) ([]model.Usuario, error) {
	linhas, err := c.listar(ctx, "/api/users")
	if err != nil {
		return nil, err
	}
	usuarios := make([]model.Usuario, 0, len(linhas))
	for _, l := range linhas {
		usuarios = append(usuarios, UsuarioDe(l))
	}
	return usuarios, nil
}

// NovoUsuario é o corpo de POST /api/users.
type NovoUsuario struct {
	Nome    string `json:"nome"`
	Email   string `json:"email"`
	Senha   string `json:"senha"`
	SetorID *int64 `json:"setor_id"`
	Nivel   int    `json:"nivel"`
}

// CriarUsuario cadastra um usuário.
func (c *Client) CriarUsuario(ctx context.Context, u NovoUsuario) error {
	return c.do(ctx, http.MethodPost, "/api/users", u, true, nil)
}

// UsuarioUpdate descreve campos opcionais de PUT /api/users/:id.
type UsuarioUpdate struct {
	Nome        *string
	Email       *string
	SetorID     *int64
	LimparSetor bool
	Nivel       *int
	Ativo       *bool
}

// AtualizarUsuario altera dados, nível ou situação do usuário.
func (c *Client) AtualizarUsuario(ctx context.Context, id int64, upd UsuarioUpdate) error {
	body := map[string]any{}
	if upd.Nome != nil {
		body["nome"] = *upd.Nome
	}
	if upd.Email != nil {
		body["email"] = *upd.Email
	}
	switch {
	case upd.LimparSetor:
		body["setor_id"] = nil
	case upd.SetorID != nil:
		body["setor_id"] = *upd.SetorID
	}
	if upd.Nivel != nil {
		body["nivel"] = *upd.Nivel
	}
	if upd.Ativo != nil {
		body["ativo"] = *upd.Ativo
	}
	return c.do(ctx, http.MethodPut, "/api/users/"+strconv.FormatInt(id, 10), body, true, nil)
}

// RedefinirSenha troca a senha do usuário.
func (c *Client) RedefinirSenha(ctx context.Context, id int64, senha string) error {
	path := "/api/users/" + strconv.FormatInt(id, 10) + "/reset-password"
	return c.do(ctx, http.MethodPost, path, map[string]string{"senha": senha}, true, nil)
}

// SalvarRascunho envia POST /api/drafts.
func (c *Client) SalvarRascunho(ctx context.Context, envio submissao.Envio) error {
	return c.do(ctx, http.MethodPost, "/api/drafts", envio, true, nil)
}

// EnviarValores envia POST /api/valores (definitivo).
func (c *Client) EnviarValores(ctx context.Context, envio submissao.Envio) error {
	return c.do(ctx, http.MethodPost, "/api/valores", envio, true, nil)
}

func (c *Client) listarDrafts(ctx context.Context, path string) ([]model.Draft, error) {
	linhas, err := c.listar(ctx, path)
	if err != nil {
		return nil, err
	}
	drafts := make([]model.Draft, 0, len(linhas))
	for _, l := range linhas {
		drafts = append(drafts, DraftDe(l))
	}
	return drafts, nil
}

// ListarRascunhosRejeitados devolve os rascunhos recusados do próprio usuário no setor.
func (c *Client) ListarRascunhosRejeitados(ctx context.Context, setorID int64) ([]model.Draft, error) {
	q := url.Values{}
	q.Set("setorId", strconv.FormatInt(setorID, 10))
	return c.listarDrafts(ctx, "/api/drafts/rejected?"+q.Encode())
}

// ListarRascunhosPendentes devolve os rascunhos aguardando aprovação.
func (c *Client) ListarRascunhosPendentes(ctx context.Context) ([]model.Draft, error) {
	return c.listarDrafts(ctx, "/api/drafts/pending")
}

// AprovarRascunho aprova um rascunho pendente.
func (c *Client) AprovarRascunho(ctx context.Context, id int64) error {
	path := "/api/drafts/" + strconv.FormatInt(id, 10) + "/approve"
	return c.do(ctx, http.MethodPost, path, map[string]any{}, true, nil)
}

// RejeitarRascunho recusa um rascunho pendente com motivo.
func (c *Client) RejeitarRascunho(ctx context.Context, id int64, motivo string) error {
	path := "/api/drafts/" + strconv.FormatInt(id, 10) + "/reject"
	return c.do(ctx, http.MethodPost, path, map[string]string{"motivo": motivo}, true, nil)
}

// ListarFuncionarios devolve os funcionários do setor do gestor.
func (c *Client) ListarFuncionarios(ctx context.Context) ([]model.Funcionario, error) {
	linhas, err := c.listar(ctx, "/api/gestor/funcionarios")
	if err != nil {
		return nil, err
	}
	funcionarios := make([]model.Funcionario, 0, len(linhas))
	for _, l := range linhas {
		funcionarios = append(funcionarios, FuncionarioDe(l))
	}
	return funcionarios, nil
}
