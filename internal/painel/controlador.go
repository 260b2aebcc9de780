// Package painel implementa as intenções do painel de indicadores: sessão,
// navegação por setores, preenchimento, rascunhos, envio, gestão e administração.
// Nada aqui desenha tela; cada intenção devolve dados ou erro.
package painel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/indicadores/internal/api"
	"github.com/gestaozabele/indicadores/internal/metrics"
	"github.com/gestaozabele/indicadores/internal/model"
	"github.com/gestaozabele/indicadores/internal/submissao"
)

var (
	ErrNenhumSetorAberto      = errors.New("nenhum setor aberto")
	ErrSetorNaoEncontrado     = errors.New("setor não encontrado")
	ErrIndicadorNaoEncontrado = errors.New("indicador não encontrado")
	ErrNavegacaoObsoleta      = errors.New("navegação substituída por outra mais recente")
	ErrMotivoObrigatorio      = errors.New("informe o motivo da recusa")
)

// Backend é o conjunto de chamadas REST usadas pelo painel.
type Backend interface {
	Login(ctx context.Context, email, senha string) (*model.Usuario, error)
	Me(ctx context.Context) (*model.Usuario, error)
	Token(ctx context.Context) (string, bool, error)
	Logout(ctx context.Context) error
	OnUnauthorized(fn func(ctx context.Context))

	ListarSetores(ctx context.Context) ([]model.Setor, error)
	CriarSetor(ctx context.Context, nome string) error
	AtualizarSetor(ctx context.Context, id int64, upd api.SetorUpdate) error

	ListarIndicadores(ctx context.Context, setorID int64) ([]model.Indicador, error)
	CriarIndicador(ctx context.Context, ind api.NovoIndicador) error
	AtualizarIndicador(ctx context.Context, id int64, upd api.IndicadorUpdate) error

	ListarUsuarios(ctx context.Context) ([]model.Usuario, error)
	CriarUsuario(ctx context.Context, u api.NovoUsuario) error
	AtualizarUsuario(ctx context.Context, id int64, upd api.UsuarioUpdate) error
	RedefinirSenha(ctx context.Context, id int64, senha string) error

	SalvarRascunho(ctx context.Context, envio submissao.Envio) error
	EnviarValores(ctx context.Context, envio submissao.Envio) error
	ListarRascunhosRejeitados(ctx context.Context, setorID int64) ([]model.Draft, error)
	ListarRascunhosPendentes(ctx context.Context) ([]model.Draft, error)
	AprovarRascunho(ctx context.Context, id int64) error
	RejeitarRascunho(ctx context.Context, id int64, motivo string) error
	ListarFuncionarios(ctx context.Context) ([]model.Funcionario, error)
}

// Opcoes ajusta o controlador; zero vale o padrão.
type Opcoes struct {
	Concorrencia  int
	AdminCacheTTL time.Duration
	Metrics       *metrics.ClientMetrics
	Agora         func() time.Time
}

// Controlador concentra as intenções do painel sobre um Backend.
type Controlador struct {
	api     Backend
	estado  *Estado
	metrics *metrics.ClientMetrics
	agora   func() time.Time

	concorrencia int
	cache        sync.Map
	cacheTTL     time.Duration
}

// New cria o controlador e registra o logout forçado no cliente.
func New(backend Backend, opts Opcoes) *Controlador {
	c := &Controlador{
		api:          backend,
		estado:       NovoEstado(),
		metrics:      opts.Metrics,
		agora:        opts.Agora,
		concorrencia: opts.Concorrencia,
		cacheTTL:     opts.AdminCacheTTL,
	}
	if c.agora == nil {
		c.agora = time.Now
	}
	if c.concorrencia <= 0 {
		c.concorrencia = 4
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = time.Minute
	}

	backend.OnUnauthorized(func(ctx context.Context) {
		c.encerrar()
		log.Warn().Msg("painel: sessão expirada, estado reiniciado")
	})
	return c
}

// Estado expõe o estado corrente (somente leitura fora do pacote).
func (c *Controlador) Estado() *Estado {
	return c.estado
}

func (c *Controlador) encerrar() {
	c.estado.Reset()
	c.limparCache()
}

func (c *Controlador) exigirUsuario() (*model.Usuario, error) {
	u := c.estado.Usuario()
	if u == nil {
		return nil, api.ErrSemSessao
	}
	return u, nil
}
