package painel

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gestaozabele/indicadores/internal/api"
	"github.com/gestaozabele/indicadores/internal/model"
	"github.com/gestaozabele/indicadores/internal/policy"
	"github.com/gestaozabele/indicadores/internal/util"
)

// OpcaoOutraUnidade é a opção que libera unidade digitada livremente.
const OpcaoOutraUnidade = "Outra..."

// OpcaoNivel é uma entrada do seletor de nível.
type OpcaoNivel struct {
	Valor  int
	Rotulo string
}

// VisaoAdmin é o painel administrativo.
type VisaoAdmin struct {
	Setores  []model.Setor
	Usuarios []model.Usuario
	Niveis   []OpcaoNivel
}

type indicadoresEmCache struct {
	indicadores []model.Indicador
	expireAt    time.Time
}

// PainelAdmin carrega setores e usuários em paralelo.
func (c *Controlador) PainelAdmin(ctx context.Context) (*VisaoAdmin, error) {
	u, err := c.exigirAdmin()
	if err != nil {
		return nil, err
	}

	v := VisaoAdmin{Niveis: NiveisPermitidos(u)}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := c.api.ListarSetores(gctx)
		v.Setores = s
		return err
	})
	g.Go(func() error {
		us, err := c.api.ListarUsuarios(gctx)
		v.Usuarios = us
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &v, nil
}

// NiveisPermitidos lista os níveis que u pode atribuir: ADM atribui qualquer nível,
// os demais apenas níveis abaixo do próprio.
func NiveisPermitidos(u *model.Usuario) []OpcaoNivel {
	if u == nil {
		return nil
	}
	teto := model.NormalizarNivel(u.Nivel)
	if teto < 5 {
		teto--
	}
	out := make([]OpcaoNivel, 0, teto)
	for n := 1; n <= teto; n++ {
		out = append(out, OpcaoNivel{Valor: n, Rotulo: model.RotuloNivel(n)})
	}
	return out
}

func (c *Controlador) exigirAdmin() (*model.Usuario, error) {
	u, err := c.exigirUsuario()
	if err != nil {
		return nil, err
	}
	if err := policy.PodeAdministrar(u); err != nil {
		return nil, err
	}
	return u, nil
}

// CriarSetor cadastra um setor novo.
func (c *Controlador) CriarSetor(ctx context.Context, nome string) error {
	if _, err := c.exigirAdmin(); err != nil {
		return err
	}
	nome = strings.TrimSpace(nome)
	if err := util.RequireString(nome, "nome"); err != nil {
		return err
	}
	return c.api.CriarSetor(ctx, nome)
}

// RenomearSetor altera o nome do setor.
func (c *Controlador) RenomearSetor(ctx context.Context, id int64, nome string) error {
	if _, err := c.exigirAdmin(); err != nil {
		return err
	}
	nome = strings.TrimSpace(nome)
	if err := util.RequireString(nome, "nome"); err != nil {
		return err
	}
	return c.api.AtualizarSetor(ctx, id, api.SetorUpdate{Nome: &nome})
}

// DefinirSetorAtivo ativa ou inativa o setor.
func (c *Controlador) DefinirSetorAtivo(ctx context.Context, id int64, ativo bool) error {
	if _, err := c.exigirAdmin(); err != nil {
		return err
	}
	if err := c.api.AtualizarSetor(ctx, id, api.SetorUpdate{Ativo: &ativo}); err != nil {
		return err
	}
	c.invalidarCache(id)
	return nil
}

// CriarUsuario valida e cadastra o usuário.
func (c *Controlador) CriarUsuario(ctx context.Context, novo api.NovoUsuario) error {
	u, err := c.exigirAdmin()
	if err != nil {
		return err
	}

	novo.Nome = strings.TrimSpace(novo.Nome)
	novo.Email = strings.ToLower(strings.TrimSpace(novo.Email))
	if err := util.RequireString(novo.Nome, "nome"); err != nil {
		return err
	}
	if err := util.ValidateEmail(novo.Email); err != nil {
		return err
	}
	if err := util.ValidatePassword(novo.Senha); err != nil {
		return err
	}
	novo.Nivel = model.NormalizarNivel(novo.Nivel)
	if !nivelPermitido(u, novo.Nivel) {
		return policy.ErrSemPermissao
	}

	if err := c.api.CriarUsuario(ctx, novo); err != nil {
		return err
	}
	log.Info().Str("email", novo.Email).Int("nivel", novo.Nivel).Msg("usuário criado")
	return nil
}

// AtualizarUsuario altera dados do usuário; campos nil não mudam.
func (c *Controlador) AtualizarUsuario(ctx context.Context, id int64, upd api.UsuarioUpdate) error {
	u, err := c.exigirAdmin()
	if err != nil {
		return err
	}
	if upd.Nome != nil {
		nome := strings.TrimSpace(*upd.Nome)
		if err := util.RequireString(nome, "nome"); err != nil {
			return err
		}
		upd.Nome = &nome
	}
	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		if err := util.ValidateEmail(email); err != nil {
			return err
		}
		upd.Email = &email
	}
	if upd.Nivel != nil {
		n := model.NormalizarNivel(*upd.Nivel)
		if !nivelPermitido(u, n) {
			return policy.ErrSemPermissao
		}
		upd.Nivel = &n
	}
	return c.api.AtualizarUsuario(ctx, id, upd)
}

// DefinirUsuarioAtivo bloqueia (false) ou desbloqueia (true) o usuário.
func (c *Controlador) DefinirUsuarioAtivo(ctx context.Context, id int64, ativo bool) error {
	return c.AtualizarUsuario(ctx, id, api.UsuarioUpdate{Ativo: &ativo})
}

// RedefinirSenha troca a senha exigindo a regra de senha forte.
func (c *Controlador) RedefinirSenha(ctx context.Context, id int64, senha string) error {
	if _, err := c.exigirAdmin(); err != nil {
		return err
	}
	if err := util.ValidatePassword(senha); err != nil {
		return err
	}
	return c.api.RedefinirSenha(ctx, id, senha)
}

func nivelPermitido(u *model.Usuario, nivel int) bool {
	for _, op := range NiveisPermitidos(u) {
		if op.Valor == nivel {
			return true
		}
	}
	return false
}

// IndicadoresAdmin busca os indicadores do setor e renova o cache.
func (c *Controlador) IndicadoresAdmin(ctx context.Context, setorID int64) ([]model.Indicador, error) {
	if _, err := c.exigirAdmin(); err != nil {
		return nil, err
	}
	return c.buscarIndicadores(ctx, setorID)
}

func (c *Controlador) buscarIndicadores(ctx context.Context, setorID int64) ([]model.Indicador, error) {
	inds, err := c.api.ListarIndicadores(ctx, setorID)
	if err != nil {
		return nil, err
	}
	c.cache.Store(chaveCache(setorID), indicadoresEmCache{
		indicadores: copiarIndicadores(inds),
		expireAt:    c.agora().Add(c.cacheTTL),
	})
	return inds, nil
}

// indicadoresCache devolve a lista em cache ou busca no backend.
func (c *Controlador) indicadoresCache(ctx context.Context, setorID int64, forcar bool) ([]model.Indicador, error) {
	key := chaveCache(setorID)
	if !forcar {
		if v, ok := c.cache.Load(key); ok {
			entry := v.(indicadoresEmCache)
			if c.agora().Before(entry.expireAt) {
				c.metrics.CacheHit()
				return copiarIndicadores(entry.indicadores), nil
			}
			c.cache.Delete(key)
		}
	}
	c.metrics.CacheMiss()
	return c.buscarIndicadores(ctx, setorID)
}

func (c *Controlador) invalidarCache(setorID int64) {
	c.cache.Delete(chaveCache(setorID))
}

func (c *Controlador) limparCache() {
	c.cache.Range(func(key, _ any) bool {
		c.cache.Delete(key)
		return true
	})
}

func chaveCache(setorID int64) string {
	return strconv.FormatInt(setorID, 10)
}

// SugerirCodigo propõe o próximo código sequencial do setor.
// forcar ignora o cache e consulta o backend.
func (c *Controlador) SugerirCodigo(ctx context.Context, setorID int64, forcar bool) (string, error) {
	if _, err := c.exigirAdmin(); err != nil {
		return "", err
	}
	inds, err := c.indicadoresCache(ctx, setorID, forcar)
	if err != nil {
		return "", err
	}
	codigos := make([]string, 0, len(inds))
	for _, ind := range inds {
		codigos = append(codigos, ind.Codigo)
	}
	return util.ProximoCodigo(codigos), nil
}

// OpcoesUnidade devolve as unidades distintas do setor ordenadas, mais a opção livre.
func (c *Controlador) OpcoesUnidade(ctx context.Context, setorID int64) ([]string, error) {
	if _, err := c.exigirAdmin(); err != nil {
		return nil, err
	}
	inds, err := c.indicadoresCache(ctx, setorID, false)
	if err != nil {
		return nil, err
	}
	return OpcoesUnidade(inds), nil
}

// OpcoesUnidade lista unidades não vazias sem repetição, em ordem pt-BR, seguidas de OpcaoOutraUnidade.
func OpcoesUnidade(inds []model.Indicador) []string {
	vistos := map[string]struct{}{}
	unidades := make([]string, 0, len(inds)+1)
	for _, ind := range inds {
		if ind.Unidade == nil {
			continue
		}
		u := strings.TrimSpace(*ind.Unidade)
		if u == "" {
			continue
		}
		if _, ok := vistos[u]; ok {
			continue
		}
		vistos[u] = struct{}{}
		unidades = append(unidades, u)
	}
	util.OrdenarPtBR(unidades)
	return append(unidades, OpcaoOutraUnidade)
}

// CriarIndicador cadastra o indicador; código vazio recebe a sugestão sequencial.
func (c *Controlador) CriarIndicador(ctx context.Context, novo api.NovoIndicador) error {
	if _, err := c.exigirAdmin(); err != nil {
		return err
	}
	if novo.SetorID <= 0 {
		return util.RequireString("", "setor_id")
	}
	novo.Nome = strings.TrimSpace(novo.Nome)
	if err := util.RequireString(novo.Nome, "nome"); err != nil {
		return err
	}
	novo.Codigo = strings.TrimSpace(novo.Codigo)
	if novo.Codigo == "" {
		codigo, err := c.SugerirCodigo(ctx, novo.SetorID, true)
		if err != nil {
			return err
		}
		novo.Codigo = codigo
	}
	novo.Tipo = strings.TrimSpace(novo.Tipo)
	if novo.Tipo == "" {
		novo.Tipo = "number"
	}
	if novo.Unidade != nil && strings.TrimSpace(*novo.Unidade) == "" {
		novo.Unidade = nil
	}

	if err := c.api.CriarIndicador(ctx, novo); err != nil {
		return err
	}
	c.invalidarCache(novo.SetorID)
	return nil
}

// AtualizarDefinicaoIndicador altera a definição de um indicador do setor.
func (c *Controlador) AtualizarDefinicaoIndicador(ctx context.Context, setorID, id int64, upd api.IndicadorUpdate) error {
	if _, err := c.exigirAdmin(); err != nil {
		return err
	}
	if upd.Nome != nil {
		nome := strings.TrimSpace(*upd.Nome)
		if err := util.RequireString(nome, "nome"); err != nil {
			return err
		}
		upd.Nome = &nome
	}
	if err := c.api.AtualizarIndicador(ctx, id, upd); err != nil {
		return err
	}
	c.invalidarCache(setorID)
	return nil
}
