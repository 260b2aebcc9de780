package painel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gestaozabele/indicadores/internal/api"
	"github.com/gestaozabele/indicadores/internal/model"
	"github.com/gestaozabele/indicadores/internal/policy"
	"github.com/gestaozabele/indicadores/internal/submissao"
	"github.com/gestaozabele/indicadores/internal/util"
)

// ResumoSetor é um cartão da lista de setores.
type ResumoSetor struct {
	Setor       model.Setor
	Indicadores int
}

// CarregarSetores busca os setores visíveis e a contagem de indicadores de cada um.
// Falha na contagem de um setor vale zero. busca filtra pelo nome, sem acento e caixa.
func (c *Controlador) CarregarSetores(ctx context.Context, busca string) ([]ResumoSetor, error) {
	if _, err := c.exigirUsuario(); err != nil {
		return nil, err
	}

	setores, err := c.api.ListarSetores(ctx)
	if err != nil {
		return nil, err
	}
	c.estado.definirSetores(setores)

	filtro := util.Dobrar(busca)
	visiveis := make([]model.Setor, 0, len(setores))
	for _, s := range setores {
		if filtro == "" || strings.Contains(util.Dobrar(s.Nome), filtro) {
			visiveis = append(visiveis, s)
		}
	}

	resumos := make([]ResumoSetor, len(visiveis))
	var g errgroup.Group
	g.SetLimit(c.concorrencia)
	for i, s := range visiveis {
		resumos[i].Setor = s
		i, s := i, s
		g.Go(func() error {
			inds, err := c.api.ListarIndicadores(ctx, s.ID)
			if err != nil {
				log.Debug().Err(err).Int64("setor_id", s.ID).Msg("contagem de indicadores indisponível")
				return nil
			}
			resumos[i].Indicadores = len(inds)
			return nil
		})
	}
	_ = g.Wait()

	return resumos, nil
}

// Campo é um indicador exibido no formulário do setor.
type Campo struct {
	Indicador model.Indicador
	Editavel  bool
}

// ControlePeriodo é o campo de data que define o período da submissão.
// IndicadorID zero indica o período no nível do setor.
type ControlePeriodo struct {
	IndicadorID int64
	Rotulo      string
	Valor       string
	Editavel    bool
}

// VisaoSetor é o formulário de um setor aberto.
type VisaoSetor struct {
	Setor             model.Setor
	Campos            []Campo
	Periodo           ControlePeriodo
	Capacidades       policy.Capacidades
	Rejeitados        []model.Draft
	MostrarRejeitados bool
}

// Editaveis conta os campos que aceitam edição.
func (v *VisaoSetor) Editaveis() int {
	n := 0
	for _, c := range v.Campos {
		if c.Editavel {
			n++
		}
	}
	return n
}

// AbrirSetor carrega os indicadores do setor e o torna o setor aberto.
// Se outra navegação acontecer durante a busca o resultado é descartado.
func (c *Controlador) AbrirSetor(ctx context.Context, setorID int64) (*VisaoSetor, error) {
	u, err := c.exigirUsuario()
	if err != nil {
		return nil, err
	}
	setor, ok := c.estado.setorPorID(setorID)
	if !ok {
		return nil, ErrSetorNaoEncontrado
	}

	ticket := c.estado.navegar()

	indicadores, err := c.api.ListarIndicadores(ctx, setorID)
	if err != nil {
		return nil, err
	}

	caps := policy.CapacidadesDe(u)
	var rejeitados []model.Draft
	mostrar := false
	if caps.RascunhosRejeitados {
		drafts, err := c.api.ListarRascunhosRejeitados(ctx, setorID)
		if err != nil {
			log.Debug().Err(err).Int64("setor_id", setorID).Msg("rascunhos rejeitados indisponíveis")
		} else {
			rejeitados = drafts
			mostrar = true
		}
	}

	if !c.estado.abrirSetor(ticket, setor, indicadores) {
		return nil, ErrNavegacaoObsoleta
	}

	return c.montarVisao(u, setor, indicadores, "", caps, rejeitados, mostrar), nil
}

// VisaoAtual remonta o formulário do setor aberto a partir do estado.
func (c *Controlador) VisaoAtual() (*VisaoSetor, error) {
	u, err := c.exigirUsuario()
	if err != nil {
		return nil, err
	}
	setor, inds := c.estado.SetorAberto()
	if setor == nil {
		return nil, ErrNenhumSetorAberto
	}
	return c.montarVisao(u, *setor, inds, c.estado.Periodo(), policy.CapacidadesDe(u), nil, false), nil
}

// FecharSetor volta para a lista de setores.
func (c *Controlador) FecharSetor() {
	c.estado.fecharSetor()
}

func (c *Controlador) montarVisao(u *model.Usuario, setor model.Setor, inds []model.Indicador, periodo string,
	caps policy.Capacidades, rejeitados []model.Draft, mostrar bool) *VisaoSetor {
	v := &VisaoSetor{
		Setor:             setor,
		Capacidades:       caps,
		Rejeitados:        rejeitados,
		MostrarRejeitados: mostrar,
		Periodo: ControlePeriodo{
			Rotulo:   "Período",
			Valor:    util.ParaBR(periodo),
			Editavel: caps.EditarIndicadores,
		},
	}

	data, temData := submissao.IndicadorPeriodo(inds)
	if temData {
		v.Periodo.IndicadorID = data.ID
		v.Periodo.Rotulo = data.Nome
		v.Periodo.Editavel = policy.InputHabilitado(u, data)
		if data.Valor != nil {
			v.Periodo.Valor = util.ParaBR(*data.Valor)
		}
	}

	for _, ind := range inds {
		if temData && ind.ID == data.ID {
			continue
		}
		v.Campos = append(v.Campos, Campo{Indicador: ind, Editavel: policy.InputHabilitado(u, ind)})
	}
	return v
}

// AtualizarIndicador grava o valor digitado para o indicador do setor aberto.
// Indicadores de data aceitam DD/MM/AAAA ou AAAA-MM-DD e guardam AAAA-MM-DD.
func (c *Controlador) AtualizarIndicador(indicadorID int64, valor string) error {
	u, err := c.exigirUsuario()
	if err != nil {
		return err
	}
	valor = strings.TrimSpace(valor)

	return c.estado.definirValor(indicadorID, func(ind *model.Indicador) error {
		if !policy.InputHabilitado(u, *ind) {
			return policy.ErrSemPermissao
		}
		if valor == "" {
			ind.Valor = nil
			return nil
		}
		if ind.IsData() {
			iso, err := util.NormalizarData(valor)
			if err != nil {
				return err
			}
			valor = iso
		}
		v := valor
		ind.Valor = &v
		return nil
	})
}

// AtualizarPeriodo grava o controle de período: o indicador de data quando existe,
// senão o período do próprio setor.
func (c *Controlador) AtualizarPeriodo(valor string) error {
	u, err := c.exigirUsuario()
	if err != nil {
		return err
	}
	_, inds := c.estado.SetorAberto()
	if data, ok := submissao.IndicadorPeriodo(inds); ok {
		return c.AtualizarIndicador(data.ID, valor)
	}
	if err := policy.PodeSalvar(u); err != nil {
		return err
	}

	valor = strings.TrimSpace(valor)
	iso := ""
	if valor != "" {
		iso, err = util.NormalizarData(valor)
		if err != nil {
			return err
		}
	}
	return c.estado.definirPeriodo(iso)
}

// SalvarRascunho grava os valores como rascunho no backend.
// EDITOR gera rascunho pendente de aprovação.
func (c *Controlador) SalvarRascunho(ctx context.Context) (*model.Registro, error) {
	u, err := c.exigirUsuario()
	if err != nil {
		return nil, err
	}
	if err := policy.PodeSalvar(u); err != nil {
		return nil, err
	}

	status := model.StatusRascunho
	if model.ParsePerfil(string(u.Perfil)) == model.PerfilEditor {
		status = model.StatusAguardandoAprovacao
	}
	return c.submeter(ctx, u, status, c.api.SalvarRascunho)
}

// EnviarFinal envia os valores definitivos (LIDER, GESTAO ou ADM).
func (c *Controlador) EnviarFinal(ctx context.Context) (*model.Registro, error) {
	u, err := c.exigirUsuario()
	if err != nil {
		return nil, err
	}
	if err := policy.PodeEnviar(u); err != nil {
		return nil, err
	}
	return c.submeter(ctx, u, model.StatusEnviadoParaDB, c.api.EnviarValores)
}

func (c *Controlador) submeter(ctx context.Context, u *model.Usuario, status model.StatusRegistro,
	enviar func(context.Context, submissao.Envio) error) (*model.Registro, error) {
	snap, err := c.estado.capturar()
	if err != nil {
		return nil, err
	}

	periodo, err := submissao.ResolverPeriodo(snap.indicadores, snap.periodo, c.agora())
	if err != nil {
		return nil, err
	}
	envio := submissao.MontarEnvio(snap.setor, u, periodo, snap.indicadores)

	err = enviar(ctx, envio)
	if errors.Is(err, api.ErrNaoAutorizado) || errors.Is(err, api.ErrSemSessao) {
		return nil, err
	}
	// só falha de transporte vira registro local; recusa do backend não.
	if api.StatusDe(err) != 0 {
		return nil, err
	}
	if err != nil {
		status = model.StatusSalvoLocalmente
	}

	now := c.agora()
	reg := model.Registro{
		ID:          now.UnixMilli(),
		Usuario:     u.Nome,
		Setor:       snap.setor.Nome,
		Timestamp:   now,
		Indicadores: snap.indicadores,
		Status:      status,
	}
	c.estado.registrar(reg)

	if err != nil {
		return &reg, fmt.Errorf("envio não concluído, registro salvo localmente: %w", err)
	}
	log.Info().Int64("setor_id", snap.setor.ID).Str("periodo", periodo).Str("status", string(status)).
		Int("valores", len(envio.Valores)).Msg("valores submetidos")
	return &reg, nil
}

// PeriodoAtual resolve o período que a próxima submissão usaria.
func (c *Controlador) PeriodoAtual() (string, error) {
	snap, err := c.estado.capturar()
	if err != nil {
		return "", err
	}
	return submissao.ResolverPeriodo(snap.indicadores, snap.periodo, c.agora())
}
