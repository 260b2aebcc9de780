package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/indicadores/internal/repo"
)

type lancamentoRepository interface {
	GetFuncionarioByEmail(ctx context.Context, email string) (repo.Funcionario, error)
	GetFuncionarioByID(ctx context.Context, id int64) (repo.Funcionario, error)
	ListFuncionariosBySetor(ctx context.Context, setorID int64) ([]repo.Funcionario, error)
	GetSetor(ctx context.Context, id int64) (repo.Setor, error)
	GetSetorByNome(ctx context.Context, nome string) (repo.Setor, error)
	GetIndicador(ctx context.Context, id int64) (repo.Indicador, error)
	GetIndicadorByCodigo(ctx context.Context, setorID int64, codigo string) (repo.Indicador, error)
	SaveDraft(ctx context.Context, d repo.Draft) (repo.Draft, error)
	GetDraft(ctx context.Context, id int64) (repo.Draft, error)
	UpdateDraft(ctx context.Context, id int64, fn func(*repo.Draft) error) (repo.Draft, error)
	ListDrafts(ctx context.Context, f repo.DraftFiltro) ([]repo.Draft, error)
	UpsertValor(ctx context.Context, v repo.Valor) (repo.Valor, error)
}

// LancamentoService grava rascunhos e valores definitivos.
type LancamentoService struct {
	repo lancamentoRepository
	rbac *RBACService
}

// NewLancamentoService cria nova instância.
func NewLancamentoService(r lancamentoRepository, rbac *RBACService) *LancamentoService {
	return &LancamentoService{repo: r, rbac: rbac}
}

// ItemEnvio é uma entrada da lista "valores" recebida.
type ItemEnvio struct {
	IndicadorID     int64
	IndicadorCodigo string
	Valor           *string
}

// Envio é o corpo de POST /api/drafts e POST /api/valores já decodificado.
type Envio struct {
	SetorID          int64
	SetorNome        string
	FuncionarioEmail string
	FuncionarioNome  string
	Periodo          string
	Valores          []ItemEnvio
}

// ResultadoEnvio resume o que foi gravado.
type ResultadoEnvio struct {
	Periodo   string
	Gravados  int
	Status    string
	SetorID   int64
	Ignorados []string
}

// NormalizarPeriodo aceita AAAA-MM ou AAAA-MM-01 e devolve AAAA-MM-01.
func NormalizarPeriodo(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", invalido("Envie periodo (YYYY-MM ou YYYY-MM-01)")
	}
	if len(p) == len("2006-01") {
		p += "-01"
	}
	t, err := time.Parse("2006-01-02", p)
	if err != nil || t.Day() != 1 {
		return "", invalido("periodo inválido. Use YYYY-MM ou YYYY-MM-01")
	}
	return p, nil
}

// SalvarRascunhos grava um rascunho por item. Nível 2 envia para aprovação.
// Rascunhos só são aceitos no setor próprio.
func (s *LancamentoService) SalvarRascunhos(ctx context.Context, ator Ator, in Envio) (ResultadoEnvio, error) {
	alvo, err := s.preparar(ctx, ator, in, false)
	if err != nil {
		return ResultadoEnvio{}, err
	}

	status := repo.DraftRascunho
	if ator.Nivel == 2 {
		status = repo.DraftPendente
	}
	for _, ind := range alvo.itens {
		if _, err := s.repo.SaveDraft(ctx, repo.Draft{
			IndicadorID:   ind.indicador.ID,
			SetorID:       alvo.setor.ID,
			FuncionarioID: alvo.funcionario.ID,
			Periodo:       alvo.periodo,
			Valor:         ind.valor,
			Status:        status,
		}); err != nil {
			return ResultadoEnvio{}, err
		}
	}

	log.Info().
		Int64("setor_id", alvo.setor.ID).
		Int64("funcionario_id", alvo.funcionario.ID).
		Str("periodo", alvo.periodo).
		Str("status", status).
		Int("itens", len(alvo.itens)).
		Msg("rascunhos gravados")
	return ResultadoEnvio{Periodo: alvo.periodo, Gravados: len(alvo.itens), Status: status, SetorID: alvo.setor.ID, Ignorados: alvo.ignorados}, nil
}

// EnviarValores grava valores definitivos. Setores atribuídos também são aceitos.
func (s *LancamentoService) EnviarValores(ctx context.Context, ator Ator, in Envio) (ResultadoEnvio, error) {
	alvo, err := s.preparar(ctx, ator, in, true)
	if err != nil {
		return ResultadoEnvio{}, err
	}

	for _, ind := range alvo.itens {
		if _, err := s.repo.UpsertValor(ctx, repo.Valor{
			IndicadorID:   ind.indicador.ID,
			SetorID:       alvo.setor.ID,
			FuncionarioID: alvo.funcionario.ID,
			Periodo:       alvo.periodo,
			Valor:         ind.valor,
		}); err != nil {
			return ResultadoEnvio{}, err
		}
	}

	log.Info().
		Int64("setor_id", alvo.setor.ID).
		Int64("funcionario_id", alvo.funcionario.ID).
		Str("periodo", alvo.periodo).
		Int("itens", len(alvo.itens)).
		Msg("valores gravados")
	return ResultadoEnvio{Periodo: alvo.periodo, Gravados: len(alvo.itens), SetorID: alvo.setor.ID, Ignorados: alvo.ignorados}, nil
}

type itemResolvido struct {
	indicador repo.Indicador
	valor     *string
}

type alvoEnvio struct {
	setor       repo.Setor
	funcionario repo.Funcionario
	periodo     string
	itens       []itemResolvido
	ignorados   []string
}

func (s *LancamentoService) preparar(ctx context.Context, ator Ator, in Envio, incluirAtribuidos bool) (alvoEnvio, error) {
	if in.SetorID == 0 && strings.TrimSpace(in.SetorNome) == "" {
		return alvoEnvio{}, invalido("Envie setorId/setor_id ou setorNome/setor_nome")
	}
	if strings.TrimSpace(in.FuncionarioEmail) == "" && strings.TrimSpace(in.FuncionarioNome) == "" {
		return alvoEnvio{}, invalido("Envie funcionarioEmail ou funcionarioNome")
	}
	periodo, err := NormalizarPeriodo(in.Periodo)
	if err != nil {
		return alvoEnvio{}, err
	}

	setor, err := s.resolverSetor(ctx, in)
	if err != nil {
		return alvoEnvio{}, err
	}
	if err := s.rbac.ValidateSetorAccess(ctx, ator, setor.ID, incluirAtribuidos); err != nil {
		return alvoEnvio{}, err
	}

	// o autor é sempre o dono do token; email divergente só é registrado
	funcionario, err := s.repo.GetFuncionarioByID(ctx, ator.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return alvoEnvio{}, ErrAccountDisabled
		}
		return alvoEnvio{}, err
	}
	if e := strings.ToLower(strings.TrimSpace(in.FuncionarioEmail)); e != "" && e != funcionario.Email {
		log.Warn().Int64("user_id", ator.ID).Str("email_enviado", e).Msg("envio com email de outro funcionário")
	}

	alvo := alvoEnvio{setor: setor, funcionario: funcionario, periodo: periodo}
	for _, item := range in.Valores {
		ind, err := s.resolverIndicador(ctx, setor.ID, item)
		if err != nil {
			if errors.Is(err, ErrIndicadorNaoEncontrado) {
				alvo.ignorados = append(alvo.ignorados, rotuloItem(item))
				continue
			}
			return alvoEnvio{}, err
		}
		if !PodePreencher(ator, ind) {
			return alvoEnvio{}, ErrSemPermissaoIndicador
		}
		alvo.itens = append(alvo.itens, itemResolvido{indicador: ind, valor: item.Valor})
	}
	return alvo, nil
}

func (s *LancamentoService) resolverSetor(ctx context.Context, in Envio) (repo.Setor, error) {
	var (
		setor repo.Setor
		err   error
	)
	if in.SetorID != 0 {
		setor, err = s.repo.GetSetor(ctx, in.SetorID)
	} else {
		setor, err = s.repo.GetSetorByNome(ctx, strings.TrimSpace(in.SetorNome))
	}
	if errors.Is(err, repo.ErrNotFound) {
		return repo.Setor{}, ErrSetorNaoEncontrado
	}
	return setor, err
}

func (s *LancamentoService) resolverIndicador(ctx context.Context, setorID int64, item ItemEnvio) (repo.Indicador, error) {
	var (
		ind repo.Indicador
		err error
	)
	switch {
	case item.IndicadorID != 0:
		ind, err = s.repo.GetIndicador(ctx, item.IndicadorID)
		if err == nil && ind.SetorID != setorID {
			err = repo.ErrNotFound
		}
	case strings.TrimSpace(item.IndicadorCodigo) != "":
		ind, err = s.repo.GetIndicadorByCodigo(ctx, setorID, strings.TrimSpace(item.IndicadorCodigo))
	default:
		err = repo.ErrNotFound
	}
	if errors.Is(err, repo.ErrNotFound) {
		return repo.Indicador{}, ErrIndicadorNaoEncontrado
	}
	return ind, err
}

func rotuloItem(item ItemEnvio) string {
	if item.IndicadorID != 0 {
		return strconv.FormatInt(item.IndicadorID, 10)
	}
	return item.IndicadorCodigo
}

// DraftDetalhado junta nomes de indicador, setor e funcionário ao rascunho.
type DraftDetalhado struct {
	repo.Draft
	IndicadorNome   string
	SetorNome       string
	FuncionarioNome string
}

// ListarRejeitados devolve os rascunhos recusados do próprio ator, opcionalmente por setor.
func (s *LancamentoService) ListarRejeitados(ctx context.Context, ator Ator, setorID int64) ([]DraftDetalhado, error) {
	drafts, err := s.repo.ListDrafts(ctx, repo.DraftFiltro{
		SetorID:       setorID,
		FuncionarioID: ator.ID,
		Status:        repo.DraftRejeitado,
	})
	if err != nil {
		return nil, err
	}
	return s.detalhar(ctx, drafts)
}

// ListarPendentes devolve rascunhos aguardando aprovação. Gestão pode escolher o setor;
// os demais veem o próprio.
func (s *LancamentoService) ListarPendentes(ctx context.Context, ator Ator, setorID int64) ([]DraftDetalhado, error) {
	if !ator.Gestao() || setorID == 0 {
		switch {
		case ator.SetorID != nil:
			setorID = *ator.SetorID
		case !ator.Gestao():
			return nil, invalido("Informe setor_id")
		}
	}
	drafts, err := s.repo.ListDrafts(ctx, repo.DraftFiltro{SetorID: setorID, Status: repo.DraftPendente})
	if err != nil {
		return nil, err
	}
	return s.detalhar(ctx, drafts)
}

func (s *LancamentoService) detalhar(ctx context.Context, drafts []repo.Draft) ([]DraftDetalhado, error) {
	out := make([]DraftDetalhado, 0, len(drafts))
	setores := map[int64]string{}
	nomes := map[int64]string{}
	for _, d := range drafts {
		det := DraftDetalhado{Draft: d}
		if ind, err := s.repo.GetIndicador(ctx, d.IndicadorID); err == nil {
			det.IndicadorNome = ind.Nome
		}
		if nome, ok := setores[d.SetorID]; ok {
			det.SetorNome = nome
		} else if st, err := s.repo.GetSetor(ctx, d.SetorID); err == nil {
			setores[d.SetorID] = st.Nome
			det.SetorNome = st.Nome
		}
		if nome, ok := nomes[d.FuncionarioID]; ok {
			det.FuncionarioNome = nome
		} else if f, err := s.repo.GetFuncionarioByID(ctx, d.FuncionarioID); err == nil {
			nomes[d.FuncionarioID] = f.Nome
			det.FuncionarioNome = f.Nome
		}
		out = append(out, det)
	}
	return out, nil
}

func (s *LancamentoService) draftPendente(ctx context.Context, ator Ator, id int64) (repo.Draft, error) {
	d, err := s.repo.GetDraft(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Draft{}, ErrDraftNaoEncontrado
		}
		return repo.Draft{}, err
	}
	if err := s.rbac.ValidateSetorAccess(ctx, ator, d.SetorID, false); err != nil {
		return repo.Draft{}, err
	}
	if d.Status != repo.DraftPendente {
		return repo.Draft{}, ErrDraftNaoPendente
	}
	return d, nil
}

// AprovarRascunho aprova o rascunho pendente e grava o valor definitivo.
func (s *LancamentoService) AprovarRascunho(ctx context.Context, ator Ator, id int64) error {
	d, err := s.draftPendente(ctx, ator, id)
	if err != nil {
		return err
	}
	if _, err := s.repo.UpdateDraft(ctx, id, func(dr *repo.Draft) error {
		dr.Status = repo.DraftAprovado
		aprovador := ator.ID
		dr.AprovadoPor = &aprovador
		return nil
	}); err != nil {
		return err
	}
	if _, err := s.repo.UpsertValor(ctx, repo.Valor{
		IndicadorID:   d.IndicadorID,
		SetorID:       d.SetorID,
		FuncionarioID: d.FuncionarioID,
		Periodo:       d.Periodo,
		Valor:         d.Valor,
	}); err != nil {
		return err
	}

	log.Info().Int64("draft_id", id).Int64("aprovador", ator.ID).Msg("rascunho aprovado")
	return nil
}

// RejeitarRascunho recusa o rascunho pendente com motivo obrigatório.
func (s *LancamentoService) RejeitarRascunho(ctx context.Context, ator Ator, id int64, motivo string) error {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return invalido("Informe o motivo")
	}
	if _, err := s.draftPendente(ctx, ator, id); err != nil {
		return err
	}
	_, err := s.repo.UpdateDraft(ctx, id, func(dr *repo.Draft) error {
		dr.Status = repo.DraftRejeitado
		dr.RejeitadoMotivo = &motivo
		agora := time.Now().UTC()
		dr.RejeitadoEm = &agora
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Int64("draft_id", id).Int64("gestor", ator.ID).Msg("rascunho rejeitado")
	return nil
}

// FuncionariosDoSetor lista os funcionários ativos do setor do gestor.
func (s *LancamentoService) FuncionariosDoSetor(ctx context.Context, ator Ator) ([]repo.Funcionario, error) {
	if ator.SetorID == nil {
		return []repo.Funcionario{}, nil
	}
	return s.repo.ListFuncionariosBySetor(ctx, *ator.SetorID)
}
