package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gestaozabele/indicadores/internal/repo"
)

// SetorService cuida de setores e definições de indicadores.
type SetorService struct {
	repo *repo.Queries
	rbac *RBACService
}

// NewSetorService cria nova instância.
func NewSetorService(r *repo.Queries, rbac *RBACService) *SetorService {
	return &SetorService{repo: r, rbac: rbac}
}

// ListSetores devolve os setores visíveis. Sem ator ou com nível de gestão, todos os ativos;
// senão o setor próprio mais os setores atribuídos.
func (s *SetorService) ListSetores(ctx context.Context, ator *Ator) ([]repo.Setor, error) {
	ativos, err := s.repo.ListSetores(ctx, true)
	if err != nil {
		return nil, err
	}
	if ator == nil || ator.Gestao() {
		return ativos, nil
	}

	atribuidos, err := s.rbac.SetoresAtribuidos(ctx, *ator)
	if err != nil {
		return nil, err
	}
	out := []repo.Setor{}
	for _, setor := range ativos {
		if ator.DoSetor(setor.ID) || atribuidos[setor.ID] {
			out = append(out, setor)
		}
	}
	return out, nil
}

// CreateSetor cadastra setor com nome único.
func (s *SetorService) CreateSetor(ctx context.Context, nome string) (repo.Setor, error) {
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return repo.Setor{}, invalido("Informe nome do setor")
	}
	setor, err := s.repo.InsertSetor(ctx, nome)
	if errors.Is(err, repo.ErrDuplicado) {
		return repo.Setor{}, ErrSetorExiste
	}
	return setor, err
}

// SetorUpdate descreve campos opcionais do setor.
type SetorUpdate struct {
	Nome  *string
	Ativo *bool
}

// UpdateSetor altera nome e/ou situação.
func (s *SetorService) UpdateSetor(ctx context.Context, id int64, upd SetorUpdate) (repo.Setor, error) {
	if upd.Nome == nil && upd.Ativo == nil {
		return repo.Setor{}, ErrNadaParaAtualizar
	}
	if upd.Nome != nil && strings.TrimSpace(*upd.Nome) == "" {
		return repo.Setor{}, invalido("Informe nome do setor")
	}

	setor, err := s.repo.UpdateSetor(ctx, id, func(st *repo.Setor) error {
		if upd.Nome != nil {
			st.Nome = strings.TrimSpace(*upd.Nome)
		}
		if upd.Ativo != nil {
			st.Ativo = *upd.Ativo
		}
		return nil
	})
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return repo.Setor{}, ErrSetorNaoEncontrado
	case errors.Is(err, repo.ErrDuplicado):
		return repo.Setor{}, ErrSetorExiste
	}
	return setor, err
}

// IndicadorListado é um indicador com a marca read_only calculada para o ator.
type IndicadorListado struct {
	repo.Indicador
	ReadOnly bool
}

// ListIndicadores devolve os indicadores ativos do setor vistos pelo ator.
// setorID zero só é aceito para gestão (todos os setores).
func (s *SetorService) ListIndicadores(ctx context.Context, ator *Ator, setorID int64) ([]IndicadorListado, error) {
	if ator == nil || ator.Gestao() {
		return s.listarTodos(ctx, ator, setorID)
	}
	if setorID == 0 {
		return nil, invalido("Informe setorId/setor_id")
	}

	proprio := ator.DoSetor(setorID)
	if !proprio {
		atribuidos, err := s.rbac.SetoresAtribuidos(ctx, *ator)
		if err != nil {
			return nil, err
		}
		if !atribuidos[setorID] {
			return nil, ErrForbidden
		}
	}

	inds, err := s.repo.ListIndicadoresBySetor(ctx, setorID, true)
	if err != nil {
		return nil, err
	}
	out := []IndicadorListado{}
	for _, ind := range inds {
		livre := ind.ResponsavelID == nil
		responsavel := ind.ResponsavelID != nil && *ind.ResponsavelID == ator.ID
		switch {
		case !proprio && !responsavel:
			continue
		case proprio && ator.Nivel == 2 && !livre && !responsavel:
			continue
		}
		out = append(out, IndicadorListado{Indicador: ind, ReadOnly: SomenteLeitura(ator, ind)})
	}
	return out, nil
}

func (s *SetorService) listarTodos(ctx context.Context, ator *Ator, setorID int64) ([]IndicadorListado, error) {
	var setores []int64
	if setorID != 0 {
		setores = []int64{setorID}
	} else {
		if ator == nil {
			return nil, invalido("Informe setorId/setor_id")
		}
		ativos, err := s.repo.ListSetores(ctx, true)
		if err != nil {
			return nil, err
		}
		for _, st := range ativos {
			setores = append(setores, st.ID)
		}
	}

	out := []IndicadorListado{}
	for _, id := range setores {
		inds, err := s.repo.ListIndicadoresBySetor(ctx, id, true)
		if err != nil {
			return nil, err
		}
		for _, ind := range inds {
			out = append(out, IndicadorListado{Indicador: ind, ReadOnly: SomenteLeitura(ator, ind)})
		}
	}
	return out, nil
}

// NovoIndicador reúne os campos de criação.
type NovoIndicador struct {
	SetorID       int64
	Codigo        string
	Nome          string
	Tipo          string
	Unidade       *string
	Meta          *float64
	ResponsavelID *int64
}

// CreateIndicador cadastra indicador com código único no setor.
func (s *SetorService) CreateIndicador(ctx context.Context, in NovoIndicador) (repo.Indicador, error) {
	in.Codigo = strings.TrimSpace(in.Codigo)
	in.Nome = strings.TrimSpace(in.Nome)
	if in.SetorID <= 0 || in.Codigo == "" || in.Nome == "" {
		return repo.Indicador{}, invalido("Informe setor_id, codigo e nome")
	}
	tipo := strings.TrimSpace(in.Tipo)
	if tipo == "" {
		tipo = "number"
	}
	if in.ResponsavelID != nil {
		if _, err := s.repo.GetFuncionarioByID(ctx, *in.ResponsavelID); err != nil {
			return repo.Indicador{}, invalido("Responsável inválido")
		}
	}

	ind, err := s.repo.InsertIndicador(ctx, repo.Indicador{
		SetorID:       in.SetorID,
		Codigo:        in.Codigo,
		Nome:          in.Nome,
		Tipo:          tipo,
		Unidade:       textoOuNil(in.Unidade),
		Meta:          in.Meta,
		Ativo:         true,
		ResponsavelID: in.ResponsavelID,
	})
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return repo.Indicador{}, ErrSetorNaoEncontrado
	case errors.Is(err, repo.ErrDuplicado):
		return repo.Indicador{}, ErrCodigoExiste
	}
	return ind, err
}

// IndicadorUpdate descreve campos opcionais do indicador.
// LimparResponsavel remove o responsável.
type IndicadorUpdate struct {
	Nome              *string
	Tipo              *string
	Unidade           *string
	Meta              *float64
	Ativo             *bool
	ResponsavelID     *int64
	LimparResponsavel bool
}

func (u IndicadorUpdate) vazio() bool {
	return u.Nome == nil && u.Tipo == nil && u.Unidade == nil && u.Meta == nil &&
		u.Ativo == nil && u.ResponsavelID == nil && !u.LimparResponsavel
}

// UpdateIndicador altera a definição do indicador.
func (s *SetorService) UpdateIndicador(ctx context.Context, id int64, upd IndicadorUpdate) (repo.Indicador, error) {
	if upd.vazio() {
		return repo.Indicador{}, ErrNadaParaAtualizar
	}
	if upd.Nome != nil && strings.TrimSpace(*upd.Nome) == "" {
		return repo.Indicador{}, invalido("Informe nome do indicador")
	}
	if upd.ResponsavelID != nil {
		if _, err := s.repo.GetFuncionarioByID(ctx, *upd.ResponsavelID); err != nil {
			return repo.Indicador{}, invalido("Responsável inválido")
		}
	}

	ind, err := s.repo.UpdateIndicador(ctx, id, func(ind *repo.Indicador) error {
		if upd.Nome != nil {
			ind.Nome = strings.TrimSpace(*upd.Nome)
		}
		if upd.Tipo != nil {
			ind.Tipo = strings.TrimSpace(*upd.Tipo)
		}
		if upd.Unidade != nil {
			ind.Unidade = textoOuNil(upd.Unidade)
		}
		if upd.Meta != nil {
			ind.Meta = upd.Meta
		}
		if upd.Ativo != nil {
			ind.Ativo = *upd.Ativo
		}
		switch {
		case upd.LimparResponsavel:
			ind.ResponsavelID = nil
		case upd.ResponsavelID != nil:
			ind.ResponsavelID = upd.ResponsavelID
		}
		return nil
	})
	if errors.Is(err, repo.ErrNotFound) {
		return repo.Indicador{}, ErrIndicadorNaoEncontrado
	}
	return ind, err
}

func textoOuNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
