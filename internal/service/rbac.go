package service

import (
	"context"

	"github.com/gestaozabele/indicadores/internal/repo"
)

type rbacRepository interface {
	ListSetoresByResponsavel(ctx context.Context, funcionarioID int64) ([]int64, error)
}

// RBACService opera regras de escopo por setor e nível.
type RBACService struct {
	repo rbacRepository
}

// NewRBACService cria nova instância.
func NewRBACService(r rbacRepository) *RBACService {
	return &RBACService{repo: r}
}

// SetoresAtribuidos devolve os setores em que o ator responde por indicadores.
// Só níveis 2 e 3 recebem atribuições fora do próprio setor.
func (s *RBACService) SetoresAtribuidos(ctx context.Context, ator Ator) (map[int64]bool, error) {
	out := map[int64]bool{}
	if ator.Nivel != 2 && ator.Nivel != 3 {
		return out, nil
	}
	ids, err := s.repo.ListSetoresByResponsavel(ctx, ator.ID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// ValidateSetorAccess garante que o ator alcance o setor. incluirAtribuidos aceita
// setores onde ele apenas responde por indicadores.
func (s *RBACService) ValidateSetorAccess(ctx context.Context, ator Ator, setorID int64, incluirAtribuidos bool) error {
	if ator.Gestao() || ator.DoSetor(setorID) {
		return nil
	}
	if !incluirAtribuidos {
		return ErrForbidden
	}
	atribuidos, err := s.SetoresAtribuidos(ctx, ator)
	if err != nil {
		return err
	}
	if atribuidos[setorID] {
		return nil
	}
	return ErrForbidden
}

// PodePreencher aplica a regra de preenchimento por indicador:
// nível 4+ sempre; nível 3 no próprio setor quando sem responsável ou responsável,
// fora dele só se responsável; nível 2 só no próprio setor, sem responsável ou responsável.
func PodePreencher(ator Ator, ind repo.Indicador) bool {
	if ator.Gestao() {
		return true
	}
	livre := ind.ResponsavelID == nil
	proprio := ind.ResponsavelID != nil && *ind.ResponsavelID == ator.ID

	switch ator.Nivel {
	case 3:
		if ator.DoSetor(ind.SetorID) {
			return livre || proprio
		}
		return proprio
	case 2:
		return ator.DoSetor(ind.SetorID) && (livre || proprio)
	}
	return false
}

// SomenteLeitura decide o read_only de um indicador listado para o ator.
func SomenteLeitura(ator *Ator, ind repo.Indicador) bool {
	if ator == nil {
		return true
	}
	switch ator.Nivel {
	case 1:
		return true
	case 3:
		return ind.ResponsavelID != nil && *ind.ResponsavelID != ator.ID
	}
	return false
}
