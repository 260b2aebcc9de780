package painel

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gestaozabele/indicadores/internal/model"
	"github.com/gestaozabele/indicadores/internal/policy"
)

// VisaoGestor reúne funcionários do setor e rascunhos aguardando aprovação.
type VisaoGestor struct {
	Funcionarios []model.Funcionario
	Pendentes    []model.Draft
}

// PainelGestor carrega em paralelo funcionários e rascunhos pendentes.
func (c *Controlador) PainelGestor(ctx context.Context) (*VisaoGestor, error) {
	u, err := c.exigirUsuario()
	if err != nil {
		return nil, err
	}
	if err := policy.PodeGerir(u); err != nil {
		return nil, err
	}

	var v VisaoGestor
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := c.api.ListarFuncionarios(gctx)
		v.Funcionarios = f
		return err
	})
	g.Go(func() error {
		p, err := c.api.ListarRascunhosPendentes(gctx)
		v.Pendentes = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &v, nil
}

// AprovarRascunho aprova o rascunho e grava o valor definitivo.
func (c *Controlador) AprovarRascunho(ctx context.Context, draftID int64) error {
	u, err := c.exigirUsuario()
	if err != nil {
		return err
	}
	if err := policy.PodeGerir(u); err != nil {
		return err
	}
	if err := c.api.AprovarRascunho(ctx, draftID); err != nil {
		return err
	}
	log.Info().Int64("draft_id", draftID).Int64("user_id", u.ID).Msg("rascunho aprovado")
	return nil
}

// RejeitarRascunho recusa o rascunho; o motivo é obrigatório.
func (c *Controlador) RejeitarRascunho(ctx context.Context, draftID int64, motivo string) error {
	u, err := c.exigirUsuario()
	if err != nil {
		return err
	}
	if err := policy.PodeGerir(u); err != nil {
		return err
	}
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return ErrMotivoObrigatorio
	}
	if err := c.api.RejeitarRascunho(ctx, draftID, motivo); err != nil {
		return err
	}
	log.Info().Int64("draft_id", draftID).Int64("user_id", u.ID).Msg("rascunho rejeitado")
	return nil
}
