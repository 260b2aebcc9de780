package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/indicadores/internal/repo"
)

type setorDemo struct {
	nome        string
	indicadores []repo.Indicador
}

func texto(s string) *string { return &s }

func decimal(f float64) *float64 { return &f }

var demo = []setorDemo{
	{nome: "Financeiro", indicadores: []repo.Indicador{
		{Codigo: "1", Nome: "Data de referência", Tipo: "date"},
		{Codigo: "2", Nome: "Receita do mês", Tipo: "number", Unidade: texto("R$"), Meta: decimal(150000)},
		{Codigo: "3", Nome: "Inadimplência", Tipo: "number", Unidade: texto("%"), Meta: decimal(2.5)},
	}},
	{nome: "Atendimento", indicadores: []repo.Indicador{
		{Codigo: "1", Nome: "Data de referência", Tipo: "text", Unidade: texto("date")},
		{Codigo: "2", Nome: "Chamados abertos", Tipo: "number", Unidade: texto("un")},
		{Codigo: "3", Nome: "Observações", Tipo: "text"},
	}},
	{nome: "Recursos Humanos", indicadores: []repo.Indicador{
		{Codigo: "1", Nome: "Admissões", Tipo: "number", Unidade: texto("un")},
	}},
}

// SeedDemo cadastra setores e indicadores de exemplo; setores já existentes são mantidos.
func SeedDemo(ctx context.Context, q *repo.Queries) error {
	for _, s := range demo {
		setor, err := q.InsertSetor(ctx, s.nome)
		if errors.Is(err, repo.ErrDuplicado) {
			continue
		}
		if err != nil {
			return err
		}
		for _, ind := range s.indicadores {
			ind.SetorID = setor.ID
			ind.Ativo = true
			if _, err := q.InsertIndicador(ctx, ind); err != nil {
				return err
			}
		}
		log.Info().Int64("setor_id", setor.ID).Str("setor", setor.Nome).Int("indicadores", len(s.indicadores)).Msg("setor de exemplo criado")
	}
	return nil
}
