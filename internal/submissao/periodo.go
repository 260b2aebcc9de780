// Package submissao monta o corpo enviado em rascunhos e envios definitivos.
package submissao

import (
	"errors"
	"strings"
	"time"

	"github.com/gestaozabele/indicadores/internal/model"
	"github.com/gestaozabele/indicadores/internal/util"
)

// ErrPeriodoInvalido indica data de período presente mas inválida.
var ErrPeriodoInvalido = errors.New("período inválido (use DD/MM/AAAA)")

// FormatoPeriodo é a granularidade mensal aceita pelo backend.
const FormatoPeriodo = "2006-01"

// IndicadorPeriodo devolve o primeiro indicador do tipo data, se houver.
func IndicadorPeriodo(indicadores []model.Indicador) (model.Indicador, bool) {
	for _, ind := range indicadores {
		if ind.IsData() {
			return ind, true
		}
	}
	return model.Indicador{}, false
}

// ResolverPeriodo decide o período AAAA-MM da submissão.
// O valor do indicador de data tem prioridade sobre o período informado no setor;
// sem nenhum dos dois vale o mês corrente. Valor presente e inválido é erro.
func ResolverPeriodo(indicadores []model.Indicador, periodoSetor string, now time.Time) (string, error) {
	candidato := ""
	if ind, ok := IndicadorPeriodo(indicadores); ok && ind.Valor != nil {
		candidato = strings.TrimSpace(*ind.Valor)
	}
	if candidato == "" {
		candidato = strings.TrimSpace(periodoSetor)
	}
	if candidato == "" {
		return now.Format(FormatoPeriodo), nil
	}

	iso, err := util.NormalizarData(candidato)
	if err != nil {
		return "", ErrPeriodoInvalido
	}
	return iso[:7], nil
}
