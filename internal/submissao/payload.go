package submissao

import (
	"strconv"
	"strings"

	"github.com/gestaozabele/indicadores/internal/model"
)

// ValorPayload é uma entrada da lista "valores".
type ValorPayload struct {
	IndicadorID     int64    `json:"indicadorId"`
	IndicadorCodigo string   `json:"indicadorCodigo"`
	IndicadorNome   string   `json:"indicadorNome"`
	Tipo            string   `json:"tipo"`
	Unidade         *string  `json:"unidade"`
	Meta            *float64 `json:"meta"`
	Valor           *string  `json:"valor"`
}

// Envio é o corpo de POST /api/drafts e POST /api/valores.
type Envio struct {
	SetorID           int64          `json:"setorId"`
	SetorNome         string         `json:"setorNome"`
	FuncionarioEmail  string         `json:"funcionarioEmail"`
	FuncionarioNome   string         `json:"funcionarioNome"`
	FuncionarioPerfil string         `json:"funcionarioPerfil"`
	Periodo           string         `json:"periodo"`
	Valores           []ValorPayload `json:"valores"`
}

// MontarValores projeta os indicadores editáveis na lista enviada ao backend.
// Indicadores read_only e o indicador de período ficam de fora.
func MontarValores(indicadores []model.Indicador) []ValorPayload {
	valores := make([]ValorPayload, 0, len(indicadores))
	for _, ind := range indicadores {
		if ind.ReadOnly || ind.IsData() {
			continue
		}

		codigo := strings.TrimSpace(ind.Codigo)
		if codigo == "" {
			codigo = strconv.FormatInt(ind.ID, 10)
		}
		tipo := ind.Tipo
		if tipo == "" {
			tipo = "text"
		}

		var unidade *string
		if ind.Unidade != nil && strings.TrimSpace(*ind.Unidade) != "" {
			u := *ind.Unidade
			unidade = &u
		}

		valores = append(valores, ValorPayload{
			IndicadorID:     ind.ID,
			IndicadorCodigo: codigo,
			IndicadorNome:   ind.Nome,
			Tipo:            tipo,
			Unidade:         unidade,
			Meta:            ind.Meta,
			Valor:           ind.Valor,
		})
	}
	return valores
}

// MontarEnvio envolve os valores com os dados do setor, do funcionário e do período.
func MontarEnvio(setor model.Setor, u *model.Usuario, periodo string, indicadores []model.Indicador) Envio {
	envio := Envio{
		SetorID:   setor.ID,
		SetorNome: setor.Nome,
		Periodo:   periodo,
		Valores:   MontarValores(indicadores),
	}
	if u != nil {
		envio.FuncionarioEmail = u.Email
		envio.FuncionarioNome = u.Nome
		envio.FuncionarioPerfil = string(model.ParsePerfil(string(u.Perfil)))
	}
	return envio
}
