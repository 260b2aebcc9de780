package painel

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/gestaozabele/indicadores/internal/model"
)

const (
	UltimosTabela = 5
	UltimosCards  = 3

	formatoHistorico = "02/01/2006 15:04:05"
)

// Badge descreve a etiqueta de status de um registro.
type Badge string

const (
	BadgeEnviado Badge = "enviado"
	BadgeSalvo   Badge = "salvo"
)

// BadgeDe devolve "enviado" para envios definitivos e "salvo" para o resto.
func BadgeDe(s model.StatusRegistro) Badge {
	if s.Enviado() {
		return BadgeEnviado
	}
	return BadgeSalvo
}

// Ultimos devolve até n registros mais recentes.
func (c *Controlador) Ultimos(n int) []model.Registro {
	h := c.estado.Historico()
	if n >= 0 && len(h) > n {
		h = h[:n]
	}
	return h
}

type linhaHistorico struct {
	ID          int64  `csv:"id"`
	DataHora    string `csv:"data_hora"`
	Usuario     string `csv:"usuario"`
	Setor       string `csv:"setor"`
	Status      string `csv:"status"`
	Indicadores int    `csv:"indicadores"`
	Preenchidos int    `csv:"preenchidos"`
}

type linhaIndicador struct {
	ID          int64  `csv:"id"`
	Codigo      string `csv:"codigo"`
	Nome        string `csv:"nome"`
	Tipo        string `csv:"tipo"`
	Unidade     string `csv:"unidade"`
	Meta        string `csv:"meta"`
	Responsavel string `csv:"responsavel_id"`
	Valor       string `csv:"valor"`
	Somente     bool   `csv:"read_only"`
}

func escritorCSV(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	cw.UseCRLF = true
	return cw
}

// ExportarHistoricoCSV escreve o histórico local separado por ponto e vírgula.
func (c *Controlador) ExportarHistoricoCSV(w io.Writer) error {
	regs := c.estado.Historico()
	linhas := make([]linhaHistorico, 0, len(regs))
	for _, r := range regs {
		preenchidos := 0
		for _, ind := range r.Indicadores {
			if ind.Valor != nil && strings.TrimSpace(*ind.Valor) != "" {
				preenchidos++
			}
		}
		linhas = append(linhas, linhaHistorico{
			ID:          r.ID,
			DataHora:    r.Timestamp.Format(formatoHistorico),
			Usuario:     r.Usuario,
			Setor:       r.Setor,
			Status:      string(r.Status),
			Indicadores: len(r.Indicadores),
			Preenchidos: preenchidos,
		})
	}
	return gocsv.MarshalCSV(&linhas, escritorCSV(w))
}

// ExportarIndicadoresCSV escreve a lista de indicadores com os valores correntes.
func ExportarIndicadoresCSV(w io.Writer, inds []model.Indicador) error {
	linhas := make([]linhaIndicador, 0, len(inds))
	for _, ind := range inds {
		l := linhaIndicador{
			ID:      ind.ID,
			Codigo:  ind.Codigo,
			Nome:    ind.Nome,
			Tipo:    ind.Tipo,
			Somente: ind.ReadOnly,
		}
		if ind.Unidade != nil {
			l.Unidade = *ind.Unidade
		}
		if ind.Meta != nil {
			l.Meta = strings.Replace(strconv.FormatFloat(*ind.Meta, 'f', -1, 64), ".", ",", 1)
		}
		if ind.ResponsavelID != nil {
			l.Responsavel = strconv.FormatInt(*ind.ResponsavelID, 10)
		}
		if ind.Valor != nil {
			l.Valor = *ind.Valor
		}
		linhas = append(linhas, l)
	}
	return gocsv.MarshalCSV(&linhas, escritorCSV(w))
}
