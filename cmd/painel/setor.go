package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gestaozabele/indicadores/internal/model"
	"github.com/gestaozabele/indicadores/internal/painel"
)

var (
	busca       string
	valores     []string
	periodo     string
	arquivoCSV  string
	exportarCSV bool
)

func init() {
	SetoresCommand.Flags().StringVar(&busca, "busca", "", "filtra pelo nome do setor")

	for _, c := range []*cobra.Command{&SalvarSetorCommand, &EnviarSetorCommand} {
		c.Flags().StringArrayVar(&valores, "valor", nil, "valor de indicador no formato <id|codigo>=<valor>")
		c.Flags().StringVar(&periodo, "periodo", "", "data do período (DD/MM/AAAA ou AAAA-MM-DD)")
		c.Flags().StringVar(&arquivoCSV, "csv", "", "grava o histórico da submissão neste arquivo")
	}
	AbrirSetorCommand.Flags().BoolVar(&exportarCSV, "csv", false, "escreve os indicadores em CSV")

	SetorCommand.AddCommand(&AbrirSetorCommand)
	SetorCommand.AddCommand(&SalvarSetorCommand)
	SetorCommand.AddCommand(&EnviarSetorCommand)
	RootCmd.AddCommand(&SetoresCommand)
	RootCmd.AddCommand(&SetorCommand)
}

var SetoresCommand = cobra.Command{
	Use:   "setores",
	Short: "Lista os setores visíveis",
	Long:  "Lista os setores visíveis com a quantidade de indicadores de cada um.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sessao(cmd.Context()); err != nil {
			return err
		}
		resumos, err := controlador.CarregarSetores(cmd.Context(), busca)
		if err != nil {
			return err
		}
		if len(resumos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nenhum setor encontrado")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSETOR\tINDICADORES\tCOR")
		for _, r := range resumos {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", r.Setor.ID, r.Setor.Nome, r.Indicadores, r.Setor.Classe)
		}
		return w.Flush()
	},
}

var SetorCommand = cobra.Command{
	Use:   "setor",
	Short: "Formulário de um setor",
	Long:  "Abre o formulário de um setor, salva rascunhos ou envia valores definitivos.",
}

var AbrirSetorCommand = cobra.Command{
	Use:   "abrir <setorId>",
	Short: "Mostra o formulário do setor",
	Long:  "Mostra os indicadores do setor, quais são editáveis e o controle de período.",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := argID(args, "setorId")
		if err != nil {
			return err
		}
		visao, err := abrirSetor(cmd.Context(), id)
		if err != nil {
			return err
		}
		if exportarCSV {
			_, inds := controlador.Estado().SetorAberto()
			return painel.ExportarIndicadoresCSV(cmd.OutOrStdout(), inds)
		}
		return imprimirVisao(cmd.OutOrStdout(), visao)
	},
}

var SalvarSetorCommand = cobra.Command{
	Use:   "salvar <setorId>",
	Short: "Salva os valores como rascunho",
	Long:  "Preenche os valores informados e salva como rascunho. EDITOR gera rascunho aguardando aprovação.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submeter(cmd, args, controlador.SalvarRascunho)
	},
}

var EnviarSetorCommand = cobra.Command{
	Use:   "enviar <setorId>",
	Short: "Envia os valores definitivos",
	Long:  "Preenche os valores informados e envia como definitivos (LIDER, GESTAO ou ADM).",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submeter(cmd, args, controlador.EnviarFinal)
	},
}

func abrirSetor(ctx context.Context, id int64) (*painel.VisaoSetor, error) {
	if err := sessao(ctx); err != nil {
		return nil, err
	}
	if _, err := controlador.CarregarSetores(ctx, ""); err != nil {
		return nil, err
	}
	return controlador.AbrirSetor(ctx, id)
}

func submeter(cmd *cobra.Command, args []string, acao func(context.Context) (*model.Registro, error)) error {
	id, err := argID(args, "setorId")
	if err != nil {
		return err
	}
	if _, err := abrirSetor(cmd.Context(), id); err != nil {
		return err
	}

	for _, v := range valores {
		indID, valor, err := lerValor(v)
		if err != nil {
			return err
		}
		if err := controlador.AtualizarIndicador(indID, valor); err != nil {
			return fmt.Errorf("indicador %d: %w", indID, err)
		}
	}
	if periodo != "" {
		if err := controlador.AtualizarPeriodo(periodo); err != nil {
			return fmt.Errorf("período: %w", err)
		}
	}

	reg, err := acao(cmd.Context())
	if reg != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", reg.Setor, reg.Status, painel.BadgeDe(reg.Status))
		if arquivoCSV != "" {
			if errCSV := gravarHistorico(arquivoCSV); errCSV != nil {
				return errCSV
			}
		}
	}
	return err
}

// lerValor interpreta <id|codigo>=<valor> contra o setor aberto.
func lerValor(par string) (int64, string, error) {
	chave, valor, ok := strings.Cut(par, "=")
	chave = strings.TrimSpace(chave)
	if !ok || chave == "" {
		return 0, "", fmt.Errorf("valor inválido %q: use <id|codigo>=<valor>", par)
	}
	if id, err := strconv.ParseInt(chave, 10, 64); err == nil {
		return id, valor, nil
	}
	_, inds := controlador.Estado().SetorAberto()
	for _, ind := range inds {
		if strings.EqualFold(ind.Codigo, chave) {
			return ind.ID, valor, nil
		}
	}
	return 0, "", fmt.Errorf("indicador %q não encontrado no setor", chave)
}

func gravarHistorico(caminho string) error {
	f, err := os.Create(caminho)
	if err != nil {
		return err
	}
	if err := controlador.ExportarHistoricoCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func imprimirVisao(out io.Writer, v *painel.VisaoSetor) error {
	fmt.Fprintf(out, "%s (%d de %d editáveis)\n", v.Setor.Nome, v.Editaveis(), len(v.Campos))

	w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCÓDIGO\tINDICADOR\tUNIDADE\tMETA\tVALOR\tEDITÁVEL")
	for _, c := range v.Campos {
		ind := c.Indicador
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", ind.ID, ind.Codigo, ind.Nome,
			texto(ind.Unidade), meta(ind.Meta), texto(ind.Valor), simNao(c.Editavel))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	p := v.Periodo
	fmt.Fprintf(out, "%s: %s (editável: %s)\n", p.Rotulo, valorOuTraco(p.Valor), simNao(p.Editavel))

	if v.MostrarRejeitados && len(v.Rejeitados) > 0 {
		fmt.Fprintln(out, "\nRascunhos recusados:")
		w = tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tINDICADOR\tPERÍODO\tVALOR\tMOTIVO")
		for _, d := range v.Rejeitados {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", d.ID, d.IndicadorNome, d.Periodo, d.Valor, d.RejeitadoMotivo)
		}
		return w.Flush()
	}
	return nil
}

func texto(s *string) string {
	if s == nil {
		return "-"
	}
	return valorOuTraco(*s)
}

func valorOuTraco(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func meta(m *float64) string {
	if m == nil {
		return "-"
	}
	return strings.Replace(strconv.FormatFloat(*m, 'f', -1, 64), ".", ",", 1)
}
