package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gestaozabele/indicadores/internal/model"
)

var motivo string

func init() {
	RecusarCommand.Flags().StringVar(&motivo, "motivo", "", "motivo da recusa (obrigatório)")

	GestorCommand.AddCommand(&PainelGestorCommand)
	GestorCommand.AddCommand(&AprovarCommand)
	GestorCommand.AddCommand(&RecusarCommand)
	RootCmd.AddCommand(&GestorCommand)
}

var GestorCommand = cobra.Command{
	Use:   "gestor",
	Short: "Aprovação de rascunhos",
	Long:  "Funcionários do setor e rascunhos aguardando aprovação (LIDER, GESTAO ou ADM).",
}

var PainelGestorCommand = cobra.Command{
	Use:   "painel",
	Short: "Lista funcionários e rascunhos pendentes",
	Long:  "Lista funcionários e rascunhos pendentes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sessao(cmd.Context()); err != nil {
			return err
		}
		visao, err := controlador.PainelGestor(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Funcionários (%d)\n", len(visao.Funcionarios))
		w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNOME\tEMAIL\tNÍVEL\tATIVO")
		for _, f := range visao.Funcionarios {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", f.ID, f.Nome, f.Email, model.RotuloNivel(f.Nivel), simNao(f.Ativo))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(out, "\nPendentes (%d)\n", len(visao.Pendentes))
		if len(visao.Pendentes) == 0 {
			return nil
		}
		w = tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSETOR\tINDICADOR\tFUNCIONÁRIO\tPERÍODO\tVALOR")
		for _, d := range visao.Pendentes {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", d.ID, d.SetorNome, d.IndicadorNome, d.FuncionarioNome, d.Periodo, d.Valor)
		}
		return w.Flush()
	},
}

var AprovarCommand = cobra.Command{
	Use:   "aprovar <draftId>",
	Short: "Aprova um rascunho",
	Long:  "Aprova o rascunho e grava o valor definitivo.",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := argID(args, "draftId")
		if err != nil {
			return err
		}
		if err := sessao(cmd.Context()); err != nil {
			return err
		}
		if err := controlador.AprovarRascunho(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Rascunho %d aprovado\n", id)
		return nil
	},
}

var RecusarCommand = cobra.Command{
	Use:   "recusar <draftId>",
	Short: "Recusa um rascunho",
	Long:  "Recusa o rascunho informando o motivo.",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := argID(args, "draftId")
		if err != nil {
			return err
		}
		if err := sessao(cmd.Context()); err != nil {
			return err
		}
		if err := controlador.RejeitarRascunho(cmd.Context(), id, motivo); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Rascunho %d recusado\n", id)
		return nil
	},
}
