package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gestaozabele/indicadores/internal/util"
)

func init() {
	DataCommand.AddCommand(&ValidarDataCommand)
	DataCommand.AddCommand(&FormatarDataCommand)
	RootCmd.AddCommand(&DataCommand)
}

var DataCommand = cobra.Command{
	Use:   "data",
	Short: "Utilitários de data",
	Long:  "Validação e máscara de datas DD/MM/AAAA, sem falar com o backend.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configurarLog("")
		return nil
	},
}

var ValidarDataCommand = cobra.Command{
	Use:   "validar <data>",
	Short: "Valida uma data",
	Long:  "Valida DD/MM/AAAA ou AAAA-MM-DD (anos de 1900 a 2100) e mostra a forma ISO.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, err := util.NormalizarData(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", util.ParaBR(iso), iso)
		return nil
	},
}

var FormatarDataCommand = cobra.Command{
	Use:   "formatar <digitos>",
	Short: "Aplica a máscara DD/MM/AAAA",
	Long:  "Aplica a máscara DD/MM/AAAA ao que foi digitado, ignorando o que não for dígito.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := util.AutoFormatarData(strings.Join(args, ""))
		if util.ValidarData(v) {
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (incompleta ou inválida)\n", v)
		return nil
	},
}
