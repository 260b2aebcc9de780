package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gestaozabele/indicadores/internal/model"
	"github.com/gestaozabele/indicadores/internal/policy"
)

var (
	loginEmail string
	loginSenha string
)

func init() {
	LoginCommand.Flags().StringVar(&loginEmail, "email", "", "email de acesso")
	LoginCommand.Flags().StringVar(&loginSenha, "senha", "", "senha (padrão PAINEL_SENHA)")

	RootCmd.AddCommand(&LoginCommand)
	RootCmd.AddCommand(&LogoutCommand)
	RootCmd.AddCommand(&MeCommand)
}

var LoginCommand = cobra.Command{
	Use:   "login",
	Short: "Autentica e guarda o token da sessão",
	Long:  "Autentica no backend e guarda o token no store configurado (file, redis ou memory).",
	RunE: func(cmd *cobra.Command, args []string) error {
		senha := loginSenha
		if senha == "" {
			senha = os.Getenv("PAINEL_SENHA")
		}
		u, err := controlador.Login(cmd.Context(), loginEmail, senha)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Bem-vindo, %s (%s)\n", u.Nome, model.RotuloNivel(u.Nivel))
		return nil
	},
}

var LogoutCommand = cobra.Command{
	Use:   "logout",
	Short: "Encerra a sessão",
	Long:  "Apaga o token salvo.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := controlador.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Sessão encerrada")
		return nil
	},
}

var MeCommand = cobra.Command{
	Use:   "me",
	Short: "Mostra o usuário da sessão",
	Long:  "Valida o token salvo e mostra o usuário e o que ele pode fazer.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sessao(cmd.Context()); err != nil {
			return err
		}
		u := controlador.Estado().Usuario()
		caps := policy.CapacidadesDe(u)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintf(w, "Nome\t%s\n", u.Nome)
		fmt.Fprintf(w, "Email\t%s\n", u.Email)
		fmt.Fprintf(w, "Nível\t%s\n", model.RotuloNivel(u.Nivel))
		if u.SetorID != nil {
			fmt.Fprintf(w, "Setor\t%d\n", *u.SetorID)
		}
		fmt.Fprintf(w, "Salvar rascunho\t%s\n", simNao(caps.Salvar))
		fmt.Fprintf(w, "Enviar final\t%s\n", simNao(caps.Enviar))
		fmt.Fprintf(w, "Painel do gestor\t%s\n", simNao(caps.Gestor))
		fmt.Fprintf(w, "Administração\t%s\n", simNao(caps.Admin))
		return w.Flush()
	},
}

func simNao(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}
