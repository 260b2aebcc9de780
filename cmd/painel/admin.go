package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gestaozabele/indicadores/internal/api"
	"github.com/gestaozabele/indicadores/internal/model"
	"github.com/gestaozabele/indicadores/internal/painel"
)

// flags de administração
var (
	adminSetor   int64
	adminCSV     bool
	nome         string
	email        string
	senha        string
	nivel        int
	setorUsuario int64
	semSetor     bool

	codigo        string
	tipo          string
	unidade       string
	metaIndicador float64
	responsavel   int64
	semResp       bool
	ativo         bool
)

func init() {
	AdminIndicadoresCommand.Flags().Int64Var(&adminSetor, "setor", 0, "id do setor")
	AdminIndicadoresCommand.Flags().BoolVar(&adminCSV, "csv", false, "escreve os indicadores em CSV")

	CriarSetorCommand.Flags().StringVar(&nome, "nome", "", "nome do setor")
	AtualizarSetorCommand.Flags().StringVar(&nome, "nome", "", "novo nome do setor")

	for _, c := range []*cobra.Command{&CriarUsuarioCommand, &AtualizarUsuarioCommand} {
		c.Flags().StringVar(&nome, "nome", "", "nome completo")
		c.Flags().StringVar(&email, "email", "", "email de acesso")
		c.Flags().IntVar(&nivel, "nivel", 1, "nível de acesso (1 a 5)")
		c.Flags().Int64Var(&setorUsuario, "setor", 0, "id do setor")
	}
	CriarUsuarioCommand.Flags().StringVar(&senha, "senha", "", "senha inicial")
	AtualizarUsuarioCommand.Flags().BoolVar(&semSetor, "sem-setor", false, "remove o setor do usuário")
	SenhaUsuarioCommand.Flags().StringVar(&senha, "senha", "", "nova senha")

	for _, c := range []*cobra.Command{&CriarIndicadorCommand, &AtualizarIndicadorCommand} {
		c.Flags().Int64Var(&adminSetor, "setor", 0, "id do setor")
		c.Flags().StringVar(&nome, "nome", "", "nome do indicador")
		c.Flags().StringVar(&tipo, "tipo", "", "tipo (number, date, ...)")
		c.Flags().StringVar(&unidade, "unidade", "", "unidade de medida")
		c.Flags().Float64Var(&metaIndicador, "meta", 0, "meta numérica")
		c.Flags().Int64Var(&responsavel, "responsavel", 0, "id do funcionário responsável")
	}
	CriarIndicadorCommand.Flags().StringVar(&codigo, "codigo", "", "código (vazio usa o próximo sequencial)")
	AtualizarIndicadorCommand.Flags().BoolVar(&semResp, "sem-responsavel", false, "remove o responsável")
	AtualizarIndicadorCommand.Flags().BoolVar(&ativo, "ativo", true, "ativa ou inativa o indicador")
	CodigoIndicadorCommand.Flags().Int64Var(&adminSetor, "setor", 0, "id do setor")

	AdminSetorCommand.AddCommand(&CriarSetorCommand)
	AdminSetorCommand.AddCommand(&AtualizarSetorCommand)
	AdminSetorCommand.AddCommand(&InativarSetorCommand)

	AdminUsuarioCommand.AddCommand(&CriarUsuarioCommand)
	AdminUsuarioCommand.AddCommand(&AtualizarUsuarioCommand)
	AdminUsuarioCommand.AddCommand(&BloquearUsuarioCommand)
	AdminUsuarioCommand.AddCommand(&DesbloquearUsuarioCommand)
	AdminUsuarioCommand.AddCommand(&SenhaUsuarioCommand)

	AdminIndicadorCommand.AddCommand(&CriarIndicadorCommand)
	AdminIndicadorCommand.AddCommand(&AtualizarIndicadorCommand)
	AdminIndicadorCommand.AddCommand(&CodigoIndicadorCommand)

	AdminCommand.AddCommand(&AdminSetoresCommand)
	AdminCommand.AddCommand(&AdminUsuariosCommand)
	AdminCommand.AddCommand(&AdminIndicadoresCommand)
	AdminCommand.AddCommand(&AdminSetorCommand)
	AdminCommand.AddCommand(&AdminUsuarioCommand)
	AdminCommand.AddCommand(&AdminIndicadorCommand)
	RootCmd.AddCommand(&AdminCommand)
}

var AdminCommand = cobra.Command{
	Use:   "admin",
	Short: "Administração de setores, usuários e indicadores",
	Long:  "Administração de setores, usuários e indicadores (GESTAO ou ADM).",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := RootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return sessao(cmd.Context())
	},
}

var AdminSetoresCommand = cobra.Command{
	Use:   "setores",
	Short: "Lista setores",
	Long:  "Lista setores",
	RunE: func(cmd *cobra.Command, args []string) error {
		visao, err := controlador.PainelAdmin(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSETOR\tATIVO")
		for _, s := range visao.Setores {
			fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID, s.Nome, simNao(s.Ativo))
		}
		return w.Flush()
	},
}

var AdminUsuariosCommand = cobra.Command{
	Use:   "usuarios",
	Short: "Lista usuários",
	Long:  "Lista usuários e os níveis que a sessão pode atribuir.",
	RunE: func(cmd *cobra.Command, args []string) error {
		visao, err := controlador.PainelAdmin(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNOME\tEMAIL\tSETOR\tNÍVEL\tATIVO")
		for _, u := range visao.Usuarios {
			setor := "-"
			if u.SetorID != nil {
				setor = fmt.Sprint(*u.SetorID)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Nome, u.Email, setor, model.RotuloNivel(u.Nivel), simNao(u.Ativo))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		rotulos := make([]string, 0, len(visao.Niveis))
		for _, n := range visao.Niveis {
			rotulos = append(rotulos, n.Rotulo)
		}
		fmt.Fprintf(out, "\nNíveis atribuíveis: %s\n", strings.Join(rotulos, ", "))
		return nil
	},
}

var AdminIndicadoresCommand = cobra.Command{
	Use:   "indicadores",
	Short: "Lista indicadores do setor",
	Long:  "Lista indicadores do setor, com unidades conhecidas e o próximo código.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminSetor <= 0 {
			return errors.New("informe --setor")
		}
		inds, err := controlador.IndicadoresAdmin(cmd.Context(), adminSetor)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if adminCSV {
			return painel.ExportarIndicadoresCSV(out, inds)
		}

		w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCÓDIGO\tINDICADOR\tTIPO\tUNIDADE\tMETA\tRESPONSÁVEL")
		for _, ind := range inds {
			resp := "-"
			if ind.ResponsavelID != nil {
				resp = fmt.Sprint(*ind.ResponsavelID)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", ind.ID, ind.Codigo, ind.Nome, ind.Tipo,
				texto(ind.Unidade), meta(ind.Meta), resp)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		unidades, err := controlador.OpcoesUnidade(cmd.Context(), adminSetor)
		if err != nil {
			return err
		}
		proximo, err := controlador.SugerirCodigo(cmd.Context(), adminSetor, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nUnidades: %s\nPróximo código: %s\n", strings.Join(unidades, ", "), proximo)
		return nil
	},
}

var AdminSetorCommand = cobra.Command{
	Use:   "setor",
	Short: "Cria, renomeia ou inativa setores",
	Long:  "Cria, renomeia ou inativa setores",
}

var CriarSetorCommand = cobra.Command{
	Use:   "criar",
	Short: "Cria um setor",
	Long:  "Cria um setor",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := controlador.CriarSetor(cmd.Context(), nome); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Setor %q criado\n", strings.TrimSpace(nome))
		return nil
	},
}

var AtualizarSetorCommand = cobra.Command{
	Use:   "atualizar <setorId>",
	Short: "Renomeia um setor",
	Long:  "Renomeia um setor",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := argID(args, "setorId")
		if err != nil {
			return err
		}
		if err := controlador.RenomearSetor(cmd.Context(), id, nome); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Setor %d atualizado\n", id)
		return nil
	},
}

var InativarSetorCommand = cobra.Command{
	Use:   "inativar <setorId>",
	Short: "Inativa um setor",
	Long:  "Inativa um setor; ele deixa de aparecer nas listas.",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := argID(args, "setorId")
		if err != nil {
			return err
		}
		if err := controlador.DefinirSetorAtivo(cmd.Context(), id, false); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Setor %d inativado\n", id)
		return nil
	},
}

var AdminUsuarioCommand = cobra.Command{
	Use:   "usuario",
	Short: "Cadastro de usuários",
	Long:  "Cadastro de usuários",
}

var CriarUsuarioCommand = cobra.Command{
	Use:   "criar",
	Short: "Cria um usuário",
	Long:  "Cria um usuário ativo. Só é possível atribuir níveis abaixo do próprio (ADM atribui qualquer um).",
	RunE: func(cmd *cobra.Command, args []string) error {
		novo := api.NovoUsuario{Nome: nome, Email: email, Senha: senha, Nivel: nivel}
		if setorUsuario > 0 {
			novo.SetorID = &setorUsuario
		}
		if err := controlador.CriarUsuario(cmd.Context(), novo); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Usuário %s criado\n", strings.ToLower(strings.TrimSpace(email)))
		return nil
	},
}

var AtualizarUsuarioCommand = cobra.Command{
	Use:   "atualizar <usuarioId>",
	Short: "Atualiza um usuário",
	Long:  "Atualiza os campos informados; os demais não mudam.",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := argID(args, "usuarioId")
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		var upd api.UsuarioUpdate
		if flags.Changed("nome") {
			upd.Nome = &nome
		}
		if flags.Changed("email") {
			upd.Email = &email
		}
		if flags.Changed("nivel") {
			upd.Nivel = &nivel
		}
		switch {
		case semSetor:
			upd.LimparSetor = true
		case flags.Changed("setor"):
			upd.SetorID = &setorUsuario
		}
		if err := controlador.AtualizarUsuario(cmd.Context(), id, upd); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Usuário %d atualizado\n", id)
		return nil
	},
}

var BloquearUsuarioCommand = cobra.Command{
	Use:   "bloquear <usuarioId>",
	Short: "Bloqueia um usuário",
	Long:  "Bloqueia um usuário",
	RunE: func(cmd *cobra.Command, args []string) error {
		return definirAtivo(cmd, args, false)
	},
}

var DesbloquearUsuarioCommand = cobra.Command{
	Use:   "desbloquear <usuarioId>",
	Short: "Desbloqueia um usuário",
	Long:  "Desbloqueia um usuário",
	RunE: func(cmd *cobra.Command, args []string) error {
		return definirAtivo(cmd, args, true)
	},
}

func definirAtivo(cmd *cobra.Command, args []string, ativo bool) error {
	id, err := argID(args, "usuarioId")
	if err != nil {
		return err
	}
	if err := controlador.DefinirUsuarioAtivo(cmd.Context(), id, ativo); err != nil {
		return err
	}
	situacao := "bloqueado"
	if ativo {
		situacao = "desbloqueado"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Usuário %d %s\n", id, situacao)
	return nil
}

var SenhaUsuarioCommand = cobra.Command{
	Use:   "senha <usuarioId>",
	Short: "Redefine a senha",
	Long:  "Redefine a senha do usuário (mínimo 8 caracteres, com letras e números).",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := argID(args, "usuarioId")
		if err != nil {
			return err
		}
		if err := controlador.RedefinirSenha(cmd.Context(), id, senha); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Senha do usuário %d redefinida\n", id)
		return nil
	},
}

var AdminIndicadorCommand = cobra.Command{
	Use:   "indicador",
	Short: "Definição de indicadores",
	Long:  "Definição de indicadores",
}

var CriarIndicadorCommand = cobra.Command{
	Use:   "criar",
	Short: "Cria um indicador",
	Long:  "Cria um indicador no setor; sem --codigo usa o próximo código sequencial.",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		novo := api.NovoIndicador{SetorID: adminSetor, Codigo: codigo, Nome: nome, Tipo: tipo}
		if flags.Changed("unidade") {
			novo.Unidade = &unidade
		}
		if flags.Changed("meta") {
			novo.Meta = &metaIndicador
		}
		if flags.Changed("responsavel") {
			novo.ResponsavelID = &responsavel
		}
		if err := controlador.CriarIndicador(cmd.Context(), novo); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indicador %q criado\n", strings.TrimSpace(nome))
		return nil
	},
}

var AtualizarIndicadorCommand = cobra.Command{
	Use:   "atualizar <indicadorId>",
	Short: "Atualiza um indicador",
	Long:  "Atualiza os campos informados do indicador; os demais não mudam.",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := argID(args, "indicadorId")
		if err != nil {
			return err
		}
		if adminSetor <= 0 {
			return errors.New("informe --setor")
		}
		flags := cmd.Flags()
		var upd api.IndicadorUpdate
		if flags.Changed("nome") {
			upd.Nome = &nome
		}
		if flags.Changed("tipo") {
			upd.Tipo = &tipo
		}
		if flags.Changed("unidade") {
			upd.Unidade = &unidade
		}
		if flags.Changed("meta") {
			upd.Meta = &metaIndicador
		}
		if flags.Changed("ativo") {
			upd.Ativo = &ativo
		}
		switch {
		case semResp:
			upd.LimparResponsavel = true
		case flags.Changed("responsavel"):
			upd.ResponsavelID = &responsavel
		}
		if err := controlador.AtualizarDefinicaoIndicador(cmd.Context(), adminSetor, id, upd); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indicador %d atualizado\n", id)
		return nil
	},
}

var CodigoIndicadorCommand = cobra.Command{
	Use:   "codigo",
	Short: "Sugere o próximo código do setor",
	Long:  "Sugere o próximo código sequencial do setor (maior número encontrado + 1).",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminSetor <= 0 {
			return errors.New("informe --setor")
		}
		c, err := controlador.SugerirCodigo(cmd.Context(), adminSetor, true)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), c)
		return nil
	},
}
