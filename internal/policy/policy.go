// Package policy concentra as regras de visibilidade e permissão do painel.
// Todas as funções são puras e negam acesso por padrão.
package policy

import (
	"errors"

	"github.com/gestaozabele/indicadores/internal/model"
)

var (
	// ErrSemPermissao indica ação recusada antes de qualquer chamada de rede.
	ErrSemPermissao = errors.New("sem permissão para esta ação")
	// ErrSemUsuario indica ação exigindo sessão sem usuário autenticado.
	ErrSemUsuario = errors.New("usuário não autenticado")
)

// IsAdmin libera o painel administrativo (perfil GESTAO ou ADM).
func IsAdmin(u *model.Usuario) bool {
	if u == nil {
		return false
	}
	p := model.ParsePerfil(string(u.Perfil))
	return p == model.PerfilGestao || p == model.PerfilADM
}

// IsManager libera o painel do gestor; depende apenas do nível numérico.
func IsManager(u *model.Usuario) bool {
	if u == nil {
		return false
	}
	return model.NormalizarNivel(u.Nivel) >= 3
}

// Capacidades resume o que a interface deve exibir para o usuário.
type Capacidades struct {
	EditarIndicadores   bool
	Salvar              bool
	Enviar              bool
	RascunhosRejeitados bool
	Admin               bool
	Gestor              bool
	EditarSetores       bool
}

// CapacidadesDe deriva a tabela de visibilidade para o usuário.
func CapacidadesDe(u *model.Usuario) Capacidades {
	if u == nil {
		return Capacidades{}
	}
	admin := IsAdmin(u)
	return Capacidades{
		EditarIndicadores:   podeEditar(u),
		Salvar:              PodeSalvar(u) == nil,
		Enviar:              PodeEnviar(u) == nil,
		RascunhosRejeitados: model.ParsePerfil(string(u.Perfil)) == model.PerfilEditor,
		Admin:               admin,
		Gestor:              IsManager(u),
		EditarSetores:       admin,
	}
}

func podeEditar(u *model.Usuario) bool {
	if u == nil {
		return false
	}
	if model.NormalizarNivel(u.Nivel) == 1 {
		return false
	}
	return model.ParsePerfil(string(u.Perfil)) != model.PerfilLeitor
}

// InputHabilitado indica se o campo do indicador aceita edição.
func InputHabilitado(u *model.Usuario, ind model.Indicador) bool {
	if ind.ReadOnly {
		return false
	}
	return podeEditar(u)
}

// PodeSalvar autoriza gravação de rascunho.
func PodeSalvar(u *model.Usuario) error {
	if u == nil {
		return ErrSemUsuario
	}
	if !podeEditar(u) {
		return ErrSemPermissao
	}
	return nil
}

// PodeEnviar autoriza envio definitivo (LIDER, GESTAO ou ADM).
func PodeEnviar(u *model.Usuario) error {
	if u == nil {
		return ErrSemUsuario
	}
	if model.NormalizarNivel(u.Nivel) == 1 {
		return ErrSemPermissao
	}
	switch model.ParsePerfil(string(u.Perfil)) {
	case model.PerfilLider, model.PerfilGestao, model.PerfilADM:
		return nil
	}
	return ErrSemPermissao
}

// PodeAdministrar autoriza as ações do painel administrativo.
func PodeAdministrar(u *model.Usuario) error {
	if u == nil {
		return ErrSemUsuario
	}
	if !IsAdmin(u) {
		return ErrSemPermissao
	}
	return nil
}

// PodeGerir autoriza o painel do gestor.
func PodeGerir(u *model.Usuario) error {
	if u == nil {
		return ErrSemUsuario
	}
	if !IsManager(u) {
		return ErrSemPermissao
	}
	return nil
}
