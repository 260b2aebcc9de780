package service

import (
	"errors"
	"fmt"
	"net/http"
)

// Erro é uma falha de regra de negócio com o status HTTP a devolver.
type Erro struct {
	Status   int
	Mensagem string
}

func (e *Erro) Error() string {
	return e.Mensagem
}

func invalido(format string, args ...any) error {
	return &Erro{Status: http.StatusBadRequest, Mensagem: fmt.Sprintf(format, args...)}
}

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = &Erro{http.StatusUnauthorized, "Usuário/senha inválidos"}
	// ErrAccountDisabled indica conta desativada.
	ErrAccountDisabled = &Erro{http.StatusUnauthorized, "Usuario inativo"}
	// ErrForbidden indica setor fora do alcance do usuário.
	ErrForbidden = &Erro{http.StatusForbidden, "Acesso negado a este setor"}
	// ErrSemPermissaoIndicador indica indicador que o usuário não pode preencher.
	ErrSemPermissaoIndicador = &Erro{http.StatusForbidden, "Sem permissao para preencher este indicador"}
	// ErrNivelCriacao indica tentativa de criar usuário de nível igual ou superior.
	ErrNivelCriacao = &Erro{http.StatusForbidden, "Você só pode criar usuários abaixo do seu nível"}
	// ErrNivelEdicao indica tentativa de alterar usuário de nível igual ou superior.
	ErrNivelEdicao = &Erro{http.StatusForbidden, "Você só pode alterar usuários abaixo do seu nível"}

	ErrSetorExiste            = &Erro{http.StatusConflict, "Setor ja existe"}
	ErrEmailCadastrado        = &Erro{http.StatusConflict, "Email já cadastrado"}
	ErrCodigoExiste           = &Erro{http.StatusConflict, "Codigo ja existe neste setor"}
	ErrSetorNaoEncontrado     = &Erro{http.StatusNotFound, "Setor nao encontrado"}
	ErrUsuarioNaoEncontrado   = &Erro{http.StatusNotFound, "Usuário não encontrado"}
	ErrIndicadorNaoEncontrado = &Erro{http.StatusNotFound, "Indicador nao encontrado"}
	ErrDraftNaoEncontrado     = &Erro{http.StatusNotFound, "Draft nao encontrado"}
	ErrDraftNaoPendente       = &Erro{http.StatusBadRequest, "Draft nao esta pendente"}
	ErrNadaParaAtualizar      = &Erro{http.StatusBadRequest, "Nada para atualizar"}
)

// StatusDe devolve o status HTTP associado a err; erros desconhecidos valem 500.
func StatusDe(err error) int {
	var e *Erro
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
