package repo

import "errors"

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrDuplicado indica violação de unicidade (email, nome de setor, código).
	ErrDuplicado = errors.New("registro duplicado")
)
