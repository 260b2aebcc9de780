package auth

import (
	"github.com/alexedwards/argon2id"
)

// params do backend de desenvolvimento.
var params = &argon2id.Params{
	Memory:      16 * 1024,
	Iterations:  2,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// HashSenha gera um hash Argon2id (inclui os parâmetros dentro do próprio hash).
func HashSenha(senha string) (string, error) {
	return argon2id.CreateHash(senha, params)
}

// VerificarSenha compara a senha com o hash Argon2id.
func VerificarSenha(senha, hash string) (bool, error) {
	if hash == "" {
		return false, nil
	}
	return argon2id.ComparePasswordAndHash(senha, hash)
}
