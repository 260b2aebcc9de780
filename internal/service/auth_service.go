package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/indicadores/internal/auth"
	"github.com/gestaozabele/indicadores/internal/repo"
)

type authRepository interface {
	GetFuncionarioByEmail(ctx context.Context, email string) (repo.Funcionario, error)
	GetFuncionarioByID(ctx context.Context, id int64) (repo.Funcionario, error)
}

// AuthService concentra regras de autenticação.
type AuthService struct {
	repo authRepository
	jwt  *auth.JWTManager
}

// NewAuthService cria novo serviço.
func NewAuthService(r authRepository, jwtMgr *auth.JWTManager) *AuthService {
	return &AuthService{repo: r, jwt: jwtMgr}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// Ator é o usuário autenticado de uma requisição, lido do token.
type Ator struct {
	ID      int64
	Nivel   int
	SetorID *int64
}

// Gestao indica nível de gestão (4) ou administração (5).
func (a Ator) Gestao() bool {
	return a.Nivel >= 4
}

// DoSetor indica se setorID é o setor próprio do ator.
func (a Ator) DoSetor(setorID int64) bool {
	return a.SetorID != nil && *a.SetorID == setorID
}

// AtorDe converte claims validadas em Ator.
func AtorDe(c *auth.Claims) (Ator, error) {
	id, err := c.UserID()
	if err != nil {
		return Ator{}, err
	}
	return Ator{ID: id, Nivel: c.Nivel, SetorID: c.SetorID}, nil
}

// LoginResult representa retorno do login.
type LoginResult struct {
	Token   string
	Usuario repo.Funcionario
}

// Login autentica funcionário por email e senha.
func (s *AuthService) Login(ctx context.Context, email, senha string) (*LoginResult, error) {
	user, err := s.repo.GetFuncionarioByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login: usuário não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.VerificarSenha(senha, user.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verify password failed")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Int64("user_id", user.ID).Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}
	if !user.Ativo {
		return nil, ErrAccountDisabled
	}

	token, err := s.jwt.GenerateAccessToken(auth.TokenSubject{
		ID:      user.ID,
		Email:   user.Email,
		Nome:    user.Nome,
		SetorID: user.SetorID,
		Nivel:   user.Nivel,
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", user.ID).Int("nivel", user.Nivel).Msg("login efetuado")
	return &LoginResult{Token: token, Usuario: user}, nil
}

// Me recarrega o funcionário do token; inativo ou removido é recusado.
func (s *AuthService) Me(ctx context.Context, ator Ator) (repo.Funcionario, error) {
	user, err := s.repo.GetFuncionarioByID(ctx, ator.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Funcionario{}, ErrAccountDisabled
		}
		return repo.Funcionario{}, err
	}
	if !user.Ativo {
		return repo.Funcionario{}, ErrAccountDisabled
	}
	return user, nil
}
