package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/indicadores/internal/auth"
	"github.com/gestaozabele/indicadores/internal/repo"
	"github.com/gestaozabele/indicadores/internal/util"
)

type usuarioRepository interface {
	GetFuncionarioByID(ctx context.Context, id int64) (repo.Funcionario, error)
	ListFuncionarios(ctx context.Context) ([]repo.Funcionario, error)
	InsertFuncionario(ctx context.Context, f repo.Funcionario) (repo.Funcionario, error)
	UpdateFuncionario(ctx context.Context, id int64, fn func(*repo.Funcionario) error) (repo.Funcionario, error)
	GetSetor(ctx context.Context, id int64) (repo.Setor, error)
}

// UsuarioService centraliza o cadastro de funcionários feito pela gestão.
type UsuarioService struct {
	repo usuarioRepository
}

// NewUsuarioService cria nova instância do serviço.
func NewUsuarioService(r usuarioRepository) *UsuarioService {
	return &UsuarioService{repo: r}
}

// ListUsers retorna os usuários cadastrados.
func (s *UsuarioService) ListUsers(ctx context.Context) ([]repo.Funcionario, error) {
	return s.repo.ListFuncionarios(ctx)
}

// podeAtribuir diz se o ator pode criar ou manter alguém no nível informado.
// ADM (5) atribui qualquer nível; os demais só abaixo do próprio.
func podeAtribuir(ator Ator, nivel int) bool {
	if ator.Nivel >= 5 {
		return true
	}
	return nivel < ator.Nivel
}

// NovoUsuario reúne os dados de criação.
type NovoUsuario struct {
	Nome    string
	Email   string
	Senha   string
	SetorID *int64
	Nivel   int
}

// CreateUser cria um usuário ativo (senha bruta será hasheada).
func (s *UsuarioService) CreateUser(ctx context.Context, ator Ator, in NovoUsuario) (repo.Funcionario, error) {
	nome := strings.TrimSpace(in.Nome)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if nome == "" || email == "" {
		return repo.Funcionario{}, invalido("Informe nome e email")
	}
	if err := util.ValidateEmail(email); err != nil {
		return repo.Funcionario{}, invalido("Email inválido")
	}
	if err := util.ValidatePassword(in.Senha); err != nil {
		return repo.Funcionario{}, invalido("Senha fraca (min 8 caracteres, letras e numeros)")
	}
	if in.Nivel < 1 || in.Nivel > 5 {
		return repo.Funcionario{}, invalido("Nivel inválido")
	}
	if !podeAtribuir(ator, in.Nivel) {
		return repo.Funcionario{}, ErrNivelCriacao
	}
	if err := s.validarSetor(ctx, in.SetorID); err != nil {
		return repo.Funcionario{}, err
	}

	hash, err := auth.HashSenha(in.Senha)
	if err != nil {
		return repo.Funcionario{}, err
	}

	f, err := s.repo.InsertFuncionario(ctx, repo.Funcionario{
		Nome:      nome,
		Email:     email,
		SenhaHash: hash,
		SetorID:   in.SetorID,
		Nivel:     in.Nivel,
		Ativo:     true,
	})
	if errors.Is(err, repo.ErrDuplicado) {
		return repo.Funcionario{}, ErrEmailCadastrado
	}
	if err != nil {
		return repo.Funcionario{}, err
	}

	log.Info().Int64("user_id", f.ID).Int("nivel", f.Nivel).Int64("por", ator.ID).Msg("usuário criado")
	return f, nil
}

// UsuarioUpdate descreve campos opcionais; LimparSetor remove o setor.
type UsuarioUpdate struct {
	Nome        *string
	Email       *string
	SetorID     *int64
	LimparSetor bool
	Nivel       *int
	Ativo       *bool
}

func (u UsuarioUpdate) vazio() bool {
	return u.Nome == nil && u.Email == nil && u.SetorID == nil && !u.LimparSetor &&
		u.Nivel == nil && u.Ativo == nil
}

// UpdateUser altera dados, nível ou situação do usuário.
func (s *UsuarioService) UpdateUser(ctx context.Context, ator Ator, id int64, upd UsuarioUpdate) (repo.Funcionario, error) {
	if upd.vazio() {
		return repo.Funcionario{}, ErrNadaParaAtualizar
	}
	if _, err := s.alvoEditavel(ctx, ator, id); err != nil {
		return repo.Funcionario{}, err
	}
	if upd.Nivel != nil {
		if *upd.Nivel < 1 || *upd.Nivel > 5 {
			return repo.Funcionario{}, invalido("Nivel inválido")
		}
		if !podeAtribuir(ator, *upd.Nivel) {
			return repo.Funcionario{}, ErrNivelEdicao
		}
	}
	if upd.Nome != nil && strings.TrimSpace(*upd.Nome) == "" {
		return repo.Funcionario{}, invalido("Informe nome e email")
	}
	var email string
	if upd.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*upd.Email))
		if err := util.ValidateEmail(email); err != nil {
			return repo.Funcionario{}, invalido("Email inválido")
		}
	}
	if !upd.LimparSetor {
		if err := s.validarSetor(ctx, upd.SetorID); err != nil {
			return repo.Funcionario{}, err
		}
	}

	f, err := s.repo.UpdateFuncionario(ctx, id, func(f *repo.Funcionario) error {
		if upd.Nome != nil {
			f.Nome = strings.TrimSpace(*upd.Nome)
		}
		if upd.Email != nil {
			f.Email = email
		}
		switch {
		case upd.LimparSetor:
			f.SetorID = nil
		case upd.SetorID != nil:
			f.SetorID = upd.SetorID
		}
		if upd.Nivel != nil {
			f.Nivel = *upd.Nivel
		}
		if upd.Ativo != nil {
			f.Ativo = *upd.Ativo
		}
		return nil
	})
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return repo.Funcionario{}, ErrUsuarioNaoEncontrado
	case errors.Is(err, repo.ErrDuplicado):
		return repo.Funcionario{}, ErrEmailCadastrado
	case err != nil:
		return repo.Funcionario{}, err
	}

	log.Info().Int64("user_id", id).Int64("por", ator.ID).Msg("usuário atualizado")
	return f, nil
}

// ResetPassword troca a senha do usuário; segue as mesmas regras de nível da edição.
func (s *UsuarioService) ResetPassword(ctx context.Context, ator Ator, id int64, senha string) error {
	if err := util.ValidatePassword(senha); err != nil {
		return invalido("Senha fraca (min 8 caracteres, letras e numeros)")
	}
	if _, err := s.alvoEditavel(ctx, ator, id); err != nil {
		return err
	}
	hash, err := auth.HashSenha(senha)
	if err != nil {
		return err
	}
	if _, err := s.repo.UpdateFuncionario(ctx, id, func(f *repo.Funcionario) error {
		f.SenhaHash = hash
		return nil
	}); err != nil {
		return err
	}

	log.Info().Int64("user_id", id).Int64("por", ator.ID).Msg("senha redefinida")
	return nil
}

func (s *UsuarioService) alvoEditavel(ctx context.Context, ator Ator, id int64) (repo.Funcionario, error) {
	alvo, err := s.repo.GetFuncionarioByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Funcionario{}, ErrUsuarioNaoEncontrado
		}
		return repo.Funcionario{}, err
	}
	if alvo.ID != ator.ID && !podeAtribuir(ator, alvo.Nivel) {
		return repo.Funcionario{}, ErrNivelEdicao
	}
	return alvo, nil
}

func (s *UsuarioService) validarSetor(ctx context.Context, setorID *int64) error {
	if setorID == nil {
		return nil
	}
	if _, err := s.repo.GetSetor(ctx, *setorID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrSetorNaoEncontrado
		}
		return err
	}
	return nil
}

// SeedAdmin garante o administrador inicial do backend de desenvolvimento.
func (s *UsuarioService) SeedAdmin(ctx context.Context, nome, email, senha string) (repo.Funcionario, error) {
	hash, err := auth.HashSenha(senha)
	if err != nil {
		return repo.Funcionario{}, err
	}
	f, err := s.repo.InsertFuncionario(ctx, repo.Funcionario{
		Nome:      nome,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		SenhaHash: hash,
		Nivel:     5,
		Ativo:     true,
	})
	if errors.Is(err, repo.ErrDuplicado) {
		return repo.Funcionario{}, nil
	}
	return f, err
}
