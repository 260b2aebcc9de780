package painel

import (
	"context"
	"errors"
	"sync"

	"github.com/gestaozabele/indicadores/internal/api"
	"github.com/gestaozabele/indicadores/internal/model"
	"github.com/gestaozabele/indicadores/internal/submissao"
)

type stubBackend struct {
	mu sync.Mutex

	usuario     *model.Usuario
	token       string
	loginErr    error
	meErr       error
	setores     []model.Setor
	indicadores map[int64][]model.Indicador
	indErr      map[int64]error
	rejeitados  []model.Draft
	rejErr      error
	pendentes   []model.Draft
	funcionario []model.Funcionario
	usuarios    []model.Usuario
	envioErr    error

	hook func(ctx context.Context)

	rascunhos      []submissao.Envio
	envios         []submissao.Envio
	chamadasInd    map[int64]int
	criados        []api.NovoIndicador
	usuariosNovos  []api.NovoUsuario
	atualizacoes   []api.UsuarioUpdate
	setoresUpd     []api.SetorUpdate
	aprovados      []int64
	rejeicoes      map[int64]string
	logouts        int
	antesIndicador func(setorID int64)
}

func novoStub() *stubBackend {
	return &stubBackend{
		indicadores: map[int64][]model.Indicador{},
		indErr:      map[int64]error{},
		chamadasInd: map[int64]int{},
		rejeicoes:   map[int64]string{},
	}
}

func (s *stubBackend) Login(ctx context.Context, email, senha string) (*model.Usuario, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	s.mu.Lock()
	s.token = "a.b.c"
	s.mu.Unlock()
	u := *s.usuario
	return &u, nil
}

func (s *stubBackend) Me(ctx context.Context) (*model.Usuario, error) {
	if s.meErr != nil {
		return nil, s.meErr
	}
	u := *s.usuario
	return &u, nil
}

func (s *stubBackend) Token(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != "", nil
}

func (s *stubBackend) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.logouts++
	return nil
}

func (s *stubBackend) OnUnauthorized(fn func(ctx context.Context)) { s.hook = fn }

func (s *stubBackend) ListarSetores(ctx context.Context) ([]model.Setor, error) {
	return s.setores, nil
}

func (s *stubBackend) CriarSetor(ctx context.Context, nome string) error { return nil }

func (s *stubBackend) AtualizarSetor(ctx context.Context, id int64, upd api.SetorUpdate) error {
	s.setoresUpd = append(s.setoresUpd, upd)
	return nil
}

func (s *stubBackend) ListarIndicadores(ctx context.Context, setorID int64) ([]model.Indicador, error) {
	if s.antesIndicador != nil {
		s.antesIndicador(setorID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chamadasInd[setorID]++
	if err := s.indErr[setorID]; err != nil {
		return nil, err
	}
	return copiarIndicadores(s.indicadores[setorID]), nil
}

func (s *stubBackend) CriarIndicador(ctx context.Context, ind api.NovoIndicador) error {
	s.criados = append(s.criados, ind)
	return nil
}

func (s *stubBackend) AtualizarIndicador(ctx context.Context, id int64, upd api.IndicadorUpdate) error {
	return nil
}

func (s *stubBackend) ListarUsuarios(ctx context.Context) ([]model.Usuario, error) {
	return s.usuarios, nil
}

func (s *stubBackend) CriarUsuario(ctx context.Context, u api.NovoUsuario) error {
	s.usuariosNovos = append(s.usuariosNovos, u)
	return nil
}

func (s *stubBackend) AtualizarUsuario(ctx context.Context, id int64, upd api.UsuarioUpdate) error {
	s.atualizacoes = append(s.atualizacoes, upd)
	return nil
}

func (s *stubBackend) RedefinirSenha(ctx context.Context, id int64, senha string) error { return nil }

func (s *stubBackend) SalvarRascunho(ctx context.Context, envio submissao.Envio) error {
	if s.envioErr != nil {
		return s.envioErr
	}
	s.rascunhos = append(s.rascunhos, envio)
	return nil
}

func (s *stubBackend) EnviarValores(ctx context.Context, envio submissao.Envio) error {
	if s.envioErr != nil {
		return s.envioErr
	}
	s.envios = append(s.envios, envio)
	return nil
}

func (s *stubBackend) ListarRascunhosRejeitados(ctx context.Context, setorID int64) ([]model.Draft, error) {
	return s.rejeitados, s.rejErr
}

func (s *stubBackend) ListarRascunhosPendentes(ctx context.Context) ([]model.Draft, error) {
	return s.pendentes, nil
}

func (s *stubBackend) AprovarRascunho(ctx context.Context, id int64) error {
	s.aprovados = append(s.aprovados, id)
	return nil
}

func (s *stubBackend) RejeitarRascunho(ctx context.Context, id int64, motivo string) error {
	s.rejeicoes[id] = motivo
	return nil
}

func (s *stubBackend) ListarFuncionarios(ctx context.Context) ([]model.Funcionario, error) {
	return s.funcionario, nil
}

var errRede = errors.New("connection refused")

func ptr[T any](v T) *T { return &v }

func usuarioCom(perfil model.Perfil, nivel int) *model.Usuario {
	return &model.Usuario{ID: 7, Email: "u@empresa.com", Nome: "Usuária", SetorID: ptr(int64(1)), Nivel: nivel, Perfil: perfil, Ativo: true}
}

func setorPadrao(stub *stubBackend) {
	stub.setores = []model.Setor{
		{ID: 1, Nome: "Saúde", Classe: "blue", Ativo: true},
		{ID: 2, Nome: "Educação", Classe: "green", Ativo: true},
		{ID: 3, Nome: "Obras", Classe: "purple", Ativo: true},
	}
	stub.indicadores[1] = []model.Indicador{
		{ID: 10, SetorID: 1, Codigo: "IND-001", Nome: "Consultas", Tipo: "number", Ativo: true},
		{ID: 11, SetorID: 1, Codigo: "IND-002", Nome: "Internações", Tipo: "number", Unidade: ptr("un"), Ativo: true},
		{ID: 12, SetorID: 1, Codigo: "IND-003", Nome: "Competência", Tipo: "date", Ativo: true},
		{ID: 13, SetorID: 1, Codigo: "IND-004", Nome: "Orçamento", Tipo: "number", Unidade: ptr("R$"), ReadOnly: true, Ativo: true},
	}
	stub.indicadores[2] = []model.Indicador{
		{ID: 20, SetorID: 2, Codigo: "7", Nome: "Matrículas", Tipo: "number", Unidade: ptr("alunos"), Ativo: true},
	}
}
