package painel

import (
	"sync"

	"github.com/gestaozabele/indicadores/internal/model"
)

const limiteHistorico = 50

// Estado guarda a sessão corrente do painel. Toda mutação passa pelos métodos.
type Estado struct {
	mu sync.RWMutex

	usuario     *model.Usuario
	setores     []model.Setor
	setorAberto *model.Setor
	indicadores []model.Indicador
	periodo     string
	ticket      uint64
	historico   []model.Registro
}

// NovoEstado cria um estado vazio.
func NovoEstado() *Estado {
	return &Estado{}
}

// Reset limpa usuário, setores e o setor aberto; o histórico local também é descartado.
func (e *Estado) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.usuario = nil
	e.setores = nil
	e.setorAberto = nil
	e.indicadores = nil
	e.periodo = ""
	e.historico = nil
	e.ticket++
}

// Usuario devolve uma cópia do usuário autenticado.
func (e *Estado) Usuario() *model.Usuario {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.usuario == nil {
		return nil
	}
	u := *e.usuario
	return &u
}

func (e *Estado) definirUsuario(u *model.Usuario) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if u == nil {
		e.usuario = nil
		return
	}
	cp := *u
	e.usuario = &cp
}

func (e *Estado) definirSetores(setores []model.Setor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setores = append([]model.Setor(nil), setores...)
}

// Setores devolve a última lista carregada.
func (e *Estado) Setores() []model.Setor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]model.Setor(nil), e.setores...)
}

func (e *Estado) setorPorID(id int64) (model.Setor, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, s := range e.setores {
		if s.ID == id {
			return s, true
		}
	}
	return model.Setor{}, false
}

// navegar invalida respostas de navegações anteriores e devolve o novo ticket.
func (e *Estado) navegar() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ticket++
	return e.ticket
}

// abrirSetor só aplica o resultado se nenhuma navegação ocorreu depois de ticket.
func (e *Estado) abrirSetor(ticket uint64, setor model.Setor, indicadores []model.Indicador) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ticket != e.ticket || e.usuario == nil {
		return false
	}
	s := setor
	e.setorAberto = &s
	e.indicadores = copiarIndicadores(indicadores)
	e.periodo = ""
	return true
}

// fecharSetor volta para a lista de setores.
func (e *Estado) fecharSetor() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setorAberto = nil
	e.indicadores = nil
	e.periodo = ""
	e.ticket++
}

// SetorAberto devolve o setor aberto e uma cópia dos seus indicadores.
func (e *Estado) SetorAberto() (*model.Setor, []model.Indicador) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.setorAberto == nil {
		return nil, nil
	}
	s := *e.setorAberto
	return &s, copiarIndicadores(e.indicadores)
}

// Periodo devolve o período informado no nível do setor.
func (e *Estado) Periodo() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.periodo
}

func (e *Estado) definirPeriodo(iso string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.setorAberto == nil {
		return ErrNenhumSetorAberto
	}
	e.periodo = iso
	return nil
}

// definirValor aplica fn ao indicador id do setor aberto.
func (e *Estado) definirValor(id int64, fn func(*model.Indicador) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.setorAberto == nil {
		return ErrNenhumSetorAberto
	}
	for i := range e.indicadores {
		if e.indicadores[i].ID == id {
			return fn(&e.indicadores[i])
		}
	}
	return ErrIndicadorNaoEncontrado
}

// snapshot captura o setor aberto para uma submissão.
type snapshot struct {
	setor       model.Setor
	indicadores []model.Indicador
	periodo     string
}

func (e *Estado) capturar() (snapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.setorAberto == nil {
		return snapshot{}, ErrNenhumSetorAberto
	}
	return snapshot{
		setor:       *e.setorAberto,
		indicadores: copiarIndicadores(e.indicadores),
		periodo:     e.periodo,
	}, nil
}

func (e *Estado) registrar(r model.Registro) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.historico = append([]model.Registro{r}, e.historico...)
	if len(e.historico) > limiteHistorico {
		e.historico = e.historico[:limiteHistorico]
	}
}

// Historico devolve os registros locais, do mais recente para o mais antigo.
func (e *Estado) Historico() []model.Registro {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.Registro, len(e.historico))
	copy(out, e.historico)
	return out
}

func copiarIndicadores(in []model.Indicador) []model.Indicador {
	if in == nil {
		return nil
	}
	out := make([]model.Indicador, len(in))
	for i, ind := range in {
		if ind.Valor != nil {
			v := *ind.Valor
			ind.Valor = &v
		}
		out[i] = ind
	}
	return out
}
