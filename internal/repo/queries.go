package repo

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Queries mantém as tabelas do backend de desenvolvimento em memória.
// Todos os métodos devolvem cópias; alterações passam pelos métodos Update*.
type Queries struct {
	mu sync.RWMutex

	seq          int64
	funcionarios map[int64]Funcionario
	setores      map[int64]Setor
	indicadores  map[int64]Indicador
	drafts       map[int64]Draft
	valores      map[string]Valor
}

// New cria um armazenamento vazio.
func New() *Queries {
	return &Queries{
		funcionarios: make(map[int64]Funcionario),
		setores:      make(map[int64]Setor),
		indicadores:  make(map[int64]Indicador),
		drafts:       make(map[int64]Draft),
		valores:      make(map[string]Valor),
	}
}

func (q *Queries) nextID() int64 {
	q.seq++
	return q.seq
}

// GetFuncionarioByEmail busca funcionário pelo email (sem diferenciar caixa).
func (q *Queries) GetFuncionarioByEmail(ctx context.Context, email string) (Funcionario, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, f := range q.funcionarios {
		if strings.ToLower(f.Email) == email {
			return copiarFuncionario(f), nil
		}
	}
	return Funcionario{}, ErrNotFound
}

// GetFuncionarioByID busca funcionário pelo id.
func (q *Queries) GetFuncionarioByID(ctx context.Context, id int64) (Funcionario, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	f, ok := q.funcionarios[id]
	if !ok {
		return Funcionario{}, ErrNotFound
	}
	return copiarFuncionario(f), nil
}

// ListFuncionarios devolve todos os funcionários por nível decrescente e nome.
func (q *Queries) ListFuncionarios(ctx context.Context) ([]Funcionario, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]Funcionario, 0, len(q.funcionarios))
	for _, f := range q.funcionarios {
		out = append(out, copiarFuncionario(f))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Nivel != out[j].Nivel {
			return out[i].Nivel > out[j].Nivel
		}
		return out[i].Nome < out[j].Nome
	})
	return out, nil
}

// ListFuncionariosBySetor devolve funcionários ativos do setor, por nome.
func (q *Queries) ListFuncionariosBySetor(ctx context.Context, setorID int64) ([]Funcionario, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := []Funcionario{}
	for _, f := range q.funcionarios {
		if f.Ativo && f.SetorID != nil && *f.SetorID == setorID {
			out = append(out, copiarFuncionario(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

// InsertFuncionario cadastra funcionário; email repetido devolve ErrDuplicado.
func (q *Queries) InsertFuncionario(ctx context.Context, f Funcionario) (Funcionario, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, existente := range q.funcionarios {
		if strings.EqualFold(existente.Email, f.Email) {
			return Funcionario{}, ErrDuplicado
		}
	}
	f.ID = q.nextID()
	f.CriadoEm = time.Now().UTC()
	q.funcionarios[f.ID] = copiarFuncionario(f)
	return copiarFuncionario(f), nil
}

// UpdateFuncionario aplica fn ao funcionário e grava o resultado.
func (q *Queries) UpdateFuncionario(ctx context.Context, id int64, fn func(*Funcionario) error) (Funcionario, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	f, ok := q.funcionarios[id]
	if !ok {
		return Funcionario{}, ErrNotFound
	}
	f = copiarFuncionario(f)
	if err := fn(&f); err != nil {
		return Funcionario{}, err
	}
	for outroID, existente := range q.funcionarios {
		if outroID != id && strings.EqualFold(existente.Email, f.Email) {
			return Funcionario{}, ErrDuplicado
		}
	}
	q.funcionarios[id] = f
	return copiarFuncionario(f), nil
}

// ListSetores devolve setores por nome; apenasAtivos filtra inativos.
func (q *Queries) ListSetores(ctx context.Context, apenasAtivos bool) ([]Setor, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := []Setor{}
	for _, s := range q.setores {
		if apenasAtivos && !s.Ativo {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

// GetSetor busca setor pelo id.
func (q *Queries) GetSetor(ctx context.Context, id int64) (Setor, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	s, ok := q.setores[id]
	if !ok {
		return Setor{}, ErrNotFound
	}
	return s, nil
}

// GetSetorByNome busca setor pelo nome sem diferenciar caixa.
func (q *Queries) GetSetorByNome(ctx context.Context, nome string) (Setor, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	nome = strings.TrimSpace(nome)
	for _, s := range q.setores {
		if strings.EqualFold(s.Nome, nome) {
			return s, nil
		}
	}
	return Setor{}, ErrNotFound
}

// InsertSetor cadastra setor; nome repetido devolve ErrDuplicado.
func (q *Queries) InsertSetor(ctx context.Context, nome string) (Setor, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, s := range q.setores {
		if strings.EqualFold(s.Nome, nome) {
			return Setor{}, ErrDuplicado
		}
	}
	s := Setor{ID: q.nextID(), Nome: nome, Ativo: true}
	q.setores[s.ID] = s
	return s, nil
}

// UpdateSetor aplica fn ao setor e grava o resultado.
func (q *Queries) UpdateSetor(ctx context.Context, id int64, fn func(*Setor) error) (Setor, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	s, ok := q.setores[id]
	if !ok {
		return Setor{}, ErrNotFound
	}
	if err := fn(&s); err != nil {
		return Setor{}, err
	}
	for outroID, existente := range q.setores {
		if outroID != id && strings.EqualFold(existente.Nome, s.Nome) {
			return Setor{}, ErrDuplicado
		}
	}
	q.setores[id] = s
	return s, nil
}

// ListIndicadoresBySetor devolve indicadores do setor ordenados por código.
func (q *Queries) ListIndicadoresBySetor(ctx context.Context, setorID int64, apenasAtivos bool) ([]Indicador, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := []Indicador{}
	for _, ind := range q.indicadores {
		if ind.SetorID != setorID || (apenasAtivos && !ind.Ativo) {
			continue
		}
		out = append(out, copiarIndicador(ind))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Codigo < out[j].Codigo })
	return out, nil
}

// ListSetoresByResponsavel devolve os setores onde o funcionário responde por algum indicador ativo.
func (q *Queries) ListSetoresByResponsavel(ctx context.Context, funcionarioID int64) ([]int64, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	vistos := map[int64]struct{}{}
	out := []int64{}
	for _, ind := range q.indicadores {
		if !ind.Ativo || ind.ResponsavelID == nil || *ind.ResponsavelID != funcionarioID {
			continue
		}
		if _, ok := vistos[ind.SetorID]; ok {
			continue
		}
		vistos[ind.SetorID] = struct{}{}
		out = append(out, ind.SetorID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// GetIndicador busca indicador pelo id.
func (q *Queries) GetIndicador(ctx context.Context, id int64) (Indicador, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	ind, ok := q.indicadores[id]
	if !ok {
		return Indicador{}, ErrNotFound
	}
	return copiarIndicador(ind), nil
}

// GetIndicadorByCodigo busca indicador pelo código dentro do setor.
func (q *Queries) GetIndicadorByCodigo(ctx context.Context, setorID int64, codigo string) (Indicador, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for _, ind := range q.indicadores {
		if ind.SetorID == setorID && strings.EqualFold(ind.Codigo, codigo) {
			return copiarIndicador(ind), nil
		}
	}
	return Indicador{}, ErrNotFound
}

// InsertIndicador cadastra indicador; código repetido no setor devolve ErrDuplicado.
func (q *Queries) InsertIndicador(ctx context.Context, ind Indicador) (Indicador, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.setores[ind.SetorID]; !ok {
		return Indicador{}, ErrNotFound
	}
	for _, existente := range q.indicadores {
		if existente.SetorID == ind.SetorID && strings.EqualFold(existente.Codigo, ind.Codigo) {
			return Indicador{}, ErrDuplicado
		}
	}
	ind.ID = q.nextID()
	q.indicadores[ind.ID] = copiarIndicador(ind)
	return copiarIndicador(ind), nil
}

// UpdateIndicador aplica fn ao indicador e grava o resultado.
func (q *Queries) UpdateIndicador(ctx context.Context, id int64, fn func(*Indicador) error) (Indicador, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	ind, ok := q.indicadores[id]
	if !ok {
		return Indicador{}, ErrNotFound
	}
	ind = copiarIndicador(ind)
	if err := fn(&ind); err != nil {
		return Indicador{}, err
	}
	q.indicadores[id] = ind
	return copiarIndicador(ind), nil
}

// SaveDraft grava o rascunho do funcionário para indicador e período, substituindo o anterior
// que ainda não foi aprovado.
func (q *Queries) SaveDraft(ctx context.Context, d Draft) (Draft, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := time.Now().UTC()
	for id, existente := range q.drafts {
		if existente.IndicadorID == d.IndicadorID && existente.FuncionarioID == d.FuncionarioID &&
			existente.Periodo == d.Periodo && existente.Status != DraftAprovado {
			d.ID = id
			d.CriadoEm = existente.CriadoEm
			d.AtualizadoEm = now
			q.drafts[id] = copiarDraft(d)
			return copiarDraft(d), nil
		}
	}
	d.ID = q.nextID()
	d.CriadoEm = now
	d.AtualizadoEm = now
	q.drafts[d.ID] = copiarDraft(d)
	return copiarDraft(d), nil
}

// GetDraft busca rascunho pelo id.
func (q *Queries) GetDraft(ctx context.Context, id int64) (Draft, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	d, ok := q.drafts[id]
	if !ok {
		return Draft{}, ErrNotFound
	}
	return copiarDraft(d), nil
}

// UpdateDraft aplica fn ao rascunho e grava o resultado.
func (q *Queries) UpdateDraft(ctx context.Context, id int64, fn func(*Draft) error) (Draft, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	d, ok := q.drafts[id]
	if !ok {
		return Draft{}, ErrNotFound
	}
	d = copiarDraft(d)
	if err := fn(&d); err != nil {
		return Draft{}, err
	}
	d.AtualizadoEm = time.Now().UTC()
	q.drafts[id] = d
	return copiarDraft(d), nil
}

// ListDrafts devolve rascunhos pelo filtro, mais recentes primeiro.
func (q *Queries) ListDrafts(ctx context.Context, f DraftFiltro) ([]Draft, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := []Draft{}
	for _, d := range q.drafts {
		if f.SetorID != 0 && d.SetorID != f.SetorID {
			continue
		}
		if f.FuncionarioID != 0 && d.FuncionarioID != f.FuncionarioID {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		out = append(out, copiarDraft(d))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AtualizadoEm.Equal(out[j].AtualizadoEm) {
			return out[i].AtualizadoEm.After(out[j].AtualizadoEm)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func chaveValor(indicadorID int64, periodo string) string {
	return periodo + "#" + strconv.FormatInt(indicadorID, 10)
}

// UpsertValor grava o valor definitivo do indicador no período.
func (q *Queries) UpsertValor(ctx context.Context, v Valor) (Valor, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	key := chaveValor(v.IndicadorID, v.Periodo)
	if existente, ok := q.valores[key]; ok {
		v.ID = existente.ID
	} else {
		v.ID = q.nextID()
	}
	v.AtualizadoEm = time.Now().UTC()
	v.Valor = copiarTexto(v.Valor)
	q.valores[key] = v
	return v, nil
}

// GetValor busca o valor definitivo do indicador no período.
func (q *Queries) GetValor(ctx context.Context, indicadorID int64, periodo string) (Valor, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	v, ok := q.valores[chaveValor(indicadorID, periodo)]
	if !ok {
		return Valor{}, ErrNotFound
	}
	v.Valor = copiarTexto(v.Valor)
	return v, nil
}

func copiarTexto(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copiarInt(n *int64) *int64 {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}

func copiarFuncionario(f Funcionario) Funcionario {
	f.SetorID = copiarInt(f.SetorID)
	return f
}

func copiarIndicador(ind Indicador) Indicador {
	ind.Unidade = copiarTexto(ind.Unidade)
	ind.ResponsavelID = copiarInt(ind.ResponsavelID)
	if ind.Meta != nil {
		m := *ind.Meta
		ind.Meta = &m
	}
	return ind
}

func copiarDraft(d Draft) Draft {
	d.Valor = copiarTexto(d.Valor)
	d.AprovadoPor = copiarInt(d.AprovadoPor)
	d.RejeitadoMotivo = copiarTexto(d.RejeitadoMotivo)
	if d.RejeitadoEm != nil {
		t := *d.RejeitadoEm
		d.RejeitadoEm = &t
	}
	return d
}
