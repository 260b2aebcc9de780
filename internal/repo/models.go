package repo

import "time"

// Status de rascunho (ZDR_STATUS).
const (
	DraftRascunho  = "DRAFT"
	DraftPendente  = "PENDING"
	DraftAprovado  = "APPROVED"
	DraftRejeitado = "REJECTED"
)

// Funcionario representa usuário do painel (tabela ZFU).
type Funcionario struct {
	ID        int64
	Nome      string
	Email     string
	SenhaHash string
	SetorID   *int64
	Nivel     int
	Ativo     bool
	CriadoEm  time.Time
}

// Setor representa unidade organizacional (tabela ZSE).
type Setor struct {
	ID    int64
	Nome  string
	Ativo bool
}

// Indicador representa definição de indicador (tabela ZIN).
type Indicador struct {
	ID            int64
	SetorID       int64
	Codigo        string
	Nome          string
	Tipo          string
	Unidade       *string
	Meta          *float64
	Ativo         bool
	ResponsavelID *int64
}

// Draft representa rascunho de valor (tabela ZDR).
type Draft struct {
	ID              int64
	IndicadorID     int64
	SetorID         int64
	FuncionarioID   int64
	Periodo         string
	Valor           *string
	Status          string
	CriadoEm        time.Time
	AtualizadoEm    time.Time
	AprovadoPor     *int64
	RejeitadoMotivo *string
	RejeitadoEm     *time.Time
}

// Valor representa valor definitivo de um indicador no período (tabela ZVA).
type Valor struct {
	ID            int64
	IndicadorID   int64
	SetorID       int64
	FuncionarioID int64
	Periodo       string
	Valor         *string
	AtualizadoEm  time.Time
}

// DraftFiltro restringe ListDrafts; campos zero não filtram.
type DraftFiltro struct {
	SetorID       int64
	FuncionarioID int64
	Status        string
}
