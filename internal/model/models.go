package model

import (
	"strconv"
	"strings"
	"time"
)

// Perfil controla acesso a funcionalidades, independente do nível numérico.
type Perfil string

const (
	PerfilLeitor Perfil = "LEITOR"
	PerfilEditor Perfil = "EDITOR"
	PerfilLider  Perfil = "LIDER"
	PerfilGestao Perfil = "GESTAO"
	PerfilADM    Perfil = "ADM"
)

// ParsePerfil normaliza o perfil; vazio ou desconhecido vira LEITOR.
func ParsePerfil(s string) Perfil {
	p := Perfil(strings.ToUpper(strings.TrimSpace(s)))
	if p.Valid() {
		return p
	}
	return PerfilLeitor
}

// Valid indica se o perfil pertence ao enum.
func (p Perfil) Valid() bool {
	switch p {
	case PerfilLeitor, PerfilEditor, PerfilLider, PerfilGestao, PerfilADM:
		return true
	}
	return false
}

var rotulosNivel = map[int]string{
	1: "LEITOR",
	2: "EDITOR",
	3: "LIDER",
	4: "GESTAO",
	5: "ADM",
}

// RotuloNivel devolve "N - PERFIL" para exibição em seletores de nível.
func RotuloNivel(nivel int) string {
	r, ok := rotulosNivel[nivel]
	if !ok {
		return strconv.Itoa(nivel)
	}
	return strconv.Itoa(nivel) + " - " + r
}

// PerfilDoNivel mapeia o nível numérico para o perfil equivalente.
func PerfilDoNivel(nivel int) Perfil {
	return ParsePerfil(rotulosNivel[NormalizarNivel(nivel)])
}

// NormalizarNivel mantém o nível em [1,5]; ausente ou inválido vale 1.
func NormalizarNivel(n int) int {
	if n < 1 || n > 5 {
		return 1
	}
	return n
}

// Usuario representa o usuário autenticado (ou listado no admin).
type Usuario struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Nome    string `json:"nome"`
	SetorID *int64 `json:"setor_id"`
	Nivel   int    `json:"nivel"`
	Perfil  Perfil `json:"perfil"`
	Ativo   bool   `json:"ativo"`
}

// Setor é a unidade organizacional dona de indicadores.
type Setor struct {
	ID     int64  `json:"id"`
	Nome   string `json:"nome"`
	Classe string `json:"classe"`
	Ativo  bool   `json:"ativo"`
}

var classesSetor = [...]string{"blue", "green", "purple", "red"}

// ClasseSetor devolve a etiqueta cíclica de cor pelo índice na lista.
func ClasseSetor(index int) string {
	if index < 0 {
		index = -index
	}
	return classesSetor[index%len(classesSetor)]
}

// Indicador é uma métrica com meta, unidade e valor a reportar.
type Indicador struct {
	ID            int64    `json:"id"`
	SetorID       int64    `json:"setor_id"`
	Codigo        string   `json:"codigo"`
	Nome          string   `json:"nome"`
	Tipo          string   `json:"tipo"`
	Unidade       *string  `json:"unidade"`
	Meta          *float64 `json:"meta"`
	ResponsavelID *int64   `json:"responsavel_id"`
	ReadOnly      bool     `json:"read_only"`
	Ativo         bool     `json:"ativo"`
	Valor         *string  `json:"valor"`
}

// IsData indica o indicador que define o período (tipo ou unidade "date").
func (i Indicador) IsData() bool {
	if strings.EqualFold(i.Tipo, "date") {
		return true
	}
	return i.Unidade != nil && strings.EqualFold(*i.Unidade, "date")
}

// StatusRegistro descreve o resultado de uma ação registrada no histórico local.
type StatusRegistro string

const (
	StatusRascunho            StatusRegistro = "Rascunho (DB)"
	StatusAguardandoAprovacao StatusRegistro = "Aguardando aprovacao"
	StatusEnviadoParaDB       StatusRegistro = "Enviado para DB"
	StatusSalvoLocalmente     StatusRegistro = "Salvo localmente"
)

// Enviado indica se o badge deve ser o de envio definitivo.
func (s StatusRegistro) Enviado() bool {
	return s == StatusEnviadoParaDB
}

// Registro é uma entrada do histórico local; o backend é a fonte oficial.
type Registro struct {
	ID          int64
	Usuario     string
	Setor       string
	Timestamp   time.Time
	Indicadores []Indicador
	Status      StatusRegistro
}

// Draft é uma linha de rascunho pendente ou rejeitado.
type Draft struct {
	ID              int64
	IndicadorID     int64
	IndicadorNome   string
	SetorID         int64
	SetorNome       string
	FuncionarioNome string
	Periodo         string
	Valor           string
	Status          string
	RejeitadoMotivo string
	RejeitadoEm     string
}

// Funcionario é a linha exibida no painel do gestor.
type Funcionario struct {
	ID      int64
	Nome    string
	Email   string
	SetorID *int64
	Nivel   int
	Ativo   bool
}
