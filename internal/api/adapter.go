package api

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gestaozabele/indicadores/internal/model"
)

// Linha é um objeto JSON cru devolvido pelo backend.
// O backend mistura colunas do banco (ZSE_ID, ZIN_NOME...) com nomes
// amigáveis (id, nome...); as funções abaixo fixam a precedência:
//
//	Setor       ZSE_ID,id  ZSE_NOME,nome  ZSE_ATIVO,ativo
//	Indicador   ZIN_ID,id  ZIN_SETOR_ID,setor_id,setorId  ZIN_CODIGO,codigo
//	            ZIN_NOME,nome  ZIN_TIPO,tipo  ZIN_UNIDADE,unidade  ZIN_META,meta
//	            ZIN_RESPONSAVEL_ID,responsavel_id,responsavelId  read_only  ZIN_ATIVO,ativo
//	Usuario     ZFU_ID,id  ZFU_NOME,nome  ZFU_EMAIL,email  ZFU_SETOR_ID,setor_id
//	            ZFU_NIVEL,nivel  ZFU_ATIVO,ativo  perfil
//	Draft       ZDR_* e INDICADOR_NOME, SETOR_NOME, FUNCIONARIO_NOME
//
// O primeiro valor não nulo vence.
type Linha map[string]any

func (l Linha) primeiro(chaves ...string) (any, bool) {
	for _, k := range chaves {
		if v, ok := l[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (l Linha) inteiro(chaves ...string) (int64, bool) {
	v, ok := l.primeiro(chaves...)
	if !ok {
		return 0, false
	}
	return paraInt64(v)
}

func (l Linha) inteiroPtr(chaves ...string) *int64 {
	n, ok := l.inteiro(chaves...)
	if !ok {
		return nil
	}
	return &n
}

func (l Linha) texto(chaves ...string) string {
	v, ok := l.primeiro(chaves...)
	if !ok {
		return ""
	}
	return paraTexto(v)
}

func (l Linha) textoPtr(chaves ...string) *string {
	s := strings.TrimSpace(l.texto(chaves...))
	if s == "" {
		return nil
	}
	return &s
}

func (l Linha) decimalPtr(chaves ...string) *float64 {
	v, ok := l.primeiro(chaves...)
	if !ok {
		return nil
	}
	f, ok := paraFloat64(v)
	if !ok {
		return nil
	}
	return &f
}

func (l Linha) booleano(padrao bool, chaves ...string) bool {
	v, ok := l.primeiro(chaves...)
	if !ok {
		return padrao
	}
	switch b := v.(type) {
	case bool:
		return b
	case json.Number, float64, int, int64:
		n, _ := paraFloat64(b)
		return n != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "true", "sim", "s":
			return true
		case "0", "false", "nao", "não", "n", "":
			return false
		}
	}
	return padrao
}

func paraInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int64(f), true
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

func paraFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		return f, err == nil
	}
	return 0, false
}

func paraTexto(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

// SetorDe converte a linha em Setor; index define a classe de cor.
func SetorDe(l Linha, index int) model.Setor {
	id, _ := l.inteiro("ZSE_ID", "id")
	return model.Setor{
		ID:     id,
		Nome:   l.texto("ZSE_NOME", "nome"),
		Classe: model.ClasseSetor(index),
		Ativo:  l.booleano(true, "ZSE_ATIVO", "ativo"),
	}
}

// IndicadorDe converte a linha em Indicador; tipo ausente vale "text".
func IndicadorDe(l Linha) model.Indicador {
	id, _ := l.inteiro("ZIN_ID", "id")
	setorID, _ := l.inteiro("ZIN_SETOR_ID", "setor_id", "setorId")
	tipo := strings.TrimSpace(l.texto("ZIN_TIPO", "tipo"))
	if tipo == "" {
		tipo = "text"
	}
	return model.Indicador{
		ID:            id,
		SetorID:       setorID,
		Codigo:        l.texto("ZIN_CODIGO", "codigo"),
		Nome:          l.texto("ZIN_NOME", "nome"),
		Tipo:          tipo,
		Unidade:       l.textoPtr("ZIN_UNIDADE", "unidade"),
		Meta:          l.decimalPtr("ZIN_META", "meta"),
		ResponsavelID: l.inteiroPtr("ZIN_RESPONSAVEL_ID", "responsavel_id", "responsavelId"),
		ReadOnly:      l.booleano(false, "read_only"),
		Ativo:         l.booleano(true, "ZIN_ATIVO", "ativo"),
	}
}

// UsuarioDe converte a linha em Usuario. Perfil ausente vira LEITOR, nunca é
// derivado do nível.
func UsuarioDe(l Linha) model.Usuario {
	id, _ := l.inteiro("ZFU_ID", "id")
	nivel, _ := l.inteiro("ZFU_NIVEL", "nivel")

	return model.Usuario{
		ID:      id,
		Email:   l.texto("ZFU_EMAIL", "email"),
		Nome:    l.texto("ZFU_NOME", "nome"),
		SetorID: l.inteiroPtr("ZFU_SETOR_ID", "setor_id", "setorId"),
		Nivel:   model.NormalizarNivel(int(nivel)),
		Perfil:  model.ParsePerfil(l.texto("perfil")),
		Ativo:   l.booleano(true, "ZFU_ATIVO", "ativo"),
	}
}

// FuncionarioDe converte a linha do painel do gestor.
func FuncionarioDe(l Linha) model.Funcionario {
	u := UsuarioDe(l)
	return model.Funcionario{
		ID:      u.ID,
		Nome:    u.Nome,
		Email:   u.Email,
		SetorID: u.SetorID,
		Nivel:   u.Nivel,
		Ativo:   u.Ativo,
	}
}

// DraftDe converte uma linha de rascunho pendente ou rejeitado.
func DraftDe(l Linha) model.Draft {
	id, _ := l.inteiro("ZDR_ID", "id")
	indID, _ := l.inteiro("ZDR_INDICADOR_ID", "indicador_id")
	setorID, _ := l.inteiro("ZDR_SETOR_ID", "setor_id")
	return model.Draft{
		ID:              id,
		IndicadorID:     indID,
		IndicadorNome:   l.texto("INDICADOR_NOME", "indicador_nome"),
		SetorID:         setorID,
		SetorNome:       l.texto("SETOR_NOME", "setor_nome"),
		FuncionarioNome: l.texto("FUNCIONARIO_NOME", "funcionario_nome"),
		Periodo:         l.texto("ZDR_PERIODO", "periodo"),
		Valor:           l.texto("ZDR_VALOR", "valor"),
		Status:          l.texto("ZDR_STATUS", "status"),
		RejeitadoMotivo: l.texto("ZDR_REJEITADO_MOTIVO", "rejeitado_motivo"),
		RejeitadoEm:     l.texto("ZDR_REJEITADO_EM", "rejeitado_em"),
	}
}
