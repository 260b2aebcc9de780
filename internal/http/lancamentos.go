package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gestaozabele/indicadores/internal/service"
)

type draftJSON struct {
	ID              int64   `json:"ZDR_ID"`
	IndicadorID     int64   `json:"ZDR_INDICADOR_ID"`
	SetorID         int64   `json:"ZDR_SETOR_ID"`
	FuncionarioID   int64   `json:"ZDR_FUNCIONARIO_ID"`
	Periodo         string  `json:"ZDR_PERIODO"`
	Valor           *string `json:"ZDR_VALOR"`
	Status          string  `json:"ZDR_STATUS"`
	AtualizadoEm    string  `json:"ZDR_ATUALIZADO_EM"`
	RejeitadoMotivo *string `json:"ZDR_REJEITADO_MOTIVO"`
	RejeitadoEm     *string `json:"ZDR_REJEITADO_EM"`
	IndicadorNome   string  `json:"INDICADOR_NOME"`
	SetorNome       string  `json:"SETOR_NOME"`
	FuncionarioNome string  `json:"FUNCIONARIO_NOME"`
}

func draftDe(d service.DraftDetalhado) draftJSON {
	out := draftJSON{
		ID:              d.ID,
		IndicadorID:     d.IndicadorID,
		SetorID:         d.SetorID,
		FuncionarioID:   d.FuncionarioID,
		Periodo:         d.Periodo,
		Valor:           d.Valor,
		Status:          d.Status,
		AtualizadoEm:    d.AtualizadoEm.Format(time.RFC3339),
		RejeitadoMotivo: d.RejeitadoMotivo,
		IndicadorNome:   d.IndicadorNome,
		SetorNome:       d.SetorNome,
		FuncionarioNome: d.FuncionarioNome,
	}
	if d.RejeitadoEm != nil {
		em := d.RejeitadoEm.Format(time.RFC3339)
		out.RejeitadoEm = &em
	}
	return out
}

// lerEnvio decodifica o corpo de rascunhos e valores aceitando camelCase e snake_case.
func lerEnvio(r *http.Request) (service.Envio, error) {
	c, err := lerCorpo(r)
	if err != nil {
		return service.Envio{}, err
	}
	setorID, _, err := c.inteiro("setorId", "setor_id")
	if err != nil {
		return service.Envio{}, errJSONInvalido
	}

	in := service.Envio{
		SetorNome:        c.textoOuVazio("setorNome", "setor_nome"),
		FuncionarioEmail: c.textoOuVazio("funcionarioEmail", "funcionario_email"),
		FuncionarioNome:  c.textoOuVazio("funcionarioNome", "funcionario_nome"),
		Periodo:          c.textoOuVazio("periodo"),
	}
	if setorID != nil {
		in.SetorID = *setorID
	}

	raw, ok := c.cru("valores")
	if !ok || nulo(raw) {
		return in, nil
	}
	var itens []corpo
	if err := json.Unmarshal(raw, &itens); err != nil {
		return service.Envio{}, errJSONInvalido
	}
	for _, item := range itens {
		indID, _, err := item.inteiro("indicadorId", "indicador_id")
		if err != nil {
			return service.Envio{}, errJSONInvalido
		}
		v := service.ItemEnvio{
			IndicadorCodigo: item.textoOuVazio("indicadorCodigo", "indicador_codigo", "codigo"),
			Valor:           item.texto("valor"),
		}
		if indID != nil {
			v.IndicadorID = *indID
		}
		in.Valores = append(in.Valores, v)
	}
	return in, nil
}

func respostaEnvio(res service.ResultadoEnvio) map[string]any {
	out := map[string]any{
		"periodo":  res.Periodo,
		"gravados": res.Gravados,
		"setor_id": res.SetorID,
	}
	if res.Status != "" {
		out["status"] = res.Status
	}
	if len(res.Ignorados) > 0 {
		out["ignorados"] = res.Ignorados
	}
	return out
}

// SalvarRascunhos grava rascunhos do setor próprio.
func (h *Handler) SalvarRascunhos(w http.ResponseWriter, r *http.Request) {
	ator, ok := atorObrigatorio(w, r)
	if !ok {
		return
	}
	in, err := lerEnvio(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.lancamentos.SalvarRascunhos(r.Context(), ator, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, respostaEnvio(res))
}

// EnviarValores grava valores definitivos.
func (h *Handler) EnviarValores(w http.ResponseWriter, r *http.Request) {
	ator, ok := atorObrigatorio(w, r)
	if !ok {
		return
	}
	in, err := lerEnvio(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.lancamentos.EnviarValores(r.Context(), ator, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, respostaEnvio(res))
}

func escreverDrafts(w http.ResponseWriter, drafts []service.DraftDetalhado) {
	out := make([]draftJSON, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, draftDe(d))
	}
	WriteJSON(w, http.StatusOK, out)
}

// ListRascunhosRejeitados devolve os rascunhos recusados do chamador.
func (h *Handler) ListRascunhosRejeitados(w http.ResponseWriter, r *http.Request) {
	ator, ok := atorObrigatorio(w, r)
	if !ok {
		return
	}
	drafts, err := h.lancamentos.ListarRejeitados(r.Context(), ator, querySetor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	escreverDrafts(w, drafts)
}

// ListRascunhosPendentes devolve os rascunhos aguardando aprovação.
func (h *Handler) ListRascunhosPendentes(w http.ResponseWriter, r *http.Request) {
	ator, ok := atorObrigatorio(w, r)
	if !ok {
		return
	}
	drafts, err := h.lancamentos.ListarPendentes(r.Context(), ator, querySetor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	escreverDrafts(w, drafts)
}

// AprovarRascunho aprova rascunho pendente.
func (h *Handler) AprovarRascunho(w http.ResponseWriter, r *http.Request) {
	ator, ok := atorObrigatorio(w, r)
	if !ok {
		return
	}
	id, ok := paramID(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, "id inválido")
		return
	}
	if err := h.lancamentos.AprovarRascunho(r.Context(), ator, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, nil)
}

// RejeitarRascunho recusa rascunho pendente com motivo.
func (h *Handler) RejeitarRascunho(w http.ResponseWriter, r *http.Request) {
	ator, ok := atorObrigatorio(w, r)
	if !ok {
		return
	}
	id, ok := paramID(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, "id inválido")
		return
	}
	c, err := lerCorpo(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.lancamentos.RejeitarRascunho(r.Context(), ator, id, c.textoOuVazio("motivo")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, nil)
}

// ListFuncionarios devolve os funcionários ativos do setor do gestor.
func (h *Handler) ListFuncionarios(w http.ResponseWriter, r *http.Request) {
	ator, ok := atorObrigatorio(w, r)
	if !ok {
		return
	}
	fs, err := h.lancamentos.FuncionariosDoSetor(r.Context(), ator)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, usuariosDe(fs))
}
