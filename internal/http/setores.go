package http

import (
	"net/http"

	"github.com/gestaozabele/indicadores/internal/repo"
	"github.com/gestaozabele/indicadores/internal/service"
)

type setorJSON struct {
	ID    int64  `json:"ZSE_ID"`
	Nome  string `json:"ZSE_NOME"`
	Ativo bool   `json:"ZSE_ATIVO"`
}

func setorDe(s repo.Setor) setorJSON {
	return setorJSON{ID: s.ID, Nome: s.Nome, Ativo: s.Ativo}
}

type indicadorJSON struct {
	ID            int64    `json:"ZIN_ID"`
	SetorID       int64    `json:"ZIN_SETOR_ID"`
	Codigo        string   `json:"ZIN_CODIGO"`
	Nome          string   `json:"ZIN_NOME"`
	Tipo          string   `json:"ZIN_TIPO"`
	Unidade       *string  `json:"ZIN_UNIDADE"`
	Meta          *float64 `json:"ZIN_META"`
	Ativo         bool     `json:"ZIN_ATIVO"`
	ResponsavelID *int64   `json:"ZIN_RESPONSAVEL_ID"`
	ReadOnly      bool     `json:"read_only"`
}

func indicadorDe(ind repo.Indicador, readOnly bool) indicadorJSON {
	return indicadorJSON{
		ID:            ind.ID,
		SetorID:       ind.SetorID,
		Codigo:        ind.Codigo,
		Nome:          ind.Nome,
		Tipo:          ind.Tipo,
		Unidade:       ind.Unidade,
		Meta:          ind.Meta,
		Ativo:         ind.Ativo,
		ResponsavelID: ind.ResponsavelID,
		ReadOnly:      readOnly,
	}
}

// ListSetores devolve os setores visíveis ao chamador (anônimo vê todos os ativos).
func (h *Handler) ListSetores(w http.ResponseWriter, r *http.Request) {
	setores, err := h.setores.ListSetores(r.Context(), atorOuNil(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]setorJSON, 0, len(setores))
	for _, s := range setores {
		out = append(out, setorDe(s))
	}
	WriteJSON(w, http.StatusOK, out)
}

// CreateSetor cadastra setor.
func (h *Handler) CreateSetor(w http.ResponseWriter, r *http.Request) {
	c, err := lerCorpo(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	setor, err := h.setores.CreateSetor(r.Context(), c.textoOuVazio("nome"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusCreated, map[string]any{"id": setor.ID, "setor": setorDe(setor)})
}

// UpdateSetor altera nome e/ou situação do setor.
func (h *Handler) UpdateSetor(w http.ResponseWriter, r *http.Request) {
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
	ativo, err := c.booleano("ativo")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "ativo inválido")
		return
	}

	setor, err := h.setores.UpdateSetor(r.Context(), id, service.SetorUpdate{Nome: c.texto("nome"), Ativo: ativo})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]any{"setor": setorDe(setor)})
}

// ListIndicadores devolve os indicadores ativos do setor com read_only calculado.
func (h *Handler) ListIndicadores(w http.ResponseWriter, r *http.Request) {
	inds, err := h.setores.ListIndicadores(r.Context(), atorOuNil(r), querySetor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]indicadorJSON, 0, len(inds))
	for _, ind := range inds {
		out = append(out, indicadorDe(ind.Indicador, ind.ReadOnly))
	}
	WriteJSON(w, http.StatusOK, out)
}

// CreateIndicador cadastra indicador.
func (h *Handler) CreateIndicador(w http.ResponseWriter, r *http.Request) {
	c, err := lerCorpo(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	setorID, _, err := c.inteiro("setor_id", "setorId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "setor_id inválido")
		return
	}
	meta, err := c.decimal("meta")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "meta inválida")
		return
	}
	responsavel, _, err := c.inteiro("responsavel_id", "responsavelId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "responsavel_id inválido")
		return
	}

	in := service.NovoIndicador{
		Codigo:        c.textoOuVazio("codigo"),
		Nome:          c.textoOuVazio("nome"),
		Tipo:          c.textoOuVazio("tipo"),
		Unidade:       c.texto("unidade"),
		Meta:          meta,
		ResponsavelID: responsavel,
	}
	if setorID != nil {
		in.SetorID = *setorID
	}

	ind, err := h.setores.CreateIndicador(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusCreated, map[string]any{"id": ind.ID, "indicador": indicadorDe(ind, false)})
}

// UpdateIndicador altera a definição do indicador; responsavel_id null remove o responsável.
func (h *Handler) UpdateIndicador(w http.ResponseWriter, r *http.Request) {
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
	meta, err := c.decimal("meta")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "meta inválida")
		return
	}
	ativo, err := c.booleano("ativo")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "ativo inválido")
		return
	}
	responsavel, limpar, err := c.inteiro("responsavel_id", "responsavelId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "responsavel_id inválido")
		return
	}

	upd := service.IndicadorUpdate{
		Nome:              c.texto("nome"),
		Tipo:              c.texto("tipo"),
		Meta:              meta,
		Ativo:             ativo,
		ResponsavelID:     responsavel,
		LimparResponsavel: limpar,
	}
	if raw, ok := c.cru("unidade"); ok {
		vazio := ""
		upd.Unidade = &vazio
		if !nulo(raw) {
			upd.Unidade = c.texto("unidade")
		}
	}

	ind, err := h.setores.UpdateIndicador(r.Context(), id, upd)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]any{"indicador": indicadorDe(ind, false)})
}
