package http

import (
	"net/http"

	"github.com/gestaozabele/indicadores/internal/model"
	"github.com/gestaozabele/indicadores/internal/repo"
	"github.com/gestaozabele/indicadores/internal/service"
)

type usuarioJSON struct {
	ID      int64  `json:"ZFU_ID"`
	Nome    string `json:"ZFU_NOME"`
	Email   string `json:"ZFU_EMAIL"`
	SetorID *int64 `json:"ZFU_SETOR_ID"`
	Nivel   int    `json:"ZFU_NIVEL"`
	Ativo   bool   `json:"ZFU_ATIVO"`
	Perfil  string `json:"perfil"`
}

func usuarioDe(f repo.Funcionario) usuarioJSON {
	return usuarioJSON{
		ID:      f.ID,
		Nome:    f.Nome,
		Email:   f.Email,
		SetorID: f.SetorID,
		Nivel:   f.Nivel,
		Ativo:   f.Ativo,
		Perfil:  string(model.PerfilDoNivel(f.Nivel)),
	}
}

func usuariosDe(fs []repo.Funcionario) []usuarioJSON {
	out := make([]usuarioJSON, 0, len(fs))
	for _, f := range fs {
		out = append(out, usuarioDe(f))
	}
	return out
}

// ListUsers retorna os usuários cadastrados.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.usuarios.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, usuariosDe(users))
}

// CreateUser cadastra usuário abaixo do nível do chamador.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ator, ok := atorObrigatorio(w, r)
	if !ok {
		return
	}
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
	nivel, _, err := c.inteiro("nivel")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "nivel inválido")
		return
	}

	in := service.NovoUsuario{
		Nome:    c.textoOuVazio("nome"),
		Email:   c.textoOuVazio("email"),
		Senha:   c.textoOuVazio("senha", "password"),
		SetorID: setorID,
		Nivel:   1,
	}
	if nivel != nil {
		in.Nivel = int(*nivel)
	}

	user, err := h.usuarios.CreateUser(r.Context(), ator, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusCreated, map[string]any{"id": user.ID, "user": usuarioDe(user)})
}

// UpdateUser altera dados, nível ou situação; setor_id null remove o setor.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
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
	setorID, limparSetor, err := c.inteiro("setor_id", "setorId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "setor_id inválido")
		return
	}
	nivel, _, err := c.inteiro("nivel")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "nivel inválido")
		return
	}
	ativo, err := c.booleano("ativo")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "ativo inválido")
		return
	}

	upd := service.UsuarioUpdate{
		Nome:        c.texto("nome"),
		Email:       c.texto("email"),
		SetorID:     setorID,
		LimparSetor: limparSetor,
		Ativo:       ativo,
	}
	if nivel != nil {
		n := int(*nivel)
		upd.Nivel = &n
	}

	user, err := h.usuarios.UpdateUser(r.Context(), ator, id, upd)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]any{"user": usuarioDe(user)})
}

// ResetPassword troca a senha do usuário.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
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
	if err := h.usuarios.ResetPassword(r.Context(), ator, id, c.textoOuVazio("senha", "password")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, nil)
}
