package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/indicadores/internal/service"
)

// WriteJSON escreve data como corpo JSON, sem envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteOK escreve {"ok":true} acrescido dos campos extras.
func WriteOK(w http.ResponseWriter, status int, extra map[string]any) {
	body := map[string]any{"ok": true}
	for k, v := range extra {
		body[k] = v
	}
	WriteJSON(w, status, body)
}

// WriteError escreve {"ok":false,"error":message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]any{"ok": false, "error": message})
}

// writeServiceError traduz erro de serviço; falhas desconhecidas viram 500 sem detalhe.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := service.StatusDe(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("erro interno")
		WriteError(w, status, "erro interno")
		return
	}
	WriteError(w, status, err.Error())
}
