package middleware

import (
	"net/http"
	"strings"
)

const (
	corsHeaders = "Authorization, Content-Type, X-Request-ID"
	corsMetodos = "GET, POST, PUT, OPTIONS"
)

// CORS libera as origens de ALLOW_ORIGINS. Lista vazia aceita qualquer origem,
// sem credenciais, como o backend de desenvolvimento original.
func CORS(origens []string) func(http.Handler) http.Handler {
	permitidas := make(map[string]bool, len(origens))
	for _, o := range origens {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			permitidas[o] = true
		}
	}
	qualquer := len(permitidas) == 0

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origem := r.Header.Get("Origin")
			h := w.Header()
			switch {
			case origem == "":
			case qualquer:
				h.Set("Access-Control-Allow-Origin", "*")
			case permitidas[origem]:
				h.Set("Access-Control-Allow-Origin", origem)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			}
			if h.Get("Access-Control-Allow-Origin") != "" {
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Allow-Methods", corsMetodos)
				h.Set("Access-Control-Expose-Headers", "X-Request-ID")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
