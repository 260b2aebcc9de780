package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gestaozabele/indicadores/internal/config"
	httpmiddleware "github.com/gestaozabele/indicadores/internal/http/middleware"
	"github.com/gestaozabele/indicadores/internal/metrics"
	"github.com/gestaozabele/indicadores/internal/model"
	"github.com/gestaozabele/indicadores/internal/repo"
	"github.com/gestaozabele/indicadores/internal/service"
)

type Handler struct {
	cfg           *config.Servidor
	authService   *service.AuthService
	setores       *service.SetorService
	lancamentos   *service.LancamentoService
	usuarios      *service.UsuarioService
	publicLimiter *httpmiddleware.Limitador
	userLimiter   *httpmiddleware.Limitador
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Servidor, q *repo.Queries, authService *service.AuthService, reg *prometheus.Registry) (http.Handler, error) {
	if cfg == nil || q == nil || authService == nil || reg == nil {
		return nil, errors.New("router: dependências obrigatórias ausentes")
	}

	rbac := service.NewRBACService(q)
	h := &Handler{
		cfg:           cfg,
		authService:   authService,
		setores:       service.NewSetorService(q, rbac),
		lancamentos:   service.NewLancamentoService(q, rbac),
		usuarios:      service.NewUsuarioService(q),
		publicLimiter: httpmiddleware.NewLimitador(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		userLimiter:   httpmiddleware.NewLimitador(cfg.RateLimitUsuario.RequestsPerSecond, cfg.RateLimitUsuario.Burst),
	}
	serverMetrics := metrics.NewServerMetrics(reg)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))
	r.Use(serverMetrics.Middleware)

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Route("/api", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			public.Use(httpmiddleware.PorIP(h.publicLimiter))
			public.Post("/auth/login", h.Login)

			public.Group(func(opcional chi.Router) {
				opcional.Use(httpmiddleware.OptionalAuth(authService.JWT()))
				opcional.Get("/setores", h.ListSetores)
				opcional.Get("/indicadores", h.ListIndicadores)
			})
		})

		api.Group(func(private chi.Router) {
			private.Use(httpmiddleware.Auth(authService.JWT()))
			private.Use(httpmiddleware.PorUsuario(h.userLimiter))

			private.Get("/me", h.Me)

			private.Group(func(editor chi.Router) {
				editor.Use(httpmiddleware.RequireNivel(2))
				editor.Post("/drafts", h.SalvarRascunhos)
				editor.Get("/drafts/rejected", h.ListRascunhosRejeitados)
			})

			private.Group(func(gestor chi.Router) {
				gestor.Use(httpmiddleware.RequireNivel(3))
				gestor.Post("/valores", h.EnviarValores)
				gestor.Get("/drafts/pending", h.ListRascunhosPendentes)
				gestor.Post("/drafts/{id}/approve", h.AprovarRascunho)
				gestor.Post("/drafts/{id}/reject", h.RejeitarRascunho)
				gestor.Get("/gestor/funcionarios", h.ListFuncionarios)
			})

			private.Group(func(gestao chi.Router) {
				gestao.Use(httpmiddleware.RequireNivel(4))
				gestao.Post("/setores", h.CreateSetor)
				gestao.Put("/setores/{id}", h.UpdateSetor)
				gestao.Post("/indicadores", h.CreateIndicador)
				gestao.Put("/indicadores/{id}", h.UpdateIndicador)
				gestao.Route("/users", func(u chi.Router) {
					u.Get("/", h.ListUsers)
					u.Post("/", h.CreateUser)
					u.Put("/{id}", h.UpdateUser)
					u.Post("/{id}/reset-password", h.ResetPassword)
				})
			})
		})
	})

	return r, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteOK(w, http.StatusOK, map[string]any{"status": "ok"})
}

func atorOuNil(r *http.Request) *service.Ator {
	ator, ok := httpmiddleware.GetAtor(r.Context())
	if !ok {
		return nil
	}
	return &ator
}

func atorObrigatorio(w http.ResponseWriter, r *http.Request) (service.Ator, bool) {
	ator, ok := httpmiddleware.GetAtor(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Token ausente")
	}
	return ator, ok
}

// Login autentica funcionário por email e senha.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	c, err := lerCorpo(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	email := strings.TrimSpace(c.textoOuVazio("email"))
	senha := c.textoOuVazio("senha", "password")
	if email == "" || senha == "" {
		WriteError(w, http.StatusBadRequest, "Informe email e senha")
		return
	}

	result, err := h.authService.Login(r.Context(), email, senha)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteOK(w, http.StatusOK, map[string]any{
		"token": result.Token,
		"user":  usuarioResumo(result.Usuario),
	})
}

// Me devolve o usuário do token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ator, ok := atorObrigatorio(w, r)
	if !ok {
		return
	}
	user, err := h.authService.Me(r.Context(), ator)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]any{"user": usuarioResumo(user)})
}

func usuarioResumo(f repo.Funcionario) map[string]any {
	return map[string]any{
		"id":       f.ID,
		"nome":     f.Nome,
		"email":    f.Email,
		"setor_id": f.SetorID,
		"nivel":    f.Nivel,
		"perfil":   string(model.PerfilDoNivel(f.Nivel)),
	}
}
