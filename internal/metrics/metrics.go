package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "painel_indicadores"

// ClientMetrics agrupa as métricas do cliente da API.
type ClientMetrics struct {
	Requests      *prometheus.CounterVec
	Duration      *prometheus.HistogramVec
	ForcedLogouts prometheus.Counter
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
}

// NewClientMetrics registra as métricas do cliente em reg.
// Use prometheus.NewRegistry() em testes para evitar registro duplicado.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	f := promauto.With(reg)
	return &ClientMetrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total de requisições ao backend por método e status.",
		}, []string{"method", "status"}), // status: código HTTP ou "error"
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Duração das requisições ao backend.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		ForcedLogouts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "forced_logouts_total",
			Help:      "Sessões encerradas por 401 ou token inválido.",
		}),
		CacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin",
			Name:      "indicator_cache_hits_total",
			Help:      "Consultas ao cache de indicadores do admin atendidas localmente.",
		}),
		CacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin",
			Name:      "indicator_cache_misses_total",
			Help:      "Consultas ao cache de indicadores do admin que foram ao backend.",
		}),
	}
}

// ObserveRequest registra uma requisição concluída; status 0 indica falha de rede.
func (m *ClientMetrics) ObserveRequest(method string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.Requests.WithLabelValues(method, label).Inc()
	m.Duration.WithLabelValues(method).Observe(dur.Seconds())
}

// ForcedLogout contabiliza um logout forçado.
func (m *ClientMetrics) ForcedLogout() {
	if m == nil {
		return
	}
	m.ForcedLogouts.Inc()
}

// CacheHit contabiliza acerto no cache do admin.
func (m *ClientMetrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// CacheMiss contabiliza falta no cache do admin.
func (m *ClientMetrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

// ServerMetrics agrupa as métricas HTTP do backend de desenvolvimento.
type ServerMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewServerMetrics registra as métricas do servidor em reg.
func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	f := promauto.With(reg)
	return &ServerMetrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Total de requisições atendidas por rota e status.",
		}, []string{"method", "route", "status"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "request_duration_seconds",
			Help:      "Duração das requisições atendidas.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Middleware mede cada requisição usando o padrão de rota do chi.
func (m *ServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "desconhecida"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.Requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.Duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
