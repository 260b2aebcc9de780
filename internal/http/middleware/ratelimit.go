package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	inatividadeLimitador = 10 * time.Minute
	intervaloLimpeza     = time.Minute
)

// Limitador guarda um token bucket por chave (IP ou usuário).
type Limitador struct {
	taxa  rate.Limit
	burst int

	mu          sync.Mutex
	buckets     map[string]*bucket
	ultimaLimpa time.Time
	agora       func() time.Time
}

type bucket struct {
	lim     *rate.Limiter
	vistoEm time.Time
}

// NewLimitador cria limitador com rps requisições por segundo e rajada burst.
func NewLimitador(rps float64, burst int) *Limitador {
	return &Limitador{
		taxa:    rate.Limit(rps),
		burst:   burst,
		buckets: make(map[string]*bucket),
		agora:   time.Now,
	}
}

// Permite consome uma ficha da chave.
func (l *Limitador) Permite(chave string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.agora()
	b, ok := l.buckets[chave]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.taxa, l.burst)}
		l.buckets[chave] = b
	}
	b.vistoEm = now

	if now.Sub(l.ultimaLimpa) >= intervaloLimpeza {
		for k, v := range l.buckets {
			if now.Sub(v.vistoEm) > inatividadeLimitador {
				delete(l.buckets, k)
			}
		}
		l.ultimaLimpa = now
	}

	return b.lim.AllowN(now, 1)
}

// retryAfter em segundos inteiros, no mínimo 1.
func (l *Limitador) retryAfter() string {
	if l.taxa <= 0 {
		return "1"
	}
	s := math.Ceil(1 / float64(l.taxa))
	if s < 1 {
		s = 1
	}
	return strconv.Itoa(int(s))
}

func (l *Limitador) middleware(chave func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := chave(r)
			if k != "" && !l.Permite(k) {
				w.Header().Set("Retry-After", l.retryAfter())
				writeError(w, http.StatusTooManyRequests, "Limite de requisições excedido")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PorIP limita pelo IP do cliente (login e leituras anônimas).
func PorIP(l *Limitador) func(http.Handler) http.Handler {
	return l.middleware(ipDoCliente)
}

// PorUsuario limita pelo id do funcionário autenticado; sem ator não limita.
func PorUsuario(l *Limitador) func(http.Handler) http.Handler {
	return l.middleware(func(r *http.Request) string {
		ator, ok := GetAtor(r.Context())
		if !ok {
			return ""
		}
		return "u:" + strconv.FormatInt(ator.ID, 10)
	})
}

// ipDoCliente depende do chi RealIP já ter reescrito RemoteAddr.
func ipDoCliente(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
