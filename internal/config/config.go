package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Modos de persistência do token da sessão.
const (
	SessionFile   = "file"
	SessionRedis  = "redis"
	SessionMemory = "memory"
)

// Config centraliza a configuração do cliente do painel.
type Config struct {
	APIURL        string        `env:"PAINEL_API_URL" envDefault:"http://localhost:5000"`
	HTTPTimeout   time.Duration `env:"PAINEL_HTTP_TIMEOUT" envDefault:"15s"`
	SessionStore  string        `env:"PAINEL_SESSION_STORE" envDefault:"file"`
	SessionFile   string        `env:"PAINEL_SESSION_FILE"`
	RedisURL      string        `env:"REDIS_URL"`
	SessionTTL    time.Duration `env:"PAINEL_SESSION_TTL" envDefault:"12h"`
	Concorrencia  int           `env:"PAINEL_CONCORRENCIA" envDefault:"4"`
	AdminCacheTTL time.Duration `env:"PAINEL_ADMIN_CACHE_TTL" envDefault:"1m"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`

	RateLimit RateLimitConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64 `env:"PAINEL_RATE_LIMIT_RPS" envDefault:"10"`
	Burst             int     `env:"PAINEL_RATE_LIMIT_BURST" envDefault:"20"`
}

// Load carrega variáveis de ambiente do cliente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	u, err := url.Parse(cfg.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("PAINEL_API_URL inválida")
	}

	if cfg.HTTPTimeout <= 0 {
		return nil, errors.New("PAINEL_HTTP_TIMEOUT inválido")
	}

	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))
	switch cfg.SessionStore {
	case SessionFile:
		if strings.TrimSpace(cfg.SessionFile) == "" {
			cfg.SessionFile = defaultSessionFile()
		}
	case SessionRedis:
		if strings.TrimSpace(cfg.RedisURL) == "" {
			return nil, errors.New("REDIS_URL obrigatório quando PAINEL_SESSION_STORE=redis")
		}
	case SessionMemory:
	default:
		return nil, errors.New("PAINEL_SESSION_STORE deve ser file, redis ou memory")
	}

	if cfg.RateLimit.RequestsPerSecond <= 0 || cfg.RateLimit.Burst <= 0 {
		return nil, errors.New("limites de requisição inválidos")
	}
	if cfg.Concorrencia <= 0 {
		return nil, errors.New("PAINEL_CONCORRENCIA deve ser positivo")
	}
	if cfg.AdminCacheTTL < 0 {
		return nil, errors.New("PAINEL_ADMIN_CACHE_TTL inválido")
	}

	return cfg, nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "painel-indicadores", "sessao.json")
}

// Servidor configura o backend de desenvolvimento.
type Servidor struct {
	Port              int           `env:"PORT" envDefault:"5000"`
	JWTSecret         string        `env:"JWT_SECRET"`
	JWTAccessTTL      time.Duration `env:"JWT_ACCESS_TTL" envDefault:"12h"`
	AllowOrigins      []string      `env:"ALLOW_ORIGINS" envSeparator:","`
	SeedAdminEmail    string        `env:"SEED_ADMIN_EMAIL" envDefault:"admin@empresa.com"`
	SeedAdminPassword string        `env:"SEED_ADMIN_PASSWORD" envDefault:"admin1234"`
	SeedDemo          bool          `env:"SEED_DEMO" envDefault:"false"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`

	RateLimitPublic  RateLimitServidor
	RateLimitUsuario RateLimitUsuario
}

// RateLimitServidor limita requisições por IP no backend de desenvolvimento.
type RateLimitServidor struct {
	RequestsPerSecond float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	Burst             int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
}

// RateLimitUsuario limita requisições por funcionário autenticado.
type RateLimitUsuario struct {
	RequestsPerSecond float64 `env:"RATE_LIMIT_USER_RPS" envDefault:"10"`
	Burst             int     `env:"RATE_LIMIT_USER_BURST" envDefault:"30"`
}

// LoadServidor carrega a configuração do backend de desenvolvimento.
func LoadServidor() (*Servidor, error) {
	_ = godotenv.Load()

	cfg := &Servidor{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.Port <= 0 {
		return nil, errors.New("PORT inválida")
	}

	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}
	if cfg.JWTAccessTTL <= 0 {
		return nil, errors.New("JWT_ACCESS_TTL inválido")
	}

	origins := cfg.AllowOrigins[:0]
	for _, origin := range cfg.AllowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	cfg.AllowOrigins = origins

	cfg.SeedAdminEmail = strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	if cfg.RateLimitPublic.RequestsPerSecond <= 0 || cfg.RateLimitPublic.Burst <= 0 {
		return nil, errors.New("limites de requisição inválidos")
	}
	if cfg.RateLimitUsuario.RequestsPerSecond <= 0 || cfg.RateLimitUsuario.Burst <= 0 {
		return nil, errors.New("limites de requisição por usuário inválidos")
	}

	return cfg, nil
}
