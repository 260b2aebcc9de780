package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gestaozabele/indicadores/internal/api"
	"github.com/gestaozabele/indicadores/internal/auth"
	"github.com/gestaozabele/indicadores/internal/config"
	"github.com/gestaozabele/indicadores/internal/metrics"
	"github.com/gestaozabele/indicadores/internal/painel"
)

const prefixoRedis = "painel:sessao:"

var (
	// flags
	verbose bool
	apiURL  string

	cfg         *config.Config
	controlador *painel.Controlador
	encerrar    = func() {}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "logs em nível debug")
	RootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "url do backend (padrão PAINEL_API_URL)")
}

var RootCmd = cobra.Command{
	Use:           "painel",
	Short:         "Painel de indicadores por setor",
	Long:          "Preenchimento, rascunhos, aprovação e administração de indicadores por setor.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if apiURL != "" {
			cfg.APIURL = strings.TrimRight(apiURL, "/")
		}
		configurarLog(cfg.LogLevel)

		store, fechar, err := abrirStore(cfg)
		if err != nil {
			return err
		}
		encerrar = fechar

		clientMetrics := metrics.NewClientMetrics(prometheus.NewRegistry())
		client, err := api.New(api.Config{
			BaseURL: cfg.APIURL,
			Timeout: cfg.HTTPTimeout,
			Store:   store,
			RPS:     cfg.RateLimit.RequestsPerSecond,
			Burst:   cfg.RateLimit.Burst,
			Metrics: clientMetrics,
		})
		if err != nil {
			return err
		}

		controlador = painel.New(client, painel.Opcoes{
			Concorrencia:  cfg.Concorrencia,
			AdminCacheTTL: cfg.AdminCacheTTL,
			Metrics:       clientMetrics,
		})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		encerrar()
	},
}

func configurarLog(nivel string) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	level, err := zerolog.ParseLevel(nivel)
	if err != nil || nivel == "" {
		level = zerolog.WarnLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

func abrirStore(cfg *config.Config) (auth.TokenStore, func(), error) {
	switch cfg.SessionStore {
	case config.SessionRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("REDIS_URL inválida: %w", err)
		}
		rdb := redis.NewClient(opts)
		return auth.NewRedisStore(rdb, prefixoRedis, cfg.SessionTTL), func() { _ = rdb.Close() }, nil
	case config.SessionMemory:
		return auth.NewMemoryStore(), func() {}, nil
	default:
		store, err := auth.NewFileStore(cfg.SessionFile)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

// sessao restaura o usuário a partir do token salvo.
func sessao(ctx context.Context) error {
	if _, err := controlador.RestaurarSessao(ctx); err != nil {
		if errors.Is(err, api.ErrSemSessao) || errors.Is(err, api.ErrNaoAutorizado) {
			return fmt.Errorf("%w: execute painel login", err)
		}
		return err
	}
	return nil
}

func argID(args []string, nome string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("informe %s", nome)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s inválido: %q", nome, args[0])
	}
	return id, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		stop()
		os.Exit(1)
	}
}
