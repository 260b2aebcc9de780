package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/gestaozabele/indicadores/internal/auth"
	"github.com/gestaozabele/indicadores/internal/metrics"
	"github.com/gestaozabele/indicadores/internal/util"
)

const maxBody = 4 << 20

var (
	// ErrNaoAutorizado indica sessão expirada (401 ou token local inválido); o logout já foi feito.
	ErrNaoAutorizado = errors.New("sessão expirada")
	// ErrSemSessao indica chamada autenticada sem token salvo.
	ErrSemSessao = errors.New("sessão não iniciada")
	// ErrRespostaInvalida indica corpo que não é JSON válido.
	ErrRespostaInvalida = errors.New("resposta inválida do servidor")
)

// Error carrega o status HTTP e a mensagem devolvida pelo backend.
type Error struct {
	Status   int
	Mensagem string
}

func (e *Error) Error() string {
	return e.Mensagem
}

// StatusDe devolve o status HTTP de err, ou 0 quando não veio do backend.
func StatusDe(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Config descreve como o cliente fala com o backend.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Store      auth.TokenStore
	RPS        float64
	Burst      int
	Metrics    *metrics.ClientMetrics
	HTTPClient *http.Client
}

// Client encapsula chamadas ao backend de indicadores.
type Client struct {
	httpClient *http.Client
	baseURL    string
	store      auth.TokenStore
	limiter    *rate.Limiter
	metrics    *metrics.ClientMetrics

	mu             sync.Mutex
	onUnauthorized func(ctx context.Context)
}

// New cria o cliente; Store é obrigatório.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api: url base obrigatória")
	}
	if cfg.Store == nil {
		return nil, errors.New("api: store de sessão obrigatório")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		store:      cfg.Store,
		limiter:    rate.NewLimiter(limit, burst),
		metrics:    cfg.Metrics,
	}, nil
}

// OnUnauthorized registra o gancho executado após um logout forçado.
func (c *Client) OnUnauthorized(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// Token devolve o token salvo já normalizado.
func (c *Client) Token(ctx context.Context) (string, bool, error) {
	raw, err := c.store.Get(ctx)
	if err != nil {
		return "", false, fmt.Errorf("ler sessão: %w", err)
	}
	token, ok := auth.NormalizeToken(raw)
	return token, ok, nil
}

// Logout remove o token salvo.
func (c *Client) Logout(ctx context.Context) error {
	return c.store.Clear(ctx)
}

func (c *Client) forceLogout(ctx context.Context, motivo string) {
	if err := c.store.Clear(ctx); err != nil {
		log.Warn().Err(err).Msg("api: falha ao limpar sessão")
	}
	c.metrics.ForcedLogout()
	log.Warn().Str("motivo", motivo).Msg("sessão encerrada")

	c.mu.Lock()
	hook := c.onUnauthorized
	c.mu.Unlock()
	if hook != nil {
		hook(ctx)
	}
}

func (c *Client) bearer(ctx context.Context) (string, error) {
	raw, err := c.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("ler sessão: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return "", ErrSemSessao
	}
	token, ok := auth.NormalizeToken(raw)
	if !ok {
		c.forceLogout(ctx, "token inválido")
		return "", ErrNaoAutorizado
	}
	return token, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", util.NewRequestID())
	return req, nil
}

// do executa a requisição; autenticado exige token válido antes de ir à rede.
func (c *Client) do(ctx context.Context, method, path string, body any, autenticado bool, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if autenticado {
		token, err := c.bearer(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, 0, time.Since(start))
		log.Warn().Err(err).Str("method", method).Str("path", path).Msg("api: falha de rede")
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	dur := time.Since(start)
	c.metrics.ObserveRequest(method, resp.StatusCode, dur)
	log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("duration", dur).Str("request_id", req.Header.Get("X-Request-ID")).Msg("api_request")
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && autenticado {
		c.forceLogout(ctx, "401")
		return ErrNaoAutorizado
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return erroHTTP(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrRespostaInvalida, err)
	}
	return nil
}

func erroHTTP(status int, raw []byte) error {
	var payload struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if msg, ok := payload.Error.(string); ok && strings.TrimSpace(msg) != "" {
			return &Error{Status: status, Mensagem: msg}
		}
	}
	return &Error{Status: status, Mensagem: fmt.Sprintf("Erro HTTP %d", status)}
}
