package painel

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/indicadores/internal/api"
	"github.com/gestaozabele/indicadores/internal/model"
	"github.com/gestaozabele/indicadores/internal/util"
)

// Login autentica, grava o token e guarda o usuário no estado.
func (c *Controlador) Login(ctx context.Context, email, senha string) (*model.Usuario, error) {
	email = strings.TrimSpace(email)
	if err := util.RequireString(email, "email"); err != nil {
		return nil, err
	}
	if err := util.RequireString(senha, "senha"); err != nil {
		return nil, err
	}

	u, err := c.api.Login(ctx, email, senha)
	if err != nil {
		log.Info().Str("email", email).Err(err).Msg("login recusado")
		return nil, err
	}

	c.encerrar()
	c.estado.definirUsuario(u)
	log.Info().Int64("user_id", u.ID).Str("perfil", string(u.Perfil)).Msg("login efetuado")
	return c.estado.Usuario(), nil
}

// RestaurarSessao valida o token salvo contra /api/me.
// Token ausente devolve api.ErrSemSessao; qualquer falha apaga o token.
func (c *Controlador) RestaurarSessao(ctx context.Context) (*model.Usuario, error) {
	_, ok, err := c.api.Token(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		_ = c.api.Logout(ctx)
		c.encerrar()
		return nil, api.ErrSemSessao
	}

	u, err := c.api.Me(ctx)
	if err != nil {
		if !errors.Is(err, api.ErrNaoAutorizado) {
			_ = c.api.Logout(ctx)
		}
		c.encerrar()
		return nil, err
	}

	c.estado.definirUsuario(u)
	return c.estado.Usuario(), nil
}

// Logout apaga o token e reinicia o estado.
func (c *Controlador) Logout(ctx context.Context) error {
	err := c.api.Logout(ctx)
	c.encerrar()
	return err
}
