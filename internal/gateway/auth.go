package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rakapradana/storefront/internal/errors"
	"github.com/rakapradana/storefront/internal/log"
	"github.com/rakapradana/storefront/internal/otel"
)

type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult carries the opaque credential plus the role flags the backend
// derived for the account. The flags also live in the token claims; the
// explicit fields keep the login response self-describing for the UI.
type AuthResult struct {
	Token         string `json:"token"`
	ProductAdmin  bool   `json:"product_admin"`
	DeliveryAdmin bool   `json:"delivery_admin"`
}

func (g *Client) Login(c context.Context, credentials Credentials) (AuthResult, error) {
	c, span := otel.Tracer.Start(c, "Client Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client Login").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "logging in").Logger()
	logger.Info().Msg("logging in")
	result := AuthResult{}
	err := g.do(c, http.MethodPost, "/auth/login", "", credentials, &result, false)
	if err != nil {
		err = fmt.Errorf("failed logging in with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return AuthResult{}, err
	}
	logger.Info().Msg("logged in")

	return result, nil
}

func (g *Client) Register(c context.Context, credentials Credentials) (AuthResult, error) {
	c, span := otel.Tracer.Start(c, "Client Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client Register").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "registering").Logger()
	logger.Info().Msg("registering")
	result := AuthResult{}
	err := g.do(c, http.MethodPost, "/auth/register", "", credentials, &result, false)
	if err != nil {
		err = fmt.Errorf("failed registering with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return AuthResult{}, err
	}
	logger.Info().Msg("registered")

	return result, nil
}
