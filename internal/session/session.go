package session

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rakapradana/storefront/internal/errors"
	"github.com/rakapradana/storefront/internal/log"
	"github.com/rakapradana/storefront/internal/otel"
)

// Session is the immutable per-login value the storefront carries around.
// Role flags are derived from the login response's token claims and never
// mutated afterwards; logout simply drops the value.
type Session struct {
	Token           string
	UserID          uuid.UUID
	IsProductAdmin  bool
	IsDeliveryAdmin bool
}

func (s Session) Authenticated() bool {
	return s.Token != "" && s.UserID != uuid.Nil
}

type Claims struct {
	jwt.RegisteredClaims
	ProductAdmin  bool `json:"product_admin"`
	DeliveryAdmin bool `json:"delivery_admin"`
}

func FromToken(c context.Context, token string, secretKey string) (Session, error) {
	c, span := otel.Tracer.Start(c, "session FromToken")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "session FromToken").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing claims").Logger()
	logger.Trace().Msg("parsing claims")
	claims := Claims{}
	jwtToken, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (interface{}, error) { return []byte(secretKey), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing claims with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Session{}, err
	}
	if !jwtToken.Valid {
		err = fmt.Errorf("failed validating token with error=%w", errors.ErrTokenInvalid)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Session{}, errors.ErrTokenInvalid
	}
	logger.Trace().Msg("parsed claims")

	logger = logger.With().Str(log.KeyProcess, "parsing subject").Logger()
	logger.Trace().Msg("parsing subject")
	subject, err := claims.GetSubject()
	if err != nil {
		err = fmt.Errorf("failed getting subject from claims with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Session{}, err
	}
	userId, err := uuid.Parse(subject)
	if err != nil {
		err = fmt.Errorf("failed parsing subject=%s with error=%w", subject, err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Session{}, err
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()
	logger.Trace().Msg("parsed subject as userId")

	return Session{
		Token:           token,
		UserID:          userId,
		IsProductAdmin:  claims.ProductAdmin,
		IsDeliveryAdmin: claims.DeliveryAdmin,
	}, nil
}

type sessionKey struct{}

func AttachToContext(c context.Context, s Session) context.Context {
	return context.WithValue(c, sessionKey{}, s)
}

func FromContext(c context.Context) Session {
	s, ok := c.Value(sessionKey{}).(Session)
	if !ok {
		return Session{}
	}
	return s
}
