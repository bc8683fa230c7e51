package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rakapradana/storefront/internal/errors"
	inHttp "github.com/rakapradana/storefront/internal/http"
	"github.com/rakapradana/storefront/internal/log"
	"github.com/rakapradana/storefront/internal/session"
)

// AttachSession parses an Authorization bearer token when present and puts
// the resulting session on the request context. Requests without a token pass
// through with the zero session; domain operations reject those with their
// own NotAuthenticated/Forbidden errors before any backend call.
func AttachSession(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := r.Context()
			logger := zerolog.Ctx(c).With().Str(log.KeyTag, "middleware AttachSession").Logger()

			authorization := r.Header.Get("Authorization")
			if authorization == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimPrefix(authorization, "Bearer ")
			token = strings.TrimPrefix(token, "bearer ")
			sess, err := session.FromToken(c, token, secretKey)
			if err != nil {
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    errors.ErrTokenInvalid.Error(),
				})
				return
			}

			c = session.AttachToContext(c, sess)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}

// RequireSession rejects requests that carry no authenticated session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := r.Context()
		logger := zerolog.Ctx(c).With().Str(log.KeyTag, "middleware RequireSession").Logger()

		if !session.FromContext(c).Authenticated() {
			logger.Error().
				Err(errors.ErrEmptyAuth).
				Msg(errors.ErrEmptyAuth.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusUnauthorized,
				"message":    errors.ErrEmptyAuth.Error(),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
