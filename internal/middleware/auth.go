package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arvglez/storefront/internal"
	inErrors "github.com/arvglez/storefront/internal/errors"
	"github.com/arvglez/storefront/internal/log"
	"github.com/arvglez/storefront/internal/response"
)

func Auth(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(log.KeyTag, "middleware Auth").
				Logger()
			c := logger.WithContext(r.Context())

			authorization := r.Header.Get("Authorization")
			if authorization == "" || !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
				logger.Error().
					Err(inErrors.ErrEmptyAuth).
					Msg(inErrors.ErrEmptyAuth.Error())
				response.WriteJsonResponse(c, w, http.StatusUnauthorized, map[string]interface{}{
					"status":  "failed",
					"message": inErrors.ErrEmptyAuth.Error(),
				})
				return
			}

			token := authorization[len("bearer "):]
			jwtToken, err := internal.VerifyToken(c, token, secretKey)
			if err != nil {
				logger.Error().Err(err).Msg(err.Error())
				response.WriteJsonResponse(c, w, http.StatusUnauthorized, map[string]interface{}{
					"status":  "failed",
					"message": inErrors.ErrTokenInvalid.Error(),
				})
				return
			}

			c = internal.AttachJwtToken(c, jwtToken)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
