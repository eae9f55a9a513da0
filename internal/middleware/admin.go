package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/arvglez/storefront/internal"
	inErrors "github.com/arvglez/storefront/internal/errors"
	"github.com/arvglez/storefront/internal/log"
	"github.com/arvglez/storefront/internal/response"
)

// Admin must be chained after Auth; it only inspects the already verified
// token claims.
func Admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context()).
			With().
			Str(log.KeyTag, "middleware Admin").
			Logger()
		c := logger.WithContext(r.Context())

		if !internal.IsAdminFromJwtToken(c) {
			logger.Error().
				Err(inErrors.ErrForbidden).
				Msg(inErrors.ErrForbidden.Error())
			response.WriteJsonResponse(c, w, http.StatusForbidden, map[string]interface{}{
				"status":  "failed",
				"message": "administrator role is required",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
