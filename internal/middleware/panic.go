package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/arvglez/storefront/internal/otel"
	"github.com/arvglez/storefront/internal/response"
)

func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, span := otel.Tracer.Start(r.Context(), "RecoverPanic")
		defer span.End()

		logger := zerolog.Ctx(c).With().Logger()
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				logger.Error().Err(err).Stack().Msg("recovered from panic")
				otel.RecordError(err, span)
				response.WriteJsonResponse(c, w, http.StatusInternalServerError, map[string]interface{}{
					"status":  "failed",
					"message": "Internal Server Error",
				})
				return
			}
		}()

		next.ServeHTTP(w, r)
	})
}
