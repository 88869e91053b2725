package middleware

import (
	"net/http"
	"runtime/debug"

	"rechnung-backend/internal/logger"
	"rechnung-backend/pkg/utils"
)

// PanicRecovery turns handler panics into a JSON 500 instead of killing
// the connection.
func PanicRecovery(next http.Handler) http.Handler {
	log := logger.WithComponent("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("handler panic")
				utils.JSON(w, http.StatusInternalServerError, utils.Response{
					Success: false,
					Error:   "Interner Serverfehler",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
