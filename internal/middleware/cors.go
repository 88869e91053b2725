package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"rechnung-backend/internal/config"
)

// CORS builds the cross-origin policy from configuration. With no origins
// configured every origin is allowed, which suits local development.
func CORS(cfg *config.Config) func(http.Handler) http.Handler {
	origins := cfg.Server.CorsAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	methods := cfg.Server.CorsAllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	}
	headers := cfg.Server.CorsAllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Authorization", "Content-Type"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: methods,
		AllowedHeaders: headers,
	})
	return c.Handler
}
