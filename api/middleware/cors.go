package middleware

import (
	"net/http"

	"github.com/angelmondragon/gearmarket-web/pkg/config"
	"github.com/go-chi/cors"
)

// CORS returns middleware that applies the configured origin policy. Credentials are
// allowed so the session cookie travels with cross-origin requests.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
