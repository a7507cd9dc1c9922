package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/BillWilson/pat-checker/internal/config"
)

// CORS admits the configured frontend origins.  Wildcards in origins follow
// go-chi/cors rules ("https://*.example.com").
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}
