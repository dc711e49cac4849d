// Package middleware provides reusable HTTP middleware for the Shopifree API.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORSHandler lets the merchant dashboard at the given origins call the API.
// Origins are compared verbatim, so they carry a scheme and no trailing slash.
// Content-Disposition is exposed for the CSV export filename.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
	})
	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}
