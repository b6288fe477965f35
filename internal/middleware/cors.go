package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

// CORS returns a CORS middleware for the given origins. A "*" entry allows
// any origin without credentials.
func CORS(origins []string) func(http.Handler) http.Handler {
	wildcard := len(origins) == 0 || slices.Contains(origins, "*")
	if wildcard {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Correlation-ID"},
		ExposedHeaders:   []string{"X-Correlation-ID", "Retry-After"},
		AllowCredentials: !wildcard,
		MaxAge:           86400,
	})
}
