package server

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

// CORSMiddleware lets a browser app on another origin call the API with
// credentials. The request's Origin is echoed back, since credentialed
// responses cannot use a wildcard. When allowed is non-empty, other origins
// get no CORS headers. Preflight requests never reach the router.
func CORSMiddleware(allowed []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return len(allowed) == 0 || slices.Contains(allowed, origin)
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Cookie"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
