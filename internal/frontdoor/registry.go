// Package frontdoor provides the browser-facing HTTP handlers. Each handler
// decodes the request, calls the relay, reference-data or prediction service,
// and translates the result (or its *domain.RelayError) into JSON.
//
// Handlers are exposed as HandlerRegistrations so the runtime can mount them
// on any chi router:
//
//	h := frontdoor.NewHandler(frontdoor.Config{Relay: r, Reference: ref, Crests: crests})
//	h.Mount(router)
package frontdoor

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HandlerRegistration represents a registered HTTP handler.
type HandlerRegistration struct {
	Path    string
	Method  string
	Handler func(http.ResponseWriter, *http.Request)
}

// Routes returns every route the handler serves. The set-pieces route is only
// present when a table was loaded.
func (h *Handler) Routes() []HandlerRegistration {
	routes := []HandlerRegistration{
		{Path: "/healthz", Method: http.MethodGet, Handler: h.HandleHealth},
		{Path: "/api/auth/login", Method: http.MethodPost, Handler: h.HandleLogin},
		{Path: "/api/auth/verify", Method: http.MethodGet, Handler: h.HandleVerify},
		{Path: "/api/team/{accountID}", Method: http.MethodGet, Handler: h.HandleTeam},
		{Path: "/api/bootstrap-static", Method: http.MethodGet, Handler: h.HandleBootstrap},
		{Path: "/api/teams", Method: http.MethodGet, Handler: h.HandleTeams},
		{Path: "/api/crests/{code}", Method: http.MethodGet, Handler: h.HandleCrest},
		{Path: "/api/predictions", Method: http.MethodGet, Handler: h.HandleUpcomingPredictions},
		{Path: "/api/predictions", Method: http.MethodPost, Handler: h.HandlePredictions},
	}
	if h.setPieces != nil {
		routes = append(routes, HandlerRegistration{
			Path: "/api/set-pieces", Method: http.MethodGet, Handler: h.HandleSetPieces,
		})
	}
	return routes
}

// Mount registers every route on r.
func (h *Handler) Mount(r chi.Router) {
	for _, reg := range h.Routes() {
		r.MethodFunc(reg.Method, reg.Path, reg.Handler)
	}
}
