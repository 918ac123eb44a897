package frontdoor

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/fantasy-relay/internal/domain"
	"github.com/tjfontaine/fantasy-relay/internal/setpieces"
)

const crestCacheControl = "public, max-age=86400"

type TeamsResponse struct {
	Success    bool           `json:"success"`
	ShortNames map[int]string `json:"shortNames"`
	IDs        map[string]int `json:"ids"`
}

type SetPiecesResponse struct {
	Success bool            `json:"success"`
	Clubs   setpieces.Table `json:"clubs"`
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleBootstrap passes the cached bootstrap payload through unchanged.
func (h *Handler) HandleBootstrap(w http.ResponseWriter, r *http.Request) {
	snap, err := h.reference.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(snap.Raw)
}

// HandleTeams returns the team id to short-name mapping and its inverse.
func (h *Handler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	snap, err := h.reference.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, TeamsResponse{
		Success:    true,
		ShortNames: snap.TeamShortNames,
		IDs:        snap.TeamIDs,
	})
}

// HandleCrest serves a club crest image from the crest cache.
func (h *Handler) HandleCrest(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil || code <= 0 {
		h.writeError(w, r, domain.ErrInvalidRequest("crest code must be a positive integer"))
		return
	}
	crest, err := h.crests.Get(r.Context(), code)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", crest.ContentType)
	w.Header().Set("Cache-Control", crestCacheControl)
	w.WriteHeader(http.StatusOK)
	w.Write(crest.Data)
}

func (h *Handler) HandleSetPieces(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, SetPiecesResponse{Success: true, Clubs: h.setPieces})
}
