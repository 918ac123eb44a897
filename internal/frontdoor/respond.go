package frontdoor

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tjfontaine/fantasy-relay/internal/domain"
	"github.com/tjfontaine/fantasy-relay/internal/server"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// errorBody is the failure shape shared by the JSON routes.
type errorBody struct {
	Success   bool             `json:"success"`
	Error     string           `json:"error"`
	ErrorKind domain.ErrorKind `json:"errorKind"`
	Detail    string           `json:"detail,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// describe maps err onto its relay error, records it on the request log and
// returns the status and payload to send.
func (h *Handler) describe(r *http.Request, err error) (int, errorBody) {
	re := domain.AsRelayError(err)
	server.AddError(r.Context(), err)
	server.AddLogField(r.Context(), "error_kind", string(re.Kind))

	body := errorBody{Error: re.Message, ErrorKind: re.Kind}
	if h.devMode {
		body.Detail = re.Detail
	}
	return re.HTTPStatusCode(), body
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := h.describe(r, err)
	h.writeJSON(w, status, body)
}
