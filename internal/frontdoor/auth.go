package frontdoor

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/fantasy-relay/internal/cookies"
	"github.com/tjfontaine/fantasy-relay/internal/domain"
	"github.com/tjfontaine/fantasy-relay/internal/relay"
	"github.com/tjfontaine/fantasy-relay/internal/server"
)

// LoginRequest is the JSON login body. Form posts use the same field names.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success     bool             `json:"success"`
	DisplayName string           `json:"displayName,omitempty"`
	AccountID   int              `json:"accountId,omitempty"`
	Message     string           `json:"message,omitempty"`
	Error       string           `json:"error,omitempty"`
	ErrorKind   domain.ErrorKind `json:"errorKind,omitempty"`
	Detail      string           `json:"detail,omitempty"`
}

type VerifyResponse struct {
	IsLoggedIn  bool             `json:"isLoggedIn"`
	DisplayName string           `json:"displayName,omitempty"`
	AccountID   int              `json:"accountId,omitempty"`
	Reason      string           `json:"reason,omitempty"`
	Error       string           `json:"error,omitempty"`
	ErrorKind   domain.ErrorKind `json:"errorKind,omitempty"`
}

type TeamResponse struct {
	Success      bool             `json:"success"`
	Data         json.RawMessage  `json:"data,omitempty"`
	EndpointUsed string           `json:"endpointUsed,omitempty"`
	Warning      domain.ErrorKind `json:"warning,omitempty"`
	Attempts     []relay.Attempt  `json:"attempts,omitempty"`
}

// HandleLogin signs the user in upstream and installs the resulting session
// cookies on the response.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := decodeCredentials(w, r)
	if err != nil {
		h.writeLoginError(w, r, err)
		return
	}

	result, err := h.relay.Login(r.Context(), creds)
	if err != nil {
		h.logger.Info("login failed", slog.String("error_kind", string(domain.KindOf(err))))
		h.writeLoginError(w, r, err)
		return
	}

	server.AddLogField(r.Context(), "account_id", strconv.Itoa(result.AccountID))
	cookies.Install(w, result.Cookies)
	h.writeJSON(w, http.StatusOK, LoginResponse{
		Success:     true,
		DisplayName: result.DisplayName,
		AccountID:   result.AccountID,
		Message:     result.Message,
	})
}

func (h *Handler) writeLoginError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := h.describe(r, err)
	h.writeJSON(w, status, LoginResponse{
		Error:     body.Error,
		ErrorKind: body.ErrorKind,
		Detail:    body.Detail,
	})
}

// decodeCredentials accepts a JSON body or a URL-encoded or multipart form.
func decodeCredentials(w http.ResponseWriter, r *http.Request) (relay.Credentials, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return relay.Credentials{}, domain.ErrInvalidRequest("invalid form body").WithCause(err)
		}
		return relay.Credentials{Login: r.PostFormValue("login"), Password: r.PostFormValue("password")}, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return relay.Credentials{}, domain.ErrInvalidRequest("invalid form body").WithCause(err)
		}
		return relay.Credentials{Login: r.PostFormValue("login"), Password: r.PostFormValue("password")}, nil
	default:
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return relay.Credentials{}, domain.ErrInvalidRequest("invalid JSON body").WithCause(err)
		}
		return relay.Credentials{Login: req.Login, Password: req.Password}, nil
	}
}

// HandleVerify reports whether the browser's cookies are a live upstream
// session, forwarding any refreshed cookies.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	result, err := h.relay.VerifySession(r.Context(), r.Header.Get("Cookie"))
	if err != nil {
		status, body := h.describe(r, err)
		h.writeJSON(w, status, VerifyResponse{Error: body.Error, ErrorKind: body.ErrorKind})
		return
	}

	cookies.Install(w, result.RefreshCookies)
	h.writeJSON(w, http.StatusOK, VerifyResponse{
		IsLoggedIn:  result.IsLoggedIn,
		DisplayName: result.DisplayName,
		AccountID:   result.AccountID,
		Reason:      result.Reason,
	})
}

// HandleTeam fetches the account's team data with the browser's cookies.
func (h *Handler) HandleTeam(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.Atoi(chi.URLParam(r, "accountID"))
	if err != nil || accountID <= 0 {
		h.writeError(w, r, domain.ErrInvalidRequest("account id must be a positive integer"))
		return
	}
	gameweek, err := queryInt(r, "gameweek", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.relay.FetchTeamData(r.Context(), accountID, gameweek, r.Header.Get("Cookie"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	server.AddLogField(r.Context(), "endpoint_used", result.EndpointUsed)
	resp := TeamResponse{
		Success:      true,
		Data:         result.Data,
		EndpointUsed: result.EndpointUsed,
		Warning:      result.Warning,
	}
	if h.devMode {
		resp.Attempts = result.Attempts
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, domain.ErrInvalidRequest(name + " must be a non-negative integer")
	}
	return v, nil
}
