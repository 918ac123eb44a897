package frontdoor

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/tjfontaine/fantasy-relay/internal/domain"
	"github.com/tjfontaine/fantasy-relay/internal/prediction"
	"github.com/tjfontaine/fantasy-relay/internal/refdata"
	"github.com/tjfontaine/fantasy-relay/internal/server"
)

const (
	// maxPredictionWindow bounds how many gameweeks one request may predict.
	maxPredictionWindow = 10
	// maxPredictionPlayers covers every player in a season's bootstrap.
	maxPredictionPlayers = 1000
	// maxGameweek is the last gameweek of a season.
	maxGameweek = 38
)

// PredictionRequest carries caller-supplied engine input.
type PredictionRequest struct {
	Players   []prediction.PlayerStats `json:"players"`
	Schedule  prediction.Schedule      `json:"schedule"`
	Strengths prediction.Strengths     `json:"strengths"`
}

type PredictionResponse struct {
	Success     bool                                  `json:"success"`
	Gameweeks   []int                                 `json:"gameweeks"`
	Predictions map[int][]prediction.PredictionOutput `json:"predictions"`
	Totals      map[int]float64                       `json:"totals"`
	Total       float64                               `json:"total"`
}

// HandlePredictions runs the engine on the request body.
func (h *Handler) HandlePredictions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.ErrInvalidRequest("invalid JSON body").WithCause(err))
		return
	}
	if err := validatePredictionRequest(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, h.predict(req.Players, req.Schedule, req.Strengths))
}

// HandleUpcomingPredictions predicts upcoming gameweeks from cached reference
// data. Query parameters: from (default the current gameweek), count
// (default 1) and players (comma-separated ids, default all).
func (h *Handler) HandleUpcomingPredictions(w http.ResponseWriter, r *http.Request) {
	snap, err := h.reference.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	from, err := queryInt(r, "from", snap.CurrentGameweek())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if from == 0 {
		from = 1
	}
	if from < 1 || from > maxGameweek {
		h.writeError(w, r, domain.ErrInvalidRequest("from must be between 1 and "+strconv.Itoa(maxGameweek)))
		return
	}
	count, err := queryInt(r, "count", 1)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if count < 1 || count > maxPredictionWindow {
		h.writeError(w, r, domain.ErrInvalidRequest("count must be between 1 and "+strconv.Itoa(maxPredictionWindow)))
		return
	}
	players, err := selectPlayers(snap, r.URL.Query().Get("players"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	fixtures, err := h.reference.Fixtures(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// The window stops at the end of the season.
	count = min(count, maxGameweek-from+1)
	gameweeks := make([]int, count)
	for i := range gameweeks {
		gameweeks[i] = from + i
	}
	server.AddLogField(r.Context(), "gameweeks", strconv.Itoa(from)+"-"+strconv.Itoa(from+count-1))

	schedule := refdata.BuildSchedule(fixtures, gameweeks)
	h.writeJSON(w, http.StatusOK, h.predict(players, schedule, snap.Strengths()))
}

func (h *Handler) predict(players []prediction.PlayerStats, schedule prediction.Schedule, strengths prediction.Strengths) PredictionResponse {
	predictions := h.engine.PredictFutureGameweeks(players, schedule, strengths)
	return PredictionResponse{
		Success:     true,
		Gameweeks:   schedule.Gameweeks,
		Predictions: predictions,
		Totals:      prediction.TotalsByPlayer(predictions, schedule.Gameweeks),
		Total:       prediction.CalculateTotalPredictedPoints(predictions, schedule.Gameweeks),
	}
}

// validatePredictionRequest bounds the work a caller-supplied body can ask for.
func validatePredictionRequest(req PredictionRequest) error {
	if len(req.Schedule.Gameweeks) == 0 {
		return domain.ErrInvalidRequest("schedule.gameweeks must not be empty")
	}
	if len(req.Schedule.Gameweeks) > maxPredictionWindow {
		return domain.ErrInvalidRequest("schedule.gameweeks must list at most " + strconv.Itoa(maxPredictionWindow) + " gameweeks")
	}
	for _, gw := range req.Schedule.Gameweeks {
		if gw < 1 || gw > maxGameweek {
			return domain.ErrInvalidRequest("schedule.gameweeks must be between 1 and " + strconv.Itoa(maxGameweek))
		}
	}
	if len(req.Players) > maxPredictionPlayers {
		return domain.ErrInvalidRequest("players must list at most " + strconv.Itoa(maxPredictionPlayers) + " players")
	}
	return nil
}

// selectPlayers filters the snapshot's players by a comma-separated id list.
func selectPlayers(snap *refdata.Snapshot, ids string) ([]prediction.PlayerStats, error) {
	all := snap.Players()
	if ids == "" {
		return all, nil
	}
	wanted := map[int]bool{}
	for _, raw := range strings.Split(ids, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, domain.ErrInvalidRequest("players must be a comma-separated list of ids")
		}
		wanted[id] = true
	}
	out := make([]prediction.PlayerStats, 0, len(wanted))
	for _, p := range all {
		if wanted[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}
