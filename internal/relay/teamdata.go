package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tjfontaine/fantasy-relay/internal/domain"
	"github.com/tjfontaine/fantasy-relay/internal/upstream"
)

// Candidate is one endpoint shape FetchTeamData may read team data from.
type Candidate struct {
	Name          string
	NeedsGameweek bool
	URL           func(up Upstream, accountID, gameweek int) string
}

// DefaultCandidates is the fixed priority order: owner-only team endpoint,
// public entry, then a specific gameweek's picks.
func DefaultCandidates() []Candidate {
	return []Candidate{
		{Name: "my-team", URL: func(up Upstream, id, _ int) string { return up.MyTeamURL(id) }},
		{Name: "entry", URL: func(up Upstream, id, _ int) string { return up.EntryURL(id) }},
		{Name: "picks", NeedsGameweek: true, URL: func(up Upstream, id, gw int) string { return up.PicksURL(id, gw) }},
	}
}

// Attempt records how one candidate went.
type Attempt struct {
	Candidate string           `json:"candidate"`
	Status    int              `json:"status,omitempty"`
	Kind      domain.ErrorKind `json:"kind,omitempty"`
}

// TeamDataResult is a successful fetch. Warning is set to
// domain.KindIncompleteOwnerData when picks lack owner-only price fields.
type TeamDataResult struct {
	Data         json.RawMessage
	EndpointUsed string
	Warning      domain.ErrorKind
	Attempts     []Attempt
}

// FetchTeamData reads accountID's team data with cookieHeader, walking the
// candidates in order. gameweek may be 0, in which case the configured
// GameweekSource supplies it; the picks candidate is skipped when neither does.
func (r *Relay) FetchTeamData(ctx context.Context, accountID, gameweek int, cookieHeader string) (*TeamDataResult, error) {
	if accountID <= 0 {
		return nil, domain.ErrInvalidRequest(fmt.Sprintf("invalid account id %d", accountID))
	}
	if cookieHeader == "" {
		return nil, domain.ErrAuthenticationRequired("no session cookies on request")
	}
	if gameweek <= 0 {
		gameweek = r.currentGameweek(ctx)
	}

	var (
		attempts []Attempt
		lastErr  error
	)
	for _, c := range DefaultCandidates() {
		if c.NeedsGameweek && gameweek <= 0 {
			continue
		}
		rawURL := c.URL(r.upstream, accountID, gameweek)

		resp, err := r.upstream.Get(ctx, rawURL, cookieHeader)
		if err != nil {
			if ctx.Err() != nil {
				return nil, domain.ErrUpstreamUnavailable("team data request cancelled").WithCause(ctx.Err())
			}
			lastErr = domain.ErrUpstreamUnavailable(fmt.Sprintf("%s request failed", c.Name)).WithCause(err)
			attempts = append(attempts, Attempt{Candidate: c.Name, Kind: domain.KindUpstreamUnavailable})
			r.logger.Debug("team data candidate unreachable", slog.String("candidate", c.Name), slog.String("error", err.Error()))
			continue
		}

		if !resp.OK() {
			attempts = append(attempts, Attempt{Candidate: c.Name, Status: resp.StatusCode})
			r.logger.Debug("team data candidate failed",
				slog.String("candidate", c.Name),
				slog.Int("upstream_status", resp.StatusCode))
			if r.policy.Decide(resp.StatusCode) == Stop {
				return nil, domain.ErrAuthenticationRequired("upstream refused the session").
					WithUpstreamStatus(resp.StatusCode)
			}
			lastErr = domain.ErrResourceFetch(fmt.Sprintf("%s returned status %d", c.Name, resp.StatusCode)).
				WithUpstreamStatus(resp.StatusCode)
			continue
		}

		if !json.Valid(resp.Body) {
			attempts = append(attempts, Attempt{Candidate: c.Name, Status: resp.StatusCode, Kind: domain.KindMalformedUpstreamResponse})
			lastErr = domain.ErrMalformedResponse(fmt.Sprintf("%s returned invalid JSON", c.Name))
			continue
		}

		attempts = append(attempts, Attempt{Candidate: c.Name, Status: resp.StatusCode})
		result := &TeamDataResult{
			Data:         json.RawMessage(resp.Body),
			EndpointUsed: c.Name,
			Attempts:     attempts,
		}
		if missingOwnerFields(resp.Body) {
			result.Warning = domain.KindIncompleteOwnerData
			r.logger.Info("team data lacks owner-only fields", slog.String("candidate", c.Name))
		}
		return result, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no candidate endpoints applied")
	}
	return nil, domain.ErrResourceFetch("all team data endpoints failed").
		WithUpstreamStatus(upstreamStatus(lastErr)).
		WithCause(lastErr)
}

func (r *Relay) currentGameweek(ctx context.Context) int {
	if r.gameweeks == nil {
		return 0
	}
	gw, err := r.gameweeks.CurrentGameweek(ctx)
	if err != nil {
		r.logger.Warn("current gameweek unavailable", slog.String("error", err.Error()))
		return 0
	}
	return gw
}

// missingOwnerFields reports whether body has a picks array in which some
// entry lacks purchase_price or selling_price. Payloads without picks pass.
func missingOwnerFields(body []byte) bool {
	var payload struct {
		Picks []upstream.Pick `json:"picks"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	for i := range payload.Picks {
		if !payload.Picks[i].HasOwnerFields() {
			return true
		}
	}
	return false
}

func upstreamStatus(err error) int {
	var re *domain.RelayError
	if errors.As(err, &re) {
		return re.UpstreamStatus
	}
	return 0
}
