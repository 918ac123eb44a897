package relay

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tjfontaine/fantasy-relay/internal/cookies"
	"github.com/tjfontaine/fantasy-relay/internal/domain"
)

const (
	ReasonVerificationFailed = "verification failed"
	ReasonUnexpectedResponse = "unexpected response"
)

// VerifyResult describes whether a browser's cookies are a live upstream session.
type VerifyResult struct {
	IsLoggedIn  bool
	DisplayName string
	AccountID   int
	Reason      string
	// RefreshCookies are normalized Set-Cookie values the profile call returned.
	RefreshCookies []*http.Cookie
}

// HasSessionCookies reports whether cookieHeader names any authentication cookie.
func (r *Relay) HasSessionCookies(cookieHeader string) bool {
	return r.markers.AnyIn(cookieHeader)
}

// VerifySession checks the browser's existing cookies against the profile
// endpoint. Headers without any authentication cookie are answered locally
// without an upstream call. Only transport failures return an error.
func (r *Relay) VerifySession(ctx context.Context, cookieHeader string) (*VerifyResult, error) {
	if !r.HasSessionCookies(cookieHeader) {
		return &VerifyResult{IsLoggedIn: false}, nil
	}

	player, resp, err := r.whoami(ctx, cookieHeader)
	if err != nil {
		return nil, domain.ErrUpstreamUnavailable("session verification request failed").WithCause(err)
	}
	if !resp.OK() {
		r.logger.Debug("session verification failed", slog.Int("upstream_status", resp.StatusCode))
		return &VerifyResult{IsLoggedIn: false, Reason: ReasonVerificationFailed}, nil
	}
	if player == nil {
		return &VerifyResult{IsLoggedIn: false, Reason: ReasonUnexpectedResponse}, nil
	}

	refresh := cookies.NewJar()
	if _, err := refresh.AddSetCookies(resp.Header); err != nil {
		r.logger.Debug("skipped unparsable refresh cookie", slog.String("error", err.Error()))
	}

	return &VerifyResult{
		IsLoggedIn:     true,
		DisplayName:    player.DisplayName(),
		AccountID:      player.AccountID(),
		RefreshCookies: cookies.NormalizeAll(refresh.Unique()),
	}, nil
}
