// Package relay borrows a user's upstream login on behalf of the browser.
//
// The relay submits credentials to the upstream login form, follows the
// resulting redirect chain by hand so every Set-Cookie can be read, rewrites
// the collected cookies for cross-site browser storage and re-validates the
// session against the profile endpoint. It also verifies cookies a browser
// already holds and fetches owner-only team data with a multi-endpoint
// fallback. Nothing is stored: a session is exactly the cookies the browser
// sends back.
package relay

import (
	"context"
	"log/slog"

	"github.com/tjfontaine/fantasy-relay/internal/cookies"
	"github.com/tjfontaine/fantasy-relay/internal/upstream"
)

// DefaultMaxRedirects caps the number of hops followed after the login response.
const DefaultMaxRedirects = 5

// Fetcher issues a GET carrying a Cookie header.
type Fetcher interface {
	Get(ctx context.Context, rawURL, cookieHeader string) (*upstream.Response, error)
}

// Upstream is the part of the upstream client the relay drives.
type Upstream interface {
	Fetcher
	PostLogin(ctx context.Context, login, password string) (*upstream.Response, error)
	MeURL() string
	MyTeamURL(accountID int) string
	EntryURL(accountID int) string
	PicksURL(accountID, gameweek int) string
}

// GameweekSource supplies the current gameweek for the picks candidate.
type GameweekSource interface {
	CurrentGameweek(ctx context.Context) (int, error)
}

// Option configures a Relay.
type Option func(*Relay)

// WithMaxRedirects sets the redirect hop cap.
func WithMaxRedirects(n int) Option {
	return func(r *Relay) {
		r.maxRedirects = n
	}
}

// WithAuthMarkers replaces the cookie-name prefixes that identify a session.
func WithAuthMarkers(markers cookies.MarkerSet) Option {
	return func(r *Relay) {
		r.markers = markers
	}
}

// WithBotMarkers replaces the body substrings that identify a bot challenge.
func WithBotMarkers(markers []string) Option {
	return func(r *Relay) {
		r.bot = BotDetector{Markers: markers}
	}
}

// WithFallbackPolicy replaces the team-data fallback policy.
func WithFallbackPolicy(p FallbackPolicy) Option {
	return func(r *Relay) {
		r.policy = p
	}
}

// WithGameweekSource lets FetchTeamData fill in the current gameweek.
func WithGameweekSource(src GameweekSource) Option {
	return func(r *Relay) {
		r.gameweeks = src
	}
}

// WithDiagnostics includes truncated upstream bodies in error details.
// Meant for development only.
func WithDiagnostics(enabled bool) Option {
	return func(r *Relay) {
		r.diagnostics = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// Relay performs login, session verification and protected fetches.
// It holds no per-user state and is safe for concurrent use.
type Relay struct {
	upstream     Upstream
	follower     *RedirectChainFollower
	markers      cookies.MarkerSet
	bot          BotDetector
	policy       FallbackPolicy
	gameweeks    GameweekSource
	maxRedirects int
	diagnostics  bool
	logger       *slog.Logger
}

// New creates a Relay on top of an upstream client.
func New(up Upstream, opts ...Option) *Relay {
	r := &Relay{
		upstream:     up,
		markers:      cookies.DefaultAuthMarkers,
		bot:          DefaultBotDetector(),
		policy:       DefaultFallbackPolicy(),
		maxRedirects: DefaultMaxRedirects,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.follower = NewRedirectChainFollower(up, r.maxRedirects, r.logger)
	return r
}
