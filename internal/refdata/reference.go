package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tjfontaine/fantasy-relay/internal/prediction"
	"github.com/tjfontaine/fantasy-relay/internal/upstream"
)

const (
	DefaultBootstrapTTL = 6 * time.Hour
	DefaultFixturesTTL  = 30 * time.Minute

	bootstrapKey = "bootstrap"
)

// Source is the upstream reference data the service caches.
type Source interface {
	FetchBootstrap(ctx context.Context) ([]byte, error)
	Fixtures(ctx context.Context, gameweek int) ([]upstream.Fixture, error)
}

// Snapshot is one decoded bootstrap payload plus the lookups derived from it.
type Snapshot struct {
	Raw            json.RawMessage
	Bootstrap      *upstream.Bootstrap
	TeamShortNames map[int]string
	TeamIDs        map[string]int
}

// NewSnapshot decodes a raw bootstrap payload and derives its lookups.
func NewSnapshot(raw []byte) (*Snapshot, error) {
	b, err := upstream.DecodeBootstrap(raw)
	if err != nil {
		return nil, err
	}
	s := &Snapshot{
		Raw:            json.RawMessage(raw),
		Bootstrap:      b,
		TeamShortNames: make(map[int]string, len(b.Teams)),
		TeamIDs:        make(map[string]int, len(b.Teams)),
	}
	for _, t := range b.Teams {
		s.TeamShortNames[t.ID] = t.ShortName
		s.TeamIDs[t.ShortName] = t.ID
	}
	return s, nil
}

// CurrentGameweek is the current gameweek, or the next one between gameweeks.
func (s *Snapshot) CurrentGameweek() int {
	return s.Bootstrap.CurrentEvent()
}

// Players converts every element into prediction input.
func (s *Snapshot) Players() []prediction.PlayerStats {
	out := make([]prediction.PlayerStats, 0, len(s.Bootstrap.Elements))
	for i := range s.Bootstrap.Elements {
		e := &s.Bootstrap.Elements[i]
		out = append(out, prediction.PlayerStats{
			ID:              e.ID,
			Name:            e.WebName,
			TeamID:          e.Team,
			Position:        prediction.Position(e.ElementType),
			Form:            e.FormValue(),
			TotalPoints:     e.TotalPoints,
			Price:           e.Price(),
			Minutes:         e.Minutes,
			Starts:          e.Starts,
			ChanceOfPlaying: e.ChanceOfPlayingNextRound,
		})
	}
	return out
}

// Strengths returns each team's overall rating.
func (s *Snapshot) Strengths() prediction.Strengths {
	out := make(prediction.Strengths, len(s.Bootstrap.Teams))
	for _, t := range s.Bootstrap.Teams {
		out[t.ID] = prediction.TeamStrength{Overall: t.Strength}
	}
	return out
}

// BuildSchedule turns upstream fixtures into per-team fixtures for gameweeks.
// Fixtures without a gameweek (postponed, unscheduled) are ignored.
func BuildSchedule(fixtures []upstream.Fixture, gameweeks []int) prediction.Schedule {
	wanted := make(map[int]bool, len(gameweeks))
	for _, gw := range gameweeks {
		wanted[gw] = true
	}
	byTeam := map[int][]prediction.PlayerFixture{}
	for _, f := range fixtures {
		if f.Event == nil || !wanted[*f.Event] {
			continue
		}
		gw := *f.Event
		byTeam[f.TeamH] = append(byTeam[f.TeamH], prediction.PlayerFixture{
			Gameweek: gw, OpponentTeamID: f.TeamA, IsHome: true, Kickoff: f.KickoffTime,
		})
		byTeam[f.TeamA] = append(byTeam[f.TeamA], prediction.PlayerFixture{
			Gameweek: gw, OpponentTeamID: f.TeamH, IsHome: false, Kickoff: f.KickoffTime,
		})
	}
	return prediction.Schedule{Gameweeks: gameweeks, ByTeam: byTeam}
}

// ReferenceOption configures a Reference.
type ReferenceOption func(*Reference)

// WithSharedStore shares bootstrap payloads through store.
func WithSharedStore(store SharedStore) ReferenceOption {
	return func(r *Reference) {
		r.shared = store
	}
}

// WithBootstrapTTL sets how long a bootstrap snapshot is served.
func WithBootstrapTTL(ttl time.Duration) ReferenceOption {
	return func(r *Reference) {
		r.bootstrapTTL = ttl
	}
}

// WithFixturesTTL sets how long the fixture list is served.
func WithFixturesTTL(ttl time.Duration) ReferenceOption {
	return func(r *Reference) {
		r.fixturesTTL = ttl
	}
}

// WithClock overrides the clock used for expiry.
func WithClock(clock Clock) ReferenceOption {
	return func(r *Reference) {
		r.clock = clock
	}
}

// WithReferenceLogger sets the logger.
func WithReferenceLogger(logger *slog.Logger) ReferenceOption {
	return func(r *Reference) {
		r.logger = logger
	}
}

// Reference serves cached bootstrap and fixture data.
type Reference struct {
	src          Source
	shared       SharedStore
	bootstrapTTL time.Duration
	fixturesTTL  time.Duration
	clock        Clock
	logger       *slog.Logger

	bootstrap *Cache[*Snapshot]
	fixtures  *Cache[[]upstream.Fixture]
}

// NewReference creates a reference-data service over src.
func NewReference(src Source, opts ...ReferenceOption) *Reference {
	r := &Reference{
		src:          src,
		bootstrapTTL: DefaultBootstrapTTL,
		fixturesTTL:  DefaultFixturesTTL,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.bootstrap = NewCache(r.bootstrapTTL, r.loadBootstrap, r.clock)
	r.fixtures = NewCache(r.fixturesTTL, func(ctx context.Context) ([]upstream.Fixture, error) {
		return r.src.Fixtures(ctx, 0)
	}, r.clock)
	return r
}

// Snapshot returns the current bootstrap snapshot.
func (r *Reference) Snapshot(ctx context.Context) (*Snapshot, error) {
	return r.bootstrap.GetOrRefresh(ctx)
}

// CurrentGameweek returns the current gameweek from the bootstrap snapshot.
func (r *Reference) CurrentGameweek(ctx context.Context) (int, error) {
	s, err := r.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return s.CurrentGameweek(), nil
}

// Fixtures returns the season's fixture list.
func (r *Reference) Fixtures(ctx context.Context) ([]upstream.Fixture, error) {
	return r.fixtures.GetOrRefresh(ctx)
}

// Invalidate drops cached data locally and in the shared store.
func (r *Reference) Invalidate(ctx context.Context) {
	r.bootstrap.Invalidate()
	r.fixtures.Invalidate()
	if r.shared != nil {
		if err := r.shared.Delete(ctx, bootstrapKey); err != nil {
			r.logger.Warn("failed to delete shared bootstrap", slog.String("error", err.Error()))
		}
	}
}

func (r *Reference) loadBootstrap(ctx context.Context) (*Snapshot, error) {
	if r.shared != nil {
		raw, ok, err := r.shared.Get(ctx, bootstrapKey)
		switch {
		case err != nil:
			r.logger.Warn("shared bootstrap unavailable", slog.String("error", err.Error()))
		case ok:
			if s, err := NewSnapshot(raw); err == nil {
				r.logger.Debug("bootstrap loaded from shared store")
				return s, nil
			}
			r.logger.Warn("discarding unreadable shared bootstrap")
		}
	}

	raw, err := r.src.FetchBootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch bootstrap: %w", err)
	}
	s, err := NewSnapshot(raw)
	if err != nil {
		return nil, err
	}
	r.logger.Info("bootstrap refreshed",
		slog.Int("teams", len(s.Bootstrap.Teams)),
		slog.Int("players", len(s.Bootstrap.Elements)),
		slog.Int("current_gameweek", s.CurrentGameweek()))

	if r.shared != nil {
		if err := r.shared.Set(ctx, bootstrapKey, raw, r.bootstrapTTL); err != nil {
			r.logger.Warn("failed to share bootstrap", slog.String("error", err.Error()))
		}
	}
	return s, nil
}
