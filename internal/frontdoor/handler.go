package frontdoor

import (
	"context"
	"log/slog"

	"github.com/tjfontaine/fantasy-relay/internal/prediction"
	"github.com/tjfontaine/fantasy-relay/internal/refdata"
	"github.com/tjfontaine/fantasy-relay/internal/relay"
	"github.com/tjfontaine/fantasy-relay/internal/setpieces"
	"github.com/tjfontaine/fantasy-relay/internal/upstream"
)

// SessionRelay is the part of *relay.Relay the handlers use.
type SessionRelay interface {
	Login(ctx context.Context, creds relay.Credentials) (*relay.LoginResult, error)
	VerifySession(ctx context.Context, cookieHeader string) (*relay.VerifyResult, error)
	FetchTeamData(ctx context.Context, accountID, gameweek int, cookieHeader string) (*relay.TeamDataResult, error)
}

// ReferenceData is the part of *refdata.Reference the handlers use.
type ReferenceData interface {
	Snapshot(ctx context.Context) (*refdata.Snapshot, error)
	Fixtures(ctx context.Context) ([]upstream.Fixture, error)
}

// CrestStore serves cached crest images.
type CrestStore interface {
	Get(ctx context.Context, teamCode int) (refdata.Crest, error)
}

// Config holds the handler's collaborators.
type Config struct {
	Relay     SessionRelay
	Reference ReferenceData
	Crests    CrestStore
	// Engine defaults to one with prediction.DefaultWeights.
	Engine *prediction.Engine
	// SetPieces is optional; nil disables /api/set-pieces.
	SetPieces setpieces.Table
	// DevMode exposes diagnostic detail in error payloads.
	DevMode bool
	Logger  *slog.Logger
}

type Handler struct {
	relay     SessionRelay
	reference ReferenceData
	crests    CrestStore
	engine    *prediction.Engine
	setPieces setpieces.Table
	devMode   bool
	logger    *slog.Logger
}

func NewHandler(cfg Config) *Handler {
	engine := cfg.Engine
	if engine == nil {
		engine = prediction.New(prediction.DefaultWeights())
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		relay:     cfg.Relay,
		reference: cfg.Reference,
		crests:    cfg.Crests,
		engine:    engine,
		setPieces: cfg.SetPieces,
		devMode:   cfg.DevMode,
		logger:    logger,
	}
}
