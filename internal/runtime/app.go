// Package runtime wires configuration into the relay's services and serves them.
//
// Example:
//
//	cfg, _ := config.Load("config.yaml")
//	app, err := runtime.New(ctx, cfg, runtime.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Shutdown(context.Background())
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/spf13/afero"

	"github.com/tjfontaine/fantasy-relay/internal/config"
	"github.com/tjfontaine/fantasy-relay/internal/cookies"
	"github.com/tjfontaine/fantasy-relay/internal/frontdoor"
	"github.com/tjfontaine/fantasy-relay/internal/pkg/safehttp"
	"github.com/tjfontaine/fantasy-relay/internal/refdata"
	"github.com/tjfontaine/fantasy-relay/internal/relay"
	"github.com/tjfontaine/fantasy-relay/internal/server"
	"github.com/tjfontaine/fantasy-relay/internal/setpieces"
	"github.com/tjfontaine/fantasy-relay/internal/telemetry"
	"github.com/tjfontaine/fantasy-relay/internal/upstream"
)

// App is the assembled relay: upstream client, caches, relay, handlers and
// HTTP server.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	fs         afero.Fs
	httpClient *http.Client
	store      refdata.SharedStore
	ownsStore  bool

	upstream  *upstream.Client
	reference *refdata.Reference
	crests    *refdata.Crests
	relay     *relay.Relay
	handler   *frontdoor.Handler
	server    *server.Server

	stopTracer telemetry.ShutdownFunc

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

// New builds every component from cfg. It dials Redis when enabled, so ctx
// bounds that connection attempt.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}

	a := &App{
		cfg:    cfg,
		logger: slog.Default(),
		fs:     afero.NewOsFs(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	stopTracer, err := telemetry.Setup(cfg.Telemetry.Enabled, cfg.Telemetry.ServiceName, a.logger)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.stopTracer = stopTracer

	if err := a.initServices(ctx); err != nil {
		a.close(ctx)
		return nil, err
	}

	a.server = server.New(server.Options{
		Port:           cfg.Server.Port,
		RequestTimeout: cfg.Server.RequestTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ServiceName:    cfg.Telemetry.ServiceName,
		Logger:         a.logger,
	})
	a.handler.Mount(a.server.Router)

	return a, nil
}

func (a *App) initServices(ctx context.Context) error {
	cfg := a.cfg

	if a.httpClient == nil {
		a.httpClient = safehttp.NewClient(safehttp.Options{
			Timeout:               cfg.Upstream.Timeout,
			BlockPrivateAddresses: cfg.Upstream.BlockPrivateAddresses,
		})
	}

	clientOpts := []upstream.ClientOption{
		upstream.WithHTTPClient(a.httpClient),
		upstream.WithTimeout(cfg.Upstream.Timeout),
	}
	if cfg.Upstream.LoginURL != "" {
		clientOpts = append(clientOpts, upstream.WithLoginURL(cfg.Upstream.LoginURL))
	}
	if cfg.Upstream.APIBaseURL != "" {
		clientOpts = append(clientOpts, upstream.WithAPIBaseURL(cfg.Upstream.APIBaseURL))
	}
	if cfg.Upstream.CrestBaseURL != "" {
		clientOpts = append(clientOpts, upstream.WithCrestBaseURL(cfg.Upstream.CrestBaseURL))
	}
	if cfg.Upstream.UserAgent != "" {
		clientOpts = append(clientOpts, upstream.WithUserAgent(cfg.Upstream.UserAgent))
	}
	a.upstream = upstream.NewClient(clientOpts...)

	if a.store == nil && cfg.Redis.Enabled {
		store, err := refdata.NewRedisStore(ctx, refdata.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		a.store = store
		a.ownsStore = true
		a.logger.Info("shared reference store enabled", slog.String("addr", cfg.Redis.Addr))
	}

	refOpts := []refdata.ReferenceOption{
		refdata.WithBootstrapTTL(cfg.Cache.BootstrapTTL),
		refdata.WithFixturesTTL(cfg.Cache.FixturesTTL),
		refdata.WithReferenceLogger(a.logger),
	}
	if a.store != nil {
		refOpts = append(refOpts, refdata.WithSharedStore(a.store))
	}
	a.reference = refdata.NewReference(a.upstream, refOpts...)
	a.crests = refdata.NewCrests(a.upstream, cfg.Cache.CrestSize, cfg.Cache.CrestTTL)

	relayOpts := []relay.Option{
		relay.WithMaxRedirects(cfg.Relay.MaxRedirects),
		relay.WithGameweekSource(a.reference),
		relay.WithDiagnostics(cfg.DevMode),
		relay.WithLogger(a.logger),
	}
	if len(cfg.Relay.AuthMarkers) > 0 {
		relayOpts = append(relayOpts, relay.WithAuthMarkers(cookies.MarkerSet(cfg.Relay.AuthMarkers)))
	}
	if len(cfg.Relay.BotMarkers) > 0 {
		relayOpts = append(relayOpts, relay.WithBotMarkers(cfg.Relay.BotMarkers))
	}
	a.relay = relay.New(a.upstream, relayOpts...)

	var table setpieces.Table
	if cfg.SetPieces.Path != "" {
		t, err := setpieces.Load(a.fs, cfg.SetPieces.Path)
		if err != nil {
			return fmt.Errorf("load set pieces: %w", err)
		}
		table = t
		a.logger.Info("set-piece table loaded", slog.Int("clubs", len(table)))
	}

	a.handler = frontdoor.NewHandler(frontdoor.Config{
		Relay:     a.relay,
		Reference: a.reference,
		Crests:    a.crests,
		SetPieces: table,
		DevMode:   cfg.DevMode,
		Logger:    a.logger,
	})
	return nil
}

// Handler returns the fully wired HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Router
}

// Start serves HTTP in the background and warms the bootstrap cache.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return errors.New("already started")
	}

	a.ctx, a.cancel = context.WithCancel(ctx)

	// Start HTTP server
	if err := a.server.Start(); err != nil {
		a.cancel()
		return fmt.Errorf("start server: %w", err)
	}
	a.started = true

	go a.warm(a.ctx)

	a.logger.Info("relay started",
		slog.Int("port", a.cfg.Server.Port),
		slog.Bool("dev_mode", a.cfg.DevMode),
		slog.Bool("shared_store", a.store != nil))

	return nil
}

// warm loads the bootstrap snapshot so the first request does not pay for it.
func (a *App) warm(ctx context.Context) {
	if _, err := a.reference.Snapshot(ctx); err != nil && ctx.Err() == nil {
		a.logger.Warn("bootstrap prefetch failed", slog.String("error", err.Error()))
	}
}

// Shutdown gracefully stops the relay.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.logger.Info("shutting down relay")

	if a.cancel != nil {
		a.cancel()
	}

	// Stop HTTP server
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("failed to shutdown server", slog.String("error", err.Error()))
			return err
		}
	}

	a.close(ctx)
	a.started = false

	a.logger.Info("relay shutdown complete")
	return nil
}

// close releases resources the App opened itself.
func (a *App) close(ctx context.Context) {
	if a.ownsStore && a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("failed to close shared store", slog.String("error", err.Error()))
		}
		a.store = nil
	}

	if a.stopTracer != nil {
		if err := a.stopTracer(ctx); err != nil {
			a.logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
		a.stopTracer = nil
	}
}
