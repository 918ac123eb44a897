package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/tjfontaine/fantasy-relay/internal/config"
	"github.com/tjfontaine/fantasy-relay/internal/runtime"
	"github.com/tjfontaine/fantasy-relay/internal/setpieces"
)

var (
	serveFlags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "path to a YAML config file (optional, FANTASY_* env vars override it)",
			Value: "config.yaml",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error (default: log_level from config)",
		},
	}

	setPiecesFlags = []cli.Flag{
		cli.StringFlag{
			Name:  "in, i",
			Usage: "set-piece takers text dump",
			Value: "setpieces.txt",
		},
		cli.StringFlag{
			Name:  "out, o",
			Usage: "JSON output path",
			Value: "setpieces.json",
		},
		cli.StringSliceFlag{
			Name:  "club",
			Usage: "club heading to look for (repeatable, default: the 20 current clubs)",
		},
	}
)

func newApp(w io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "fantasy-relay"
	app.HelpName = "fantasy-relay"
	app.Usage = "session relay and prediction backend for a fantasy-football companion app"
	app.UsageText = "fantasy-relay <command> [arguments...]"
	app.Version = version
	app.Writer = w
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "run the HTTP relay",
			Flags:  serveFlags,
			Action: serve,
		},
		{
			Name:   "setpieces",
			Usage:  "extract set-piece takers from a text dump into JSON",
			Flags:  setPiecesFlags,
			Action: extractSetPieces,
		},
	}
	return app
}

func serve(c *cli.Context) error {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("failed to load config: %v", err), 1)
	}

	level := cfg.LogLevel
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	logger, err := newLogger(os.Stdout, level)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := runtime.New(ctx, cfg, runtime.WithLogger(logger))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("failed to create relay: %v", err), 1)
	}
	if err := app.Start(ctx); err != nil {
		return cli.NewExitError(fmt.Sprintf("failed to start relay: %v", err), 1)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping relay")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		return cli.NewExitError(fmt.Sprintf("shutdown error: %v", err), 1)
	}
	return nil
}

func extractSetPieces(c *cli.Context) error {
	clubs := c.StringSlice("club")
	if len(clubs) == 0 {
		clubs = setpieces.DefaultClubs
	}
	return runSetPieces(afero.NewOsFs(), c.App.Writer, c.String("in"), c.String("out"), clubs)
}

func runSetPieces(fs afero.Fs, w io.Writer, in, out string, clubs []string) error {
	table, err := setpieces.Extract(fs, in, out, clubs)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	fmt.Fprintf(w, "wrote %d clubs to %s\n", len(table), out)
	return nil
}

// newLogger builds the JSON logger used in production.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
