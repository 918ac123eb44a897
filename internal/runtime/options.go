package runtime

import (
	"log/slog"
	"net/http"

	"github.com/spf13/afero"

	"github.com/tjfontaine/fantasy-relay/internal/refdata"
)

// Option is a functional option for configuring an App.
type Option func(*App) error

// WithLogger sets the logger used by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithHTTPClient replaces the upstream HTTP client built from configuration.
func WithHTTPClient(client *http.Client) Option {
	return func(a *App) error {
		a.httpClient = client
		return nil
	}
}

// WithSharedStore supplies the reference-data store instead of dialing Redis
// from configuration. The caller keeps ownership and closes it.
func WithSharedStore(store refdata.SharedStore) Option {
	return func(a *App) error {
		a.store = store
		return nil
	}
}

// WithFS sets the filesystem the set-piece table is read from.
func WithFS(fs afero.Fs) Option {
	return func(a *App) error {
		a.fs = fs
		return nil
	}
}
