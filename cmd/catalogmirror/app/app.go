// Package app wires configuration, logging, the mirror store and the remote
// source into the catalogmirror CLI.
package app

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agentstation/catalogmirror"
	"github.com/agentstation/catalogmirror/internal/config"
	"github.com/agentstation/catalogmirror/internal/metrics"
	"github.com/agentstation/catalogmirror/internal/store"
	"github.com/agentstation/catalogmirror/pkg/errors"
	"github.com/agentstation/catalogmirror/pkg/sources"
)

// App represents the catalogmirror application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config      *config.Config
	configFixed bool
	flags       *Flags

	logger *zerolog.Logger
	out    io.Writer

	// lazily created dependencies
	mu       sync.Mutex
	store    *store.Store
	source   sources.Source
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		config:  config.Default(),
		flags:   &Flags{},
		out:     os.Stdout,
	}

	logger := NewLogger(app.config, app.flags)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the effective configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Store opens the mirror store on first use.
func (a *App) Store(ctx context.Context) (*store.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.store != nil {
		return a.store, nil
	}

	cfg := a.config.Store()
	cfg.Logger = a.logger
	s, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

// Source builds the live or offline source on first use.
func (a *App) Source() (sources.Source, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.source != nil {
		return a.source, nil
	}

	cfg := a.config.Sources()
	cfg.UserAgent = "catalogmirror/" + a.version
	src, err := sources.New(cfg)
	if err != nil {
		return nil, err
	}
	a.source = src
	return src, nil
}

// Metrics returns the application registry and collectors.
func (a *App) Metrics() (*prometheus.Registry, *metrics.Metrics) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
		a.metrics = metrics.New(a.registry)
	}
	return a.registry, a.metrics
}

// Client builds a mirror client from the configuration.
func (a *App) Client(ctx context.Context, opts ...catalogmirror.Option) (catalogmirror.Client, error) {
	s, err := a.Store(ctx)
	if err != nil {
		return nil, err
	}
	src, err := a.Source()
	if err != nil {
		return nil, err
	}
	_, m := a.Metrics()

	all := append(a.config.Client(),
		catalogmirror.WithLogger(a.logger),
		catalogmirror.WithMetrics(m),
	)
	all = append(all, opts...)

	client, err := catalogmirror.New(s, src, all...)
	if err != nil {
		return nil, errors.NewConfigError("client", "creating mirror client", err)
	}
	return client, nil
}

// Shutdown releases the store.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig fixes the configuration; config files and env are not read.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		a.config = cfg
		a.configFixed = true
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithOutput redirects command output.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}
