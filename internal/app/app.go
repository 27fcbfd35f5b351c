package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/stepproxy/internal/buildstore"
	"github.com/specialistvlad/stepproxy/internal/ctxlog"
	"github.com/specialistvlad/stepproxy/internal/handlers"
	"github.com/specialistvlad/stepproxy/internal/inmemorystore"
	"github.com/specialistvlad/stepproxy/internal/proxy"
	"github.com/specialistvlad/stepproxy/internal/registry"
	"github.com/specialistvlad/stepproxy/internal/sqlitestore"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	resolver   *proxy.Resolver
	store      buildstore.Store
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns an App with
// its own isolated logger, step kinds and registry. The workspace is not
// loaded yet; call LoadWorkspace.
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, modules ...Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	h := handlers.New()
	reg := registry.New(h)
	resolver := proxy.NewResolver(reg)

	registerCoreModules(h, resolver)
	for _, mod := range modules {
		mod(h)
	}
	logger.Debug("Step kinds registered.", "kinds", h.Kinds())

	store, err := openStore(cfg.HistoryDB)
	if err != nil {
		return nil, err
	}
	logger.Debug("Build history opened.", "path", cfg.HistoryDB)

	return &App{
		ctx:      ctx,
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		resolver: resolver,
		store:    store,
	}, nil
}

func openStore(path string) (buildstore.Store, error) {
	if path == "" {
		return inmemorystore.New(), nil
	}
	store, err := sqlitestore.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open build history: %w", err)
	}
	return store, nil
}

// Context returns the app's base context, which carries its logger.
func (a *App) Context() context.Context {
	return a.ctx
}

// Registry returns the application's item registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Resolver returns the resolver proxies use.
func (a *App) Resolver() *proxy.Resolver {
	return a.resolver
}

// Store returns the build history.
func (a *App) Store() buildstore.Store {
	return a.store
}

// Close releases the HTTP server and the build history.
func (a *App) Close() error {
	return errors.Join(a.closeHealthCheckServer(), a.store.Close())
}
