package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/km-arc/go-autowire/framework/catalog"
	"github.com/km-arc/go-autowire/framework/config"
	"github.com/km-arc/go-autowire/framework/container"
	gohttp "github.com/km-arc/go-autowire/framework/http"
	"github.com/km-arc/go-autowire/framework/providers"
)

const shutdownTimeout = 5 * time.Second

// Application is the composition root. It embeds the Container so user code
// can call app.Bind(), app.Add() and app.Get() directly, and carries the
// Catalog the container resolves against.
type Application struct {
	*container.Container
	Types     *catalog.Catalog
	Providers *container.ProviderRegistry
	Config    *config.Config
	Log       logr.Logger
}

// New creates the application and registers the framework providers.
//
//	app, err := app.New(config.Load(), log)
//	app.Types.Concrete("Greeting", NewGreeting, ...)
//	app.Add("Greeting")
//	app.Boot()
func New(cfg *config.Config, log logr.Logger, opts ...catalog.Option) (*Application, error) {
	types := catalog.New(append([]catalog.Option{catalog.WithLogger(log)}, opts...)...)
	c := container.New(types,
		container.WithLogger(log),
		container.WithAutoload(cfg.Container.Autoload),
	)

	a := &Application{
		Container: c,
		Types:     types,
		Providers: container.NewProviderRegistry(c),
		Config:    cfg,
		Log:       log.WithName(cfg.App.Name),
	}

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Types: types, Config: cfg},
		&providers.ContainerServiceProvider{Types: types, Log: log, Manifest: cfg.Container.Manifest},
		&providers.InspectorServiceProvider{Types: types},
	} {
		if err := a.Register(p); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }

// Run boots the application (if needed) and, when the inspector is enabled,
// serves it on INSPECTOR_ADDR until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if !a.Config.Inspector.Enabled {
		if !a.Providers.Booted() {
			return a.Boot()
		}
		return nil
	}
	ln, err := net.Listen("tcp", a.Config.Inspector.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.Config.Inspector.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve boots the application (if needed) and serves the inspector on ln
// until ctx is cancelled, then shuts the server down gracefully.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			_ = ln.Close()
			return err
		}
	}

	// held for as long as the server runs so the shared instance stays cached
	ins, err := container.Resolve[*gohttp.Inspector](a.Container, "Inspector")
	if err != nil {
		_ = ln.Close()
		return err
	}

	server := &http.Server{
		Handler:           ins,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	done := make(chan error, 1)
	go func() { done <- server.Serve(ln) }()
	a.Log.Info("inspector listening", "addr", ln.Addr().String(), "env", a.Environment())

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown inspector: %w", err)
	}
	if err := <-done; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.Log.Info("inspector stopped")
	return nil
}
