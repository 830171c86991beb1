package providers

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/km-arc/go-autowire/framework/catalog"
	"github.com/km-arc/go-autowire/framework/config"
	"github.com/km-arc/go-autowire/framework/container"
	gohttp "github.com/km-arc/go-autowire/framework/http"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded configuration.
//
// Registered identifiers:
//   - "Config"  → *config.Config (shared)
//   - "config"  → alias of "Config"
type ConfigServiceProvider struct {
	container.BaseProvider
	Types  *catalog.Catalog
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	cfg := p.Config
	if err := p.Types.Concrete("Config", func() *config.Config { return cfg }); err != nil {
		return err
	}
	if _, err := app.Add("Config", container.Shared()); err != nil {
		return err
	}
	app.Alias("Config", "config")
	return nil
}

// ── ContainerServiceProvider ──────────────────────────────────────────────────

// ContainerServiceProvider makes the container and its logger resolvable and
// applies the YAML manifest once every other provider has registered its
// types.
//
// Registered identifiers:
//   - "Container" → *container.Container (shared)
//   - "Logger"    → logr.Logger
type ContainerServiceProvider struct {
	container.BaseProvider
	Types *catalog.Catalog
	Log   logr.Logger
	// Manifest is an optional manifest path; empty skips it.
	Manifest string
}

func (p *ContainerServiceProvider) Register(app *container.Container) error {
	log := p.Log
	if err := p.Types.Concrete("Container", func() *container.Container { return app }); err != nil {
		return err
	}
	if err := p.Types.Concrete("Logger", func() logr.Logger { return log }); err != nil {
		return err
	}
	if _, err := app.Add("Container", container.Shared()); err != nil {
		return err
	}
	_, err := app.Add("Logger")
	return err
}

// Boot loads the manifest. Its bindings replace those registered by
// providers.
func (p *ContainerServiceProvider) Boot(app *container.Container) error {
	if p.Manifest == "" {
		return nil
	}
	m, err := catalog.LoadManifestFile(p.Manifest)
	if err != nil {
		return err
	}
	if err := m.Apply(p.Types); err != nil {
		return fmt.Errorf("apply manifest %s: %w", p.Manifest, err)
	}
	if err := m.Register(app); err != nil {
		return fmt.Errorf("register manifest %s: %w", p.Manifest, err)
	}
	p.Log.V(1).Info("manifest loaded", "path", p.Manifest,
		"types", len(m.Types), "bindings", len(m.Bindings))
	return nil
}

// ── InspectorServiceProvider ──────────────────────────────────────────────────

// InspectorServiceProvider registers the HTTP inspector. It is deferred: the
// handler is only built, and only starts counting builds, on the first Get.
//
// Registered identifiers:
//   - "Inspector" → *gohttp.Inspector (shared)
type InspectorServiceProvider struct {
	container.BaseProvider
	Types *catalog.Catalog
}

func (p *InspectorServiceProvider) Register(app *container.Container) error {
	err := p.Types.Concrete("Inspector", gohttp.NewInspector,
		catalog.Typed("c", "Container"),
		catalog.Typed("log", "Logger"),
	)
	if err != nil {
		return err
	}
	_, err = app.Add("Inspector", container.Shared())
	return err
}

func (p *InspectorServiceProvider) IsDeferred() bool   { return true }
func (p *InspectorServiceProvider) Provides() []string { return []string{"Inspector"} }
