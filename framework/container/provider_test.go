package container_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-autowire/framework/container"
)

// ── stub providers ────────────────────────────────────────────────────────────

type eagerProvider struct {
	container.BaseProvider
	registerCalled int
	bootCalled     int
}

func (p *eagerProvider) Register(app *container.Container) error {
	p.registerCalled++
	_, err := app.Bind("HelloPort", "Hello", container.Shared())
	return err
}

func (p *eagerProvider) Boot(app *container.Container) error {
	p.bootCalled++
	return nil
}

// deferredProvider is only registered when WorldPort is first resolved.
type deferredProvider struct {
	container.BaseProvider
	registerCalled int
	bootCalled     int
}

func (p *deferredProvider) Register(app *container.Container) error {
	p.registerCalled++
	if _, err := app.Bind("WorldPort", "World"); err != nil {
		return err
	}
	_, err := app.Add("World")
	return err
}

func (p *deferredProvider) Boot(app *container.Container) error {
	p.bootCalled++
	return nil
}

func (p *deferredProvider) IsDeferred() bool   { return true }
func (p *deferredProvider) Provides() []string { return []string{"WorldPort", "World"} }

// greetingProvider resolves another provider's binding while booting.
type greetingProvider struct {
	container.BaseProvider
	message string
}

func (p *greetingProvider) Register(app *container.Container) error {
	_, err := app.Add("Greeting")
	return err
}

func (p *greetingProvider) Boot(app *container.Container) error {
	g, err := container.Resolve[*greeting](app, "Greeting")
	if err != nil {
		return err
	}
	p.message = g.Message()
	return nil
}

type failingProvider struct {
	container.BaseProvider
	deferred       bool
	registerCalled int
}

// Register fails: Hello does not implement Baz.
func (p *failingProvider) Register(app *container.Container) error {
	p.registerCalled++
	_, err := app.Bind("Baz", "Hello")
	return err
}

func (p *failingProvider) IsDeferred() bool   { return p.deferred }
func (p *failingProvider) Provides() []string { return []string{"Baz"} }

// emptyProvider claims an identifier it never registers.
type emptyProvider struct{ container.BaseProvider }

func (p *emptyProvider) Register(*container.Container) error { return nil }
func (p *emptyProvider) IsDeferred() bool                    { return true }
func (p *emptyProvider) Provides() []string                  { return []string{"Ghost"} }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

func TestRegistry_EagerProvider_RegisterCalled(t *testing.T) {
	reg := container.NewProviderRegistry(newContainer(t))

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))
	assert.Equal(t, 1, p.registerCalled)
}

func TestRegistry_EagerProvider_BootCalledAfterBoot(t *testing.T) {
	reg := container.NewProviderRegistry(newContainer(t))

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))
	assert.Zero(t, p.bootCalled)

	require.NoError(t, reg.Boot())
	assert.Equal(t, 1, p.bootCalled)
}

func TestRegistry_EagerProvider_ServiceResolvable(t *testing.T) {
	c := newContainer(t)
	reg := container.NewProviderRegistry(c)
	require.NoError(t, reg.Register(&eagerProvider{}))
	require.NoError(t, reg.Boot())

	h, err := container.Resolve[HelloPort](c, "HelloPort")
	require.NoError(t, err)
	assert.Equal(t, "Hello", h.Hello())
}

func TestRegistry_Boot_IdempotentCallsAreIgnored(t *testing.T) {
	reg := container.NewProviderRegistry(newContainer(t))

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))
	require.NoError(t, reg.Boot())
	require.NoError(t, reg.Boot())

	assert.True(t, reg.Booted())
	assert.Equal(t, 1, p.bootCalled)
}

func TestRegistry_Booted_FalseBeforeBoot(t *testing.T) {
	reg := container.NewProviderRegistry(newContainer(t))
	assert.False(t, reg.Booted())
}

func TestRegistry_DuplicateRegister_Ignored(t *testing.T) {
	reg := container.NewProviderRegistry(newContainer(t))

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))
	require.NoError(t, reg.Register(p))

	assert.Equal(t, 1, p.registerCalled)
	assert.Len(t, reg.Providers(), 1)
}

func TestRegistry_BootResolvesOtherProviders(t *testing.T) {
	c := newContainer(t)
	reg := container.NewProviderRegistry(c)

	g := &greetingProvider{}
	require.NoError(t, reg.Register(g))
	require.NoError(t, reg.Register(&eagerProvider{}))
	require.NoError(t, reg.Boot())

	assert.Equal(t, "Hello!", g.message)
}

func TestRegistry_RegisterErrorIsReturned(t *testing.T) {
	reg := container.NewProviderRegistry(newContainer(t))

	err := reg.Register(&failingProvider{})
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrContainer)
	assert.Contains(t, err.Error(), "failingProvider")
}

func TestRegistry_BootErrorIsReturned(t *testing.T) {
	c := newContainer(t)
	reg := container.NewProviderRegistry(c)

	// Greeting needs HelloPort, which nothing provides
	require.NoError(t, reg.Register(&greetingProvider{}))

	err := reg.Boot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boot *container_test.greetingProvider")
}

// ── Deferred providers ────────────────────────────────────────────────────────

func TestRegistry_DeferredProvider_NotRegisteredEagerly(t *testing.T) {
	c := newContainer(t)
	reg := container.NewProviderRegistry(c)

	p := &deferredProvider{}
	require.NoError(t, reg.Register(p))
	require.NoError(t, reg.Boot())

	assert.Zero(t, p.registerCalled)
	assert.True(t, c.Has("WorldPort"))
	assert.Empty(t, c.Bindings())
}

func TestRegistry_DeferredProvider_RegisteredOnFirstGet(t *testing.T) {
	c := newContainer(t)
	reg := container.NewProviderRegistry(c)

	p := &deferredProvider{}
	require.NoError(t, reg.Register(p))
	require.NoError(t, reg.Boot())

	w, err := container.Resolve[WorldPort](c, "WorldPort")
	require.NoError(t, err)
	assert.Equal(t, "world !", w.World())
	assert.Equal(t, 1, p.registerCalled)
	assert.Equal(t, 1, p.bootCalled)

	// the second provided identifier is already registered
	_, err = c.Get("World")
	require.NoError(t, err)
	assert.Equal(t, 1, p.registerCalled)
	assert.Equal(t, []string{"World", "WorldPort"}, c.Bindings())
}

func TestRegistry_DeferredProvider_ResolvedAsDependency(t *testing.T) {
	c := newContainer(t)
	reg := container.NewProviderRegistry(c)
	require.NoError(t, reg.Register(&deferredProvider{}))
	require.NoError(t, reg.Register(&eagerProvider{}))
	_, err := c.Bind("Baz", "BazTwoArgs")
	require.NoError(t, err)

	baz, err := container.Resolve[Baz](c, "Baz")
	require.NoError(t, err)
	assert.Equal(t, "Hello world !", baz.HelloWorld())
}

func TestRegistry_DeferredProvider_FailureIsWrapped(t *testing.T) {
	c := newContainer(t)
	reg := container.NewProviderRegistry(c)
	p := &failingProvider{deferred: true}
	require.NoError(t, reg.Register(p))
	require.True(t, c.Has("Baz"))

	for i := 1; i <= 2; i++ {
		_, err := c.Get("Baz")
		require.Error(t, err)

		var ce *container.ContainerError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "Baz", ce.ID)
		assert.Contains(t, err.Error(), "deferred provider for [Baz] failed")
		assert.NotErrorIs(t, err, container.ErrNotFound)

		// still bound, so the provider is retried on the next Get
		assert.True(t, c.Has("Baz"))
		assert.Equal(t, i, p.registerCalled)
	}
}

func TestRegistry_DeferredProvider_UnregisteredProvidedIDIsNotFound(t *testing.T) {
	c := newContainer(t)
	reg := container.NewProviderRegistry(c)
	require.NoError(t, reg.Register(&emptyProvider{}))
	require.True(t, c.Has("Ghost"))

	_, err := c.Get("Ghost")
	assert.ErrorIs(t, err, container.ErrNotFound)
	assert.False(t, c.Has("Ghost"))
}

func TestRegistry_DeferredProvider_ExplicitBindingWins(t *testing.T) {
	c := newContainer(t)
	_, err := c.Bind("WorldPort", "World", container.Shared())
	require.NoError(t, err)

	reg := container.NewProviderRegistry(c)
	p := &deferredProvider{}
	require.NoError(t, reg.Register(p))

	w, err := c.Get("WorldPort")
	require.NoError(t, err)
	assert.NotNil(t, w)
	assert.Zero(t, p.registerCalled)
	runtime.KeepAlive(w)
}

// ── Providers list ────────────────────────────────────────────────────────────

func TestRegistry_Providers_ReturnsEagerOnes(t *testing.T) {
	reg := container.NewProviderRegistry(newContainer(t))
	require.NoError(t, reg.Register(&eagerProvider{}))
	require.NoError(t, reg.Register(&deferredProvider{}))

	assert.Len(t, reg.Providers(), 1)
}

// ── BaseProvider defaults ─────────────────────────────────────────────────────

func TestBaseProvider_Defaults(t *testing.T) {
	var p container.BaseProvider

	assert.NoError(t, p.Boot(newContainer(t)))
	assert.False(t, p.IsDeferred())
	assert.Empty(t, p.Provides())
}

// ── Boot after registration (late provider) ───────────────────────────────────

func TestRegistry_RegisterAfterBoot_BootsImmediately(t *testing.T) {
	reg := container.NewProviderRegistry(newContainer(t))
	require.NoError(t, reg.Boot())

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))
	assert.Equal(t, 1, p.bootCalled)
}
