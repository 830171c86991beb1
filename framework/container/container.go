package container

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/go-logr/logr"
)

// ── Options ───────────────────────────────────────────────────────────────────

type options struct {
	logger   logr.Logger
	autoload bool
}

// Option configures a Container.
type Option func(*options)

// WithLogger sets the logger used for cache and resolution diagnostics.
func WithLogger(l logr.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithAutoload sets whether Add and Bind let the introspector load unknown
// types by default. Individual registrations override it with Autoload.
func WithAutoload(enabled bool) Option {
	return func(o *options) { o.autoload = enabled }
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is an autowiring IoC container.
//
// Types are described by an Introspector; the container builds them by
// resolving every constructor parameter from its own registry:
//
//	c := container.New(types)
//	c.Bind("HelloPort", "HelloImpl")
//	c.Add("Greeting")
//	g, err := container.Resolve[*Greeting](c, "Greeting")
//
// Registration is expected to happen before concurrent use. Get may be called
// concurrently once configuration is complete.
type Container struct {
	mu sync.RWMutex

	types Introspector
	log   logr.Logger

	autoload bool

	// id → entry
	entries map[string]*Entry

	// alias → id (canonical key)
	aliases map[string]string

	// id → loader of a deferred provider that registers id
	deferred map[string]func() error

	cache *instanceCache

	afterResolving []func(string, any)
}

// New creates an empty container backed by types.
func New(types Introspector, opts ...Option) *Container {
	o := options{logger: logr.Discard(), autoload: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Container{
		types:    types,
		log:      o.logger.WithName("container"),
		autoload: o.autoload,
		entries:  make(map[string]*Entry),
		aliases:  make(map[string]string),
		deferred: make(map[string]func() error),
		cache:    newInstanceCache(),
	}
}

// Types returns the introspector the container resolves against.
func (c *Container) Types() Introspector { return c.types }

// ── Registration ──────────────────────────────────────────────────────────────

// Add registers concrete under its own identifier.
//
// It fails when the introspector cannot locate concrete. Whether concrete can
// actually be built is only checked on the first Get.
func (c *Container) Add(concrete string, opts ...EntryOption) (*Entry, error) {
	o := c.entryOptions(opts)
	if _, ok := c.types.Describe(concrete, c.autoloadFor(o)); !ok {
		return nil, configError(concrete, "type [%s] cannot be loaded", concrete)
	}
	return c.register(concrete, newEntry(concrete, o.shared)), nil
}

// Bind registers concrete under iface.
//
// It fails immediately when iface is not a known type, concrete cannot be
// loaded, or concrete does not implement iface.
func (c *Container) Bind(iface, concrete string, opts ...EntryOption) (*Entry, error) {
	o := c.entryOptions(opts)
	autoload := c.autoloadFor(o)
	if _, ok := c.types.Describe(iface, autoload); !ok {
		return nil, configError(iface, "interface [%s] does not exist", iface)
	}
	if _, ok := c.types.Describe(concrete, autoload); !ok {
		return nil, configError(concrete, "type [%s] cannot be loaded", concrete)
	}
	if !c.types.Implements(concrete, iface) {
		return nil, configError(iface, "[%s] does not implement [%s]", concrete, iface)
	}
	return c.register(iface, newEntry(concrete, o.shared)), nil
}

func (c *Container) entryOptions(opts []EntryOption) entryOptions {
	var o entryOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (c *Container) autoloadFor(o entryOptions) bool {
	if o.autoload != nil {
		return *o.autoload
	}
	return c.autoload
}

// register stores e under id; last write wins.
func (c *Container) register(id string, e *Entry) *Entry {
	c.mu.Lock()
	key := c.canonical(id)
	c.entries[key] = e
	delete(c.deferred, key)
	c.mu.Unlock()

	// A handle built from the previous binding no longer describes id.
	c.cache.forget(key)
	return e
}

// Alias registers an alternative name for id.
func (c *Container) Alias(id, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", id))
	}
	c.aliases[alias] = c.canonical(id)
}

// deferProvider marks ids as provided lazily by load.
func (c *Container) deferProvider(ids []string, load func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		key := c.canonical(id)
		if _, bound := c.entries[key]; !bound {
			c.deferred[key] = load
		}
	}
}

// ── Contextual Binding ────────────────────────────────────────────────────────

// When starts a contextual override chain for the entry registered under id.
//
//	c.When("PhotoController").Needs("Filesystem").Give("S3Filesystem")
//	c.When("PhotoController").Needs("$root").GiveValue("/tmp/photos")
func (c *Container) When(id string) *ContextualBuilder {
	return &ContextualBuilder{container: c, id: id}
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Has reports whether id has an entry. It does not guarantee Get succeeds.
func (c *Container) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(id)
	_, bound := c.entries[key]
	_, deferred := c.deferred[key]
	return bound || deferred
}

// Get returns an instance for id.
//
// Shared entries return the cached instance while it is still referenced
// elsewhere and are rebuilt silently once it has been collected.
func (c *Container) Get(id string) (any, error) {
	e, err := c.entry(id)
	if err != nil {
		return nil, err
	}
	key := c.canonicalKey(id)
	concrete, shared, args := e.snapshot()

	if shared {
		if inst, ok := c.cache.load(key); ok {
			c.log.V(2).Info("shared instance reused", "id", key)
			return inst, nil
		}
	} else {
		// SetShared(false) may follow a shared Get
		c.cache.forget(key)
	}

	inst, err := c.resolve(concrete, args)
	if err != nil {
		if concrete != key {
			err = wrapError(key, err, "cannot resolve [%s]", key)
		}
		return nil, err
	}

	if shared && !c.cache.store(key, inst) {
		c.log.V(1).Info("shared instance is not a pointer and will be rebuilt on every Get",
			"id", key, "type", fmt.Sprintf("%T", inst))
	}

	c.fireAfterResolving(key, inst)
	return inst, nil
}

// entry returns the entry for id, loading a deferred provider when needed.
func (c *Container) entry(id string) (*Entry, error) {
	c.mu.RLock()
	key := c.canonical(id)
	e, ok := c.entries[key]
	load := c.deferred[key]
	c.mu.RUnlock()
	if ok {
		return e, nil
	}
	if load == nil {
		return nil, &NotFoundError{ID: id}
	}

	// The deferred marker stays until the provider registers key, so a
	// failing provider keeps id bound and is retried on the next Get.
	c.log.V(1).Info("loading deferred provider", "id", key)
	if err := load(); err != nil {
		return nil, wrapError(key, err, "deferred provider for [%s] failed", key)
	}

	c.mu.Lock()
	e, ok = c.entries[key]
	if !ok {
		// loaded, but it did not register key after all
		delete(c.deferred, key)
	}
	c.mu.Unlock()
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return e, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Entry returns the entry registered under id.
func (c *Container) Entry(id string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[c.canonical(id)]
	return e, ok
}

// Cached reports whether id currently has a live shared instance. An entry
// that is no longer shared never reports one.
func (c *Container) Cached(id string) bool {
	key := c.canonicalKey(id)
	e, ok := c.Entry(key)
	if !ok || !e.IsShared() {
		c.cache.forget(key)
		return false
	}
	return c.cache.live(key)
}

// Bindings returns the sorted identifiers of all entries (for debugging).
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (c *Container) canonicalKey(id string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.canonical(id)
}

// canonical resolves an alias to its canonical key (must hold mu).
func (c *Container) canonical(id string) string {
	if target, ok := c.aliases[id]; ok {
		return target
	}
	return id
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired after every instance the
// container builds. Cache hits do not fire it.
func (c *Container) AfterResolving(cb func(id string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireAfterResolving(id string, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(id, instance)
	}
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve calls Get and type-asserts the result.
//
//	repo, err := container.Resolve[UserRepository](c, "UserRepository")
func Resolve[T any](c *Container, id string) (T, error) {
	var zero T
	instance, err := c.Get(id)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, configError(id, "[%s] resolved to %T, not %s", id, instance, reflect.TypeFor[T]())
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, id string) T {
	typed, err := Resolve[T](c, id)
	if err != nil {
		panic(err)
	}
	return typed
}
