// Package container provides an autowiring IoC (Inversion of Control)
// container and Service Provider system for Go.
//
// # Overview
//
// The container builds object graphs from a registry of bindings. Instead of
// hand-written factories it asks an Introspector for the constructor
// parameters of a type and satisfies each one in turn, recursing into other
// bindings as needed. Go has no runtime constructor reflection by name, so the
// Introspector is a descriptor table (see package catalog).
//
// # Bindings
//
//	// Register a type under its own identifier
//	c.Add("Greeting")
//
//	// Register an implementation under an interface identifier
//	c.Bind("HelloPort", "HelloImpl")
//
//	// Shared: reused while the previous instance is still referenced
//	c.Bind("Cache", "RedisCache", container.Shared())
//
// Bind fails immediately when the implementation does not satisfy the
// interface. Everything else is checked lazily on the first Get.
//
// # Resolving
//
//	raw, err := c.Get("Greeting")
//	g, err := container.Resolve[*Greeting](c, "Greeting")
//
// Each constructor parameter is resolved by the first rule that applies:
//
//  1. an override keyed by the parameter name ("$suffix")
//  2. its declared type(s): a registered identifier, or an override keyed by
//     the type that either redirects to another identifier (a string) or is
//     the instance to use (anything else); union candidates are tried in
//     declaration order and failures are skipped
//  3. its default value
//  4. nil, if the parameter is nullable
//
// Otherwise the Get fails with a *ContainerError that wraps every level of the
// dependency chain.
//
// # Overrides
//
//	c.Add("Greeting").AddArgument("$suffix", "?!")
//	c.When("Greeting").Needs("HelloPort").Give("LoudHello")
//
// # Shared instances
//
// Shared instances are held through weak pointers. The container never keeps
// them alive on its own: when the last reference elsewhere is dropped and the
// garbage collector reclaims the instance, the next Get builds a new one.
// Shared instances are therefore "shared while used", not process singletons.
// Only pointer instances can be weakly held; shared bindings whose
// constructors return plain values are rebuilt on every Get.
//
// Two kinds of pointee outlive their last reference. Zero-size values share
// one static address and are held strongly. Pointer-free values smaller than
// 16 bytes may be packed by the runtime's tiny allocator into a block with
// other small objects; the block, and with it the weak handle, stays alive
// until all of them are unreachable. Such bindings can behave as long-lived
// singletons. Give a shared type a pointer field or at least 16 bytes of
// state when its lifetime matters.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(c *container.Container) error {
//	    _, err := c.Bind("Mailer", "SMTPMailer", container.Shared())
//	    return err
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// Deferred providers (IsDeferred returns true) are only registered on the
// first Get of one of their Provides identifiers.
//
// # Limitations
//
// There is no cycle detection: a binding cycle recurses until the stack is
// exhausted.
package container
