// Package catalog implements container.Introspector with a descriptor table
// of Go constructors.
//
// Go cannot look up a type by name or read parameter names, default values
// or union types from a func signature. A Catalog fills that gap: each
// identifier is registered with its reflect.Type or constructor func, and
// the metadata reflection cannot recover is declared with Param helpers or
// loaded from a YAML manifest.
//
//	types := catalog.New()
//	types.Interface("HelloPort", reflect.TypeFor[HelloPort]())
//	types.Concrete("HelloImpl", NewHelloImpl)
//	types.Concrete("Greeting", NewGreeting,
//	    catalog.Typed("hello", "HelloPort"),
//	    catalog.Default("suffix", "!"),
//	)
//
//	c := container.New(types)
package catalog
