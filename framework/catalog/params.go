package catalog

import "github.com/km-arc/go-autowire/framework/container"

// Typed declares a parameter resolved from one or more candidate types.
// More than one type is a union, tried in the order given.
func Typed(name string, types ...string) container.Param {
	return container.Param{Name: name, Types: types}
}

// Default declares a parameter with a default value.
func Default(name string, value any, types ...string) container.Param {
	return container.Param{Name: name, Types: types, HasDefault: true, Default: value}
}

// Nullable declares a parameter that falls back to nil (the zero value).
func Nullable(name string, types ...string) container.Param {
	return container.Param{Name: name, Types: types, Nullable: true}
}

// Untyped declares a parameter with no type, only satisfiable by a named
// override.
func Untyped(name string) container.Param {
	return container.Param{Name: name}
}
