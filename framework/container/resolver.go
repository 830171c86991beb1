package container

import (
	"reflect"
	"strings"
)

// resolve builds concrete by resolving its constructor parameters in
// declaration order. It holds no state of its own: everything it needs comes
// from the registry, the cache (through Get) and the overrides passed in.
func (c *Container) resolve(concrete string, args map[string]any) (any, error) {
	desc, ok := c.types.Describe(concrete, false)
	if !ok || !desc.Instantiable() {
		return nil, configError(concrete, "[%s] is not instantiable", concrete)
	}

	var values []any
	for _, p := range desc.Params {
		v, err := c.resolveParam(concrete, p, args)
		if err != nil {
			return nil, err
		}
		if p.Variadic {
			values = append(values, spread(v)...)
			continue
		}
		values = append(values, v)
	}

	inst, err := c.types.New(concrete, values)
	if err != nil {
		return nil, wrapError(concrete, err, "cannot instantiate [%s]", concrete)
	}
	return inst, nil
}

// resolveParam applies the parameter policy; the first matching rule wins:
// named override, declared type(s), default value, nil, error.
func (c *Container) resolveParam(owner string, p Param, args map[string]any) (any, error) {
	if v, ok := namedArgument(args, p.Name); ok {
		return v, nil
	}

	switch len(p.Types) {
	case 0:
		// untyped: straight to the fallbacks
	case 1:
		v, found, err := c.resolveType(p.Types[0], args)
		if err != nil {
			return nil, wrapError(owner, err, "cannot resolve parameter '%s' of [%s]", p.Name, owner)
		}
		if found {
			return v, nil
		}
	default:
		for _, candidate := range p.Types {
			v, found, err := c.resolveType(candidate, args)
			if found && err == nil {
				return v, nil
			}
			if err != nil {
				c.log.V(2).Info("union candidate discarded",
					"owner", owner, "param", p.Name, "candidate", candidate, "error", err.Error())
			}
		}
	}

	switch {
	case p.HasDefault:
		return p.Default, nil
	case p.Nullable:
		return nil, nil
	case p.Variadic:
		// an empty tail is a valid call
		return nil, nil
	}
	return nil, configError(owner, "cannot resolve parameter '%s' of [%s]", p.Name, owner)
}

// resolveType resolves one candidate type. found is false when nothing is
// registered for the candidate, which is not an error by itself.
//
// An override keyed by the candidate is a redirect when it is a string naming
// a registered identifier and a literal when it is not a string at all. A
// string naming nothing registered is ignored.
func (c *Container) resolveType(candidate string, args map[string]any) (v any, found bool, err error) {
	if override, ok := args[candidate]; ok {
		target, isID := override.(string)
		switch {
		case !isID:
			return override, true, nil
		case c.Has(target):
			v, err = c.Get(target)
			return v, true, err
		}
	}
	if c.Has(candidate) {
		v, err = c.Get(candidate)
		return v, true, err
	}
	return nil, false, nil
}

// namedArgument looks up an override for a parameter name, accepting both
// "$name" and "name" keys. It runs before any type lookup, so a bare key that
// is also a type identifier always acts as the parameter literal.
func namedArgument(args map[string]any, name string) (any, bool) {
	if name == "" {
		return nil, false
	}
	name = strings.TrimPrefix(name, "$")
	if v, ok := args["$"+name]; ok {
		return v, true
	}
	v, ok := args[name]
	return v, ok
}

// spread turns a resolved variadic value into the elements spliced into the
// argument list.
func spread(v any) []any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	default:
		return []any{v}
	}
}
