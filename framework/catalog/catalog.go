package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-logr/logr"

	"github.com/km-arc/go-autowire/framework/container"
)

var (
	// ErrInvalidConstructor is returned when a constructor is not a func
	// returning T or (T, error).
	ErrInvalidConstructor = errors.New("catalog: invalid constructor")

	// ErrUnknownType is returned by New for identifiers that are not registered.
	ErrUnknownType = errors.New("catalog: unknown type")

	// ErrNotInstantiable is returned by New for abstract and interface types.
	ErrNotInstantiable = errors.New("catalog: type is not instantiable")

	// ErrConstructorPanic is returned when a constructor panics.
	ErrConstructorPanic = errors.New("catalog: constructor panicked")
)

var errorType = reflect.TypeFor[error]()

// Loader registers name on demand. It returns true when it registered it.
type Loader func(c *Catalog, name string) bool

// typeInfo is one row of the descriptor table.
type typeInfo struct {
	name string
	kind container.Kind
	// typ is the produced type for concrete types and the declared type
	// for interfaces and abstract types.
	typ  reflect.Type
	ctor reflect.Value // invalid for types built with new(T)

	// params is nil when the descriptor is derived from ctor's signature.
	params []container.Param
}

// Catalog is a reflection-backed descriptor table implementing
// container.Introspector.
//
//	types := catalog.New()
//	types.Interface("HelloPort", reflect.TypeFor[HelloPort]())
//	types.Concrete("HelloImpl", NewHelloImpl)
//	types.Concrete("Greeting", NewGreeting,
//	    catalog.Typed("hello", "HelloPort"),
//	    catalog.Default("suffix", "!"),
//	)
type Catalog struct {
	mu      sync.RWMutex
	types   map[string]*typeInfo
	names   map[reflect.Type]string
	loaders []Loader
	log     logr.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the catalog logger.
func WithLogger(l logr.Logger) Option {
	return func(c *Catalog) { c.log = l }
}

// WithLoader adds an autoload hook.
func WithLoader(l Loader) Option {
	return func(c *Catalog) { c.loaders = append(c.loaders, l) }
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		types: make(map[string]*typeInfo),
		names: make(map[reflect.Type]string),
		log:   logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithName("catalog")
	return c
}

// AddLoader appends an autoload hook.
func (c *Catalog) AddLoader(l Loader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaders = append(c.loaders, l)
}

// ── Registration ──────────────────────────────────────────────────────────────

// Interface registers an interface type under name.
func (c *Catalog) Interface(name string, typ reflect.Type) error {
	if typ == nil || typ.Kind() != reflect.Interface {
		return fmt.Errorf("catalog: [%s] is not an interface type: %v", name, typ)
	}
	c.put(&typeInfo{name: name, kind: container.KindInterface, typ: typ})
	return nil
}

// Abstract registers a type that exists but cannot be constructed.
func (c *Catalog) Abstract(name string, typ reflect.Type) error {
	if typ == nil {
		return fmt.Errorf("catalog: [%s] has no type", name)
	}
	c.put(&typeInfo{name: name, kind: container.KindAbstract, typ: typ})
	return nil
}

// Type registers a concrete type without a constructor; instances are new(T).
// typ may be T or *T.
func (c *Catalog) Type(name string, typ reflect.Type) error {
	if typ == nil {
		return fmt.Errorf("catalog: [%s] has no type", name)
	}
	if typ.Kind() != reflect.Pointer {
		typ = reflect.PointerTo(typ)
	}
	if typ.Elem().Kind() == reflect.Interface {
		return fmt.Errorf("catalog: [%s]: cannot allocate interface type %v", name, typ.Elem())
	}
	c.put(&typeInfo{name: name, kind: container.KindConcrete, typ: typ})
	return nil
}

// Concrete registers a constructor func under name. The func must return T
// or (T, error). Without params the descriptor is derived from the func
// signature; with params there must be exactly one per func parameter.
func (c *Catalog) Concrete(name string, ctor any, params ...container.Param) error {
	fn := reflect.ValueOf(ctor)
	if err := checkConstructor(name, fn); err != nil {
		return err
	}
	if params != nil && len(params) != fn.Type().NumIn() {
		return fmt.Errorf("%w: [%s] declares %d params, constructor takes %d",
			ErrInvalidConstructor, name, len(params), fn.Type().NumIn())
	}
	c.put(&typeInfo{
		name:   name,
		kind:   container.KindConcrete,
		typ:    fn.Type().Out(0),
		ctor:   fn,
		params: declared(fn.Type(), params),
	})
	return nil
}

// SetParams replaces the parameter descriptors of a registered constructor.
func (c *Catalog) SetParams(name string, params []container.Param) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.types[name]
	if !ok {
		return fmt.Errorf("%w: [%s]", ErrUnknownType, name)
	}
	want := 0
	if info.ctor.IsValid() {
		want = info.ctor.Type().NumIn()
	}
	if len(params) != want {
		return fmt.Errorf("%w: [%s] declares %d params, constructor takes %d",
			ErrInvalidConstructor, name, len(params), want)
	}
	if want == 0 {
		info.params = nil
		return nil
	}
	info.params = declared(info.ctor.Type(), params)
	return nil
}

// declared copies params, flagging the last one when the func is variadic.
func declared(t reflect.Type, params []container.Param) []container.Param {
	if params == nil {
		return nil
	}
	out := make([]container.Param, len(params))
	copy(out, params)
	if t.IsVariadic() {
		out[len(out)-1].Variadic = true
	}
	return out
}

func checkConstructor(name string, fn reflect.Value) error {
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return fmt.Errorf("%w: [%s] is not a func", ErrInvalidConstructor, name)
	}
	t := fn.Type()
	switch {
	case t.NumOut() == 1 && t.Out(0) != errorType:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		return fmt.Errorf("%w: [%s] must return T or (T, error), got %v", ErrInvalidConstructor, name, t)
	}
	return nil
}

func (c *Catalog) put(info *typeInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types[info.name] = info
	// first name wins for type → name lookups
	if _, ok := c.names[info.typ]; !ok {
		c.names[info.typ] = info.name
	}
}

// ── container.Introspector ────────────────────────────────────────────────────

// Describe reports the descriptor for id, running the loaders on a miss when
// autoload is true.
func (c *Catalog) Describe(id string, autoload bool) (container.Descriptor, bool) {
	if d, ok := c.describe(id); ok {
		return d, true
	}
	if !autoload || !c.autoload(id) {
		return container.Descriptor{}, false
	}
	return c.describe(id)
}

func (c *Catalog) describe(id string) (container.Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.types[id]
	if !ok {
		return container.Descriptor{}, false
	}
	return container.Descriptor{Name: info.name, Kind: info.kind, Params: c.paramsOf(info)}, true
}

func (c *Catalog) autoload(id string) bool {
	c.mu.RLock()
	loaders := c.loaders
	c.mu.RUnlock()
	for _, load := range loaders {
		if load(c, id) {
			c.log.V(1).Info("type autoloaded", "id", id)
			return true
		}
	}
	return false
}

// paramsOf returns declared params or derives them from the constructor (must hold mu).
func (c *Catalog) paramsOf(info *typeInfo) []container.Param {
	if !info.ctor.IsValid() {
		return nil
	}
	if info.params != nil {
		out := make([]container.Param, len(info.params))
		copy(out, info.params)
		return out
	}

	t := info.ctor.Type()
	out := make([]container.Param, t.NumIn())
	for i := range out {
		in := t.In(i)
		p := container.Param{Name: fmt.Sprintf("arg%d", i)}
		if t.IsVariadic() && i == t.NumIn()-1 {
			p.Variadic = true
			in = in.Elem()
		}
		if in.Kind() == reflect.Interface && in.NumMethod() == 0 {
			p.Nullable = true
		} else {
			p.Types = []string{c.nameOf(in)}
		}
		out[i] = p
	}
	return out
}

// nameOf returns the registered name for t, or its package-qualified name (must hold mu).
func (c *Catalog) nameOf(t reflect.Type) string {
	if name, ok := c.names[t]; ok {
		return name
	}
	return TypeName(t)
}

// Implements reports whether concrete's produced type satisfies iface.
func (c *Catalog) Implements(concrete, iface string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ct, ok := c.types[concrete]
	if !ok {
		return false
	}
	it, ok := c.types[iface]
	if !ok {
		return false
	}
	if it.typ.Kind() == reflect.Interface {
		return ct.typ.Implements(it.typ)
	}
	return ct.typ.AssignableTo(it.typ)
}

// New constructs id from positional arguments. Variadic tails arrive spread.
// A nil argument becomes the zero value of its parameter type.
func (c *Catalog) New(id string, args []any) (inst any, err error) {
	c.mu.RLock()
	info, ok := c.types[id]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: [%s]", ErrUnknownType, id)
	}
	if info.kind != container.KindConcrete {
		return nil, fmt.Errorf("%w: [%s] is %s", ErrNotInstantiable, id, info.kind)
	}
	if !info.ctor.IsValid() {
		if len(args) > 0 {
			return nil, fmt.Errorf("catalog: [%s] has no constructor but got %d arguments", id, len(args))
		}
		return reflect.New(info.typ.Elem()).Interface(), nil
	}

	in, err := callArgs(info.ctor.Type(), args)
	if err != nil {
		return nil, fmt.Errorf("catalog: [%s]: %w", id, err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			inst = nil
			err = fmt.Errorf("%w: [%s]: %v", ErrConstructorPanic, id, rec)
		}
	}()

	out := info.ctor.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

func callArgs(t reflect.Type, args []any) ([]reflect.Value, error) {
	n := t.NumIn()
	if t.IsVariadic() {
		if len(args) < n-1 {
			return nil, fmt.Errorf("want at least %d arguments, got %d", n-1, len(args))
		}
	} else if len(args) != n {
		return nil, fmt.Errorf("want %d arguments, got %d", n, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var target reflect.Type
		if t.IsVariadic() && i >= n-1 {
			target = t.In(n - 1).Elem()
		} else {
			target = t.In(i)
		}
		v, err := convert(a, target)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in[i] = v
	}
	return in, nil
}

// convert adapts a resolved value to the parameter type.
func convert(a any, target reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(target), nil
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(target) {
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(target.Kind()) {
		return v.Convert(target), nil
	}
	if v.Kind() == reflect.String && target.Kind() == reflect.String {
		return v.Convert(target), nil
	}
	return reflect.Value{}, fmt.Errorf("%T is not assignable to %v", a, target)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// TypeName returns the package-qualified name of t, dereferencing pointers.
//
//	catalog.TypeName(reflect.TypeFor[*Greeting]()) // "example.com/app.Greeting"
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
