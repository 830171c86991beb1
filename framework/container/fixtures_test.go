package container_test

import (
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-autowire/framework/catalog"
	"github.com/km-arc/go-autowire/framework/container"
)

// ── contracts ─────────────────────────────────────────────────────────────────

type Baz interface{ HelloWorld() string }

type HelloPort interface{ Hello() string }

type WorldPort interface{ World() string }

type BufferPort interface{ Get() any }

// ── concretes ─────────────────────────────────────────────────────────────────

var instances atomic.Int64

// hello carries a pointer-bearing field so it is never tiny-allocated and
// its weak handle clears promptly once collected.
type hello struct {
	id   int64
	name string
}

func newHello() *hello { return &hello{id: instances.Add(1), name: "hello"} }
func (h *hello) Hello() string { return "Hello" }

type loudHello struct{ name string }

func newLoudHello() *loudHello { return &loudHello{name: "loud"} }
func (h *loudHello) Hello() string { return "HELLO" }

type world struct{ name string }

func newWorld() *world { return &world{name: "world"} }
func (w *world) World() string { return "world !" }

type bazWithoutCtor struct{ calls int }

func (b *bazWithoutCtor) HelloWorld() string { return "Hello world !" }

type bazNoArgs struct{ ready bool }

func newBazNoArgs() *bazNoArgs { return &bazNoArgs{ready: true} }
func (b *bazNoArgs) HelloWorld() string { return "Hello world !" }

type bazTwoArgs struct {
	hello HelloPort
	world WorldPort
}

func newBazTwoArgs(h HelloPort, w WorldPort) *bazTwoArgs { return &bazTwoArgs{hello: h, world: w} }
func (b *bazTwoArgs) HelloWorld() string { return b.hello.Hello() + " " + b.world.World() }

type bazUnion struct{ concrete any }

func newBazUnion(concrete any) *bazUnion { return &bazUnion{concrete: concrete} }

func (b *bazUnion) HelloWorld() string {
	switch v := b.concrete.(type) {
	case HelloPort:
		return v.Hello()
	case WorldPort:
		return v.World()
	}
	return ""
}

type bazNullable struct{ str *string }

func newBazNullable(str *string) *bazNullable { return &bazNullable{str: str} }

func (b *bazNullable) HelloWorld() string {
	if b.str == nil {
		return ""
	}
	return *b.str
}

type bazUntyped struct{ value any }

func newBazUntyped(value any) *bazUntyped { return &bazUntyped{value: value} }
func (b *bazUntyped) HelloWorld() string { return "untyped" }

type abstractBaz struct{}

func (*abstractBaz) HelloWorld() string { return "" }

type abstractHello struct{}

func (*abstractHello) Hello() string { return "" }

type buffer struct{ value any }

func newBuffer(value any) *buffer { return &buffer{value: value} }
func (b *buffer) Get() any { return b.value }

type greeter struct{ name string }

type greeting struct {
	hello  HelloPort
	suffix string
}

func newGreeting(h HelloPort, suffix string) *greeting { return &greeting{hello: h, suffix: suffix} }
func (g *greeting) Message() string { return g.hello.Hello() + g.suffix }

type point struct{ x, y, z float64 }

func newPoint(x, y, z float64) *point { return &point{x: x, y: y, z: z} }

type path struct{ points []*point }

func newPath(points ...*point) *path { return &path{points: points} }

var errBroken = errors.New("broken dependency")

type broken struct{ name string }

func newBroken() (*broken, error) { return nil, errBroken }

// value is a shared binding whose constructor returns a plain struct.
type value struct{ n int }

func newValue() value { return value{n: 1} }

// ── catalog ───────────────────────────────────────────────────────────────────

func newTypes(t *testing.T) *catalog.Catalog {
	t.Helper()
	types := catalog.New()

	require.NoError(t, types.Interface("Baz", reflect.TypeFor[Baz]()))
	require.NoError(t, types.Interface("HelloPort", reflect.TypeFor[HelloPort]()))
	require.NoError(t, types.Interface("WorldPort", reflect.TypeFor[WorldPort]()))
	require.NoError(t, types.Interface("BufferPort", reflect.TypeFor[BufferPort]()))

	require.NoError(t, types.Concrete("Hello", newHello))
	require.NoError(t, types.Concrete("LoudHello", newLoudHello))
	require.NoError(t, types.Concrete("World", newWorld))
	require.NoError(t, types.Type("BazWithoutCtor", reflect.TypeFor[bazWithoutCtor]()))
	require.NoError(t, types.Concrete("BazNoArgs", newBazNoArgs))
	require.NoError(t, types.Concrete("BazTwoArgs", newBazTwoArgs,
		catalog.Typed("hello", "HelloPort"),
		catalog.Typed("world", "WorldPort"),
	))
	require.NoError(t, types.Concrete("BazUnion", newBazUnion,
		catalog.Typed("concrete", "HelloPort", "WorldPort"),
	))
	require.NoError(t, types.Concrete("BazUnionNullable", newBazUnion,
		catalog.Nullable("concrete", "HelloPort", "WorldPort"),
	))
	require.NoError(t, types.Concrete("BazUnionDefault", newBazUnion,
		catalog.Default("concrete", "fallback", "HelloPort", "WorldPort"),
	))
	require.NoError(t, types.Concrete("BazNullable", newBazNullable, catalog.Nullable("str")))
	require.NoError(t, types.Concrete("BazUntyped", newBazUntyped, catalog.Untyped("value")))
	require.NoError(t, types.Abstract("AbstractBaz", reflect.TypeFor[*abstractBaz]()))
	require.NoError(t, types.Abstract("AbstractHello", reflect.TypeFor[*abstractHello]()))
	require.NoError(t, types.Concrete("Buffer", newBuffer))
	require.NoError(t, types.Type("Greeter", reflect.TypeFor[greeter]()))
	require.NoError(t, types.Concrete("Greeting", newGreeting,
		catalog.Typed("hello", "HelloPort"),
		catalog.Default("suffix", "!"),
	))
	require.NoError(t, types.Concrete("Point", newPoint,
		catalog.Default("x", 0),
		catalog.Default("y", 0),
		catalog.Default("z", 0),
	))
	require.NoError(t, types.Concrete("Path", newPath))
	require.NoError(t, types.Concrete("Broken", newBroken))
	require.NoError(t, types.Concrete("Value", newValue))

	return types
}

func newContainer(t *testing.T, opts ...container.Option) *container.Container {
	t.Helper()
	return container.New(newTypes(t), opts...)
}

func mustBind(t *testing.T, c *container.Container, iface, concrete string, opts ...container.EntryOption) *container.Entry {
	t.Helper()
	e, err := c.Bind(iface, concrete, opts...)
	require.NoError(t, err)
	return e
}

func mustAdd(t *testing.T, c *container.Container, concrete string, opts ...container.EntryOption) *container.Entry {
	t.Helper()
	e, err := c.Add(concrete, opts...)
	require.NoError(t, err)
	return e
}
