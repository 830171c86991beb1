package container

// Kind classifies an identifier known to an Introspector.
type Kind int

const (
	// KindConcrete types can be constructed.
	KindConcrete Kind = iota
	// KindAbstract types exist but cannot be constructed (no accessible constructor).
	KindAbstract
	// KindInterface types describe a capability other types implement.
	KindInterface
)

func (k Kind) String() string {
	switch k {
	case KindConcrete:
		return "concrete"
	case KindAbstract:
		return "abstract"
	case KindInterface:
		return "interface"
	default:
		return "unknown"
	}
}

// Param describes one constructor parameter.
type Param struct {
	Name string
	// Types lists candidate identifiers in declaration order. More than one
	// entry is a union; none means untyped.
	Types      []string
	Variadic   bool
	Nullable   bool
	HasDefault bool
	Default    any
}

// Descriptor is what an Introspector reports about one identifier.
type Descriptor struct {
	Name   string
	Kind   Kind
	Params []Param
}

// Instantiable reports whether the described type can be constructed.
func (d Descriptor) Instantiable() bool { return d.Kind == KindConcrete }

// Introspector is the type-introspection capability the container consumes.
// Go has no constructor reflection by name, so implementations keep a
// descriptor table; see the catalog package.
type Introspector interface {
	// Describe reports the descriptor for id. When autoload is true the
	// implementation may try to load an unknown id before giving up.
	Describe(id string, autoload bool) (Descriptor, bool)

	// Implements reports whether concrete satisfies iface's contract.
	Implements(concrete, iface string) bool

	// New constructs id with positional arguments; variadic tails arrive spread.
	New(id string, args []any) (any, error)
}
