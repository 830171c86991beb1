package http

import (
	"fmt"
	"maps"
	"net/http"
	"reflect"
	"sync"

	"github.com/go-logr/logr"

	"github.com/km-arc/go-autowire/framework/container"
	"github.com/km-arc/go-autowire/framework/routing"
)

// Inspector is a read-only HTTP handler over a container.
type Inspector struct {
	c      *container.Container
	router *routing.Router

	mu     sync.Mutex
	builds map[string]int
}

// NewInspector mounts the inspector routes and starts counting the
// instances c builds from now on.
func NewInspector(c *container.Container, log logr.Logger) *Inspector {
	ins := &Inspector{
		c:      c,
		router: routing.New(log),
		builds: make(map[string]int),
	}
	c.AfterResolving(ins.count)

	ins.router.Prefix("/container", func(r *routing.Router) {
		r.Get("/bindings", ins.bindings)
		r.Get("/bindings/{id}", ins.binding)
		r.Get("/types/{id}", ins.describe)
		r.Get("/stats", ins.stats)
	})
	return ins
}

func (ins *Inspector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ins.router.ServeHTTP(w, r)
}

func (ins *Inspector) count(id string, _ any) {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	ins.builds[id]++
}

// ── Payloads ─────────────────────────────────────────────────────────────────

type bindingView struct {
	ID        string         `json:"id"`
	Concrete  string         `json:"concrete"`
	Shared    bool           `json:"shared"`
	Live      bool           `json:"live"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

type paramView struct {
	Name       string   `json:"name"`
	Types      []string `json:"types,omitempty"`
	Variadic   bool     `json:"variadic,omitempty"`
	Nullable   bool     `json:"nullable,omitempty"`
	HasDefault bool     `json:"has_default,omitempty"`
	Default    any      `json:"default,omitempty"`
}

type typeView struct {
	Name         string      `json:"name"`
	Kind         string      `json:"kind"`
	Instantiable bool        `json:"instantiable"`
	Params       []paramView `json:"params"`
}

type statsView struct {
	Bindings int            `json:"bindings"`
	Live     int            `json:"live"`
	Builds   map[string]int `json:"builds"`
}

// ── Handlers ─────────────────────────────────────────────────────────────────

func (ins *Inspector) bindings(w http.ResponseWriter, _ *http.Request) {
	ids := ins.c.Bindings()
	out := make([]bindingView, 0, len(ids))
	for _, id := range ids {
		if v, ok := ins.view(id, false); ok {
			out = append(out, v)
		}
	}
	NewResponse(w).Success(out)
}

func (ins *Inspector) binding(w http.ResponseWriter, r *http.Request) {
	id := routing.Param(r, "id")
	v, ok := ins.view(id, true)
	if !ok {
		NewResponse(w).NotFound(fmt.Sprintf("No entry registered for [%s].", id))
		return
	}
	NewResponse(w).Success(v)
}

func (ins *Inspector) describe(w http.ResponseWriter, r *http.Request) {
	id := routing.Param(r, "id")
	d, ok := ins.c.Types().Describe(id, false)
	if !ok {
		NewResponse(w).NotFound(fmt.Sprintf("Type [%s] is not known.", id))
		return
	}
	params := make([]paramView, len(d.Params))
	for i, p := range d.Params {
		params[i] = paramView{
			Name:       p.Name,
			Types:      p.Types,
			Variadic:   p.Variadic,
			Nullable:   p.Nullable,
			HasDefault: p.HasDefault,
			Default:    printable(p.Default),
		}
	}
	NewResponse(w).Success(typeView{
		Name:         d.Name,
		Kind:         d.Kind.String(),
		Instantiable: d.Instantiable(),
		Params:       params,
	})
}

func (ins *Inspector) stats(w http.ResponseWriter, _ *http.Request) {
	ids := ins.c.Bindings()
	live := 0
	for _, id := range ids {
		if ins.c.Cached(id) {
			live++
		}
	}

	ins.mu.Lock()
	builds := maps.Clone(ins.builds)
	ins.mu.Unlock()

	NewResponse(w).Success(statsView{Bindings: len(ids), Live: live, Builds: builds})
}

func (ins *Inspector) view(id string, withArgs bool) (bindingView, bool) {
	e, ok := ins.c.Entry(id)
	if !ok {
		return bindingView{}, false
	}
	v := bindingView{
		ID:       id,
		Concrete: e.Identifier(),
		Shared:   e.IsShared(),
		Live:     ins.c.Cached(id),
	}
	if withArgs {
		args := e.Arguments()
		v.Arguments = make(map[string]any, len(args))
		for k, a := range args {
			v.Arguments[k] = printable(a)
		}
	}
	return v, true
}

// printable keeps scalars and strings as they are and replaces anything
// else with its type name, since overrides may hold live instances.
func printable(v any) any {
	if v == nil {
		return nil
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return v
	}
	return fmt.Sprintf("%T", v)
}
