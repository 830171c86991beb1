package container

import (
	"reflect"
	"runtime"
	"sync"
	"unsafe"
	"weak"
)

// handle is a non-owning reference to a shared instance.
type handle struct {
	ptr weak.Pointer[byte]
	typ reflect.Type // dynamic pointer type of the instance

	// strong holds pointers to zero-sized values. They all share one static
	// address that the runtime never reclaims and cannot weakly reference.
	strong any
}

// instanceCache maps shared identifiers to weak handles. It never keeps an
// instance alive: once the last strong reference is gone the runtime clears
// the handle and a cleanup removes the map entry.
type instanceCache struct {
	mu      sync.Mutex
	handles map[string]handle
}

func newInstanceCache() *instanceCache {
	return &instanceCache{handles: make(map[string]handle)}
}

// load returns the live instance for id, if any.
func (c *instanceCache) load(id string) (any, bool) {
	c.mu.Lock()
	h, ok := c.handles[id]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	if h.strong != nil {
		return h.strong, true
	}
	p := h.ptr.Value()
	if p == nil {
		return nil, false
	}
	return reflect.NewAt(h.typ.Elem(), unsafe.Pointer(p)).Interface(), true
}

// store records a weak handle for instance. It returns false when the
// instance is not a pointer and therefore cannot be weakly referenced.
//
// The pointer must refer to a heap allocation; constructors returning the
// address of a package-level variable cannot be shared.
//
// Pointer-free pointees under 16 bytes come from the tiny allocator and share
// a block with unrelated objects, so their handle can stay valid after the
// instance itself is unreachable. Like zero-size values they may then be
// returned long after the last caller dropped them.
func (c *instanceCache) store(id string, instance any) bool {
	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return false
	}

	if v.Type().Elem().Size() == 0 {
		c.mu.Lock()
		c.handles[id] = handle{typ: v.Type(), strong: instance}
		c.mu.Unlock()
		return true
	}

	p := (*byte)(v.UnsafePointer())
	h := handle{ptr: weak.Make(p), typ: v.Type()}

	c.mu.Lock()
	c.handles[id] = h
	c.mu.Unlock()

	runtime.AddCleanup(p, c.evict, cleanupKey{id: id, ptr: h.ptr})
	return true
}

type cleanupKey struct {
	id  string
	ptr weak.Pointer[byte]
}

// evict drops id unless it was re-stored with a newer instance meanwhile.
func (c *instanceCache) evict(k cleanupKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.handles[k.id]; ok && h.ptr == k.ptr {
		delete(c.handles, k.id)
	}
}

// forget drops the handle for id regardless of liveness.
func (c *instanceCache) forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handles, id)
}

// live reports whether id currently holds a reachable instance.
func (c *instanceCache) live(id string) bool {
	_, ok := c.load(id)
	return ok
}

func (c *instanceCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}
