package container

import (
	"fmt"
	"maps"
	"strings"
	"sync"
)

// Entry describes how to build instances for one registered identifier.
//
// The handle returned by Add and Bind is the place to attach overrides:
//
//	c.Bind("Mailer", "SMTPMailer").
//	    SetShared(true).
//	    AddArgument("$host", "smtp.local").
//	    AddArgument("Transport", "TLSTransport")
type Entry struct {
	mu        sync.RWMutex
	concrete  string
	shared    bool
	arguments map[string]any
}

func newEntry(concrete string, shared bool) *Entry {
	return &Entry{
		concrete:  concrete,
		shared:    shared,
		arguments: make(map[string]any),
	}
}

// Identifier returns the concrete type this entry constructs.
func (e *Entry) Identifier() string { return e.concrete }

// IsShared reports whether resolved instances are reused while referenced.
func (e *Entry) IsShared() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.shared
}

// SetShared toggles instance sharing.
func (e *Entry) SetShared(shared bool) *Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shared = shared
	return e
}

// AddArgument overrides one constructor parameter.
//
// A key of "$name" (or "name") supplies a literal for the parameter called
// name. A key equal to a type identifier overrides that type for this entry
// only: a string value naming a registered identifier redirects resolution
// there, a non-string value is used as the instance itself, and a string
// naming nothing registered is ignored.
//
// Parameter names are matched first. A bare key that is both a parameter name
// and a type identifier is therefore the literal for that parameter and never
// a type override; prefer "$name" for parameters to keep the two apart.
func (e *Entry) AddArgument(key string, value any) *Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.arguments[checkKey(key)] = value
	return e
}

// AddArguments merges several overrides; existing keys are replaced.
func (e *Entry) AddArguments(args map[string]any) *Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k, v := range args {
		e.arguments[checkKey(k)] = v
	}
	return e
}

// Arguments returns a copy of the overrides.
func (e *Entry) Arguments() map[string]any {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return maps.Clone(e.arguments)
}

// snapshot freezes the entry for one Get call.
func (e *Entry) snapshot() (concrete string, shared bool, args map[string]any) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.concrete, e.shared, maps.Clone(e.arguments)
}

func checkKey(key string) string {
	if strings.TrimPrefix(key, "$") == "" {
		panic(fmt.Sprintf("container: invalid argument key %q", key))
	}
	return key
}

// ── Entry options ─────────────────────────────────────────────────────────────

type entryOptions struct {
	shared   bool
	autoload *bool
}

// EntryOption configures Add and Bind.
type EntryOption func(*entryOptions)

// Shared marks the entry as shared.
func Shared() EntryOption {
	return func(o *entryOptions) { o.shared = true }
}

// Autoload controls whether unknown types may be loaded by the introspector
// while registering. It defaults to the container's WithAutoload setting.
func Autoload(enabled bool) EntryOption {
	return func(o *entryOptions) { o.autoload = &enabled }
}
