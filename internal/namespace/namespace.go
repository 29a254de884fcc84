package namespace

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Separator joins a scope and a member into a qualified name.
const Separator = "::"

// Namespace is a reflection scope supporting attribute-style lookup.
type Namespace interface {
	// Name returns the qualified scope name ("" for the global scope).
	Name() string
	// Lookup resolves a member, materializing it on first access.
	Lookup(name string) (any, error)
	// Members lists the names known so far, in materialization order.
	Members() []string
}

// Resolver materializes a fully qualified name into a live handle.
type Resolver interface {
	Resolve(qualified string) (any, error)
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(qualified string) (any, error)

func (f ResolverFunc) Resolve(qualified string) (any, error) {
	return f(qualified)
}

// Nester is implemented by handles that expose nested qualified names once
// materialized (inner classes, typedefs).
type Nester interface {
	Nested() []string
}

// Qualify joins scope and name with Separator.
func Qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + Separator + name
}

// Lazy caches whatever its Resolver has materialized.
type Lazy struct {
	scope string
	res   Resolver

	mu    sync.RWMutex
	known map[string]any
	order []string
}

func NewLazy(scope string, res Resolver) *Lazy {
	return &Lazy{
		scope: scope,
		res:   res,
		known: make(map[string]any),
	}
}

func (l *Lazy) Name() string { return l.scope }

func (l *Lazy) Lookup(name string) (v any, err error) {
	l.mu.RLock()
	v, ok := l.known[name]
	l.mu.RUnlock()
	if _, announced := v.(pending); ok && !announced {
		return v, nil
	}

	if l.res == nil {
		return nil, &LookupError{Scope: l.scope, Name: name, Wrapped: ErrNoResolver}
	}

	v, err = l.resolve(name)
	if err != nil {
		return nil, &LookupError{Scope: l.scope, Name: name, Wrapped: fmt.Errorf("%w: %w", ErrUnresolved, err)}
	}
	if v == nil {
		return nil, &LookupError{Scope: l.scope, Name: name, Wrapped: ErrUnresolved}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if prev, ok := l.known[name]; ok {
		if _, announced := prev.(pending); !announced {
			// another goroutine won the race
			return prev, nil
		}
		l.known[name] = v
	} else {
		l.add(name, v)
	}
	if n, ok := v.(Nester); ok {
		for _, q := range n.Nested() {
			rel := q
			if l.scope != "" {
				if !strings.HasPrefix(q, l.scope+Separator) {
					continue
				}
				rel = q[len(l.scope)+len(Separator):]
			}
			if _, dup := l.known[rel]; !dup && rel != "" {
				l.add(rel, pending{})
			}
		}
	}
	return v, nil
}

// pending marks a member announced by a materialized parent but not yet
// resolved itself.
type pending struct{}

// resolve shields callers from providers that panic on unknown names.
func (l *Lazy) resolve(name string) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("resolver panic: %v", r)
		}
	}()
	return l.res.Resolve(Qualify(l.scope, name))
}

func (l *Lazy) add(name string, v any) {
	l.known[name] = v
	l.order = append(l.order, name)
}

func (l *Lazy) Members() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Bind registers a handle directly, as if it had been materialized.
func (l *Lazy) Bind(name string, v any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.known[name]; ok {
		l.known[name] = v
		return
	}
	l.add(name, v)
}

// Len returns the number of known members.
func (l *Lazy) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.known)
}

// Table is the caller-owned binding table handles are republished into.
type Table map[string]any

// Merge copies every binding of src into t, overwriting by name.
func (t Table) Merge(src Table) {
	for name, v := range src {
		t[name] = v
	}
}

// Names returns the bound names in lexical order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
