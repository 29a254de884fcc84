// Package dict is gcint's reflection provider: a class dictionary built from
// the ROOT streamer infos of dictionary and data files, backed by groot's
// type factory for core ROOT classes.
package dict

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rbytes"
	"go-hep.org/x/hep/groot/rtypes"

	"github.com/san-kum/gcint/internal/namespace"
)

var (
	// ErrUnknownClass indicates a name with no streamer info, factory or scope.
	ErrUnknownClass = errors.New("dict: unknown class")
)

// Member is one data member of a class, as described by its streamer.
type Member struct {
	Name string
	Type string
}

// ClassInfo is the registry's view of a streamer info.
type ClassInfo struct {
	Name    string
	Version int
	Members []Member
}

// Class is a materialized class handle.
type Class struct {
	Name    string
	Version int
	Members []Member
	// GoType is set for classes groot can instantiate natively.
	GoType string
	nested []string
}

// Nested lists the qualified names of classes declared inside c.
func (c *Class) Nested() []string { return c.nested }

// Short is the unqualified class name.
func (c *Class) Short() string {
	if i := strings.LastIndex(c.Name, namespace.Separator); i >= 0 {
		return c.Name[i+len(namespace.Separator):]
	}
	return c.Name
}

func (c *Class) String() string {
	if c.Version > 0 {
		return fmt.Sprintf("<class %s v%d>", c.Name, c.Version)
	}
	return fmt.Sprintf("<class %s>", c.Name)
}

type Registry struct {
	mu      sync.RWMutex
	classes map[string]ClassInfo
	scopes  map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[string]ClassInfo),
		scopes:  make(map[string]bool),
	}
}

// Add registers class infos, keeping the highest version seen per name.
// It returns the number of names that were not known before.
func (r *Registry) Add(infos ...ClassInfo) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, ci := range infos {
		if ci.Name == "" {
			continue
		}
		prev, ok := r.classes[ci.Name]
		if !ok {
			added++
		}
		if !ok || ci.Version >= prev.Version {
			r.classes[ci.Name] = ci
		}
		r.addScopes(ci.Name)
	}
	return added
}

// addScopes records every enclosing scope of name, ignoring template
// arguments.
func (r *Registry) addScopes(name string) {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	parts := strings.Split(name, namespace.Separator)
	for i := 1; i < len(parts); i++ {
		r.scopes[strings.Join(parts[:i], namespace.Separator)] = true
	}
}

// AddStreamers registers the classes described by ROOT streamer infos.
func (r *Registry) AddStreamers(sis []rbytes.StreamerInfo) int {
	infos := make([]ClassInfo, 0, len(sis))
	for _, si := range sis {
		ci := ClassInfo{Name: si.Name(), Version: si.ClassVersion()}
		for _, se := range si.Elements() {
			ci.Members = append(ci.Members, Member{Name: se.Name(), Type: se.TypeName()})
		}
		infos = append(infos, ci)
	}
	return r.Add(infos...)
}

// LoadFile registers the streamer infos stored in a ROOT file.
func (r *Registry) LoadFile(path string) (int, error) {
	f, err := groot.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open dictionary %s: %w", path, err)
	}
	defer f.Close()
	return r.AddStreamers(f.StreamerInfos()), nil
}

// Resolve implements namespace.Resolver.
func (r *Registry) Resolve(qualified string) (any, error) {
	r.mu.RLock()
	ci, ok := r.classes[qualified]
	isScope := r.scopes[qualified]
	r.mu.RUnlock()

	switch {
	case ok:
		return r.class(ci), nil
	case hasFactory(qualified):
		return &Class{
			Name:   qualified,
			GoType: factoryType(qualified),
			nested: r.nestedIn(qualified),
		}, nil
	case isScope:
		return namespace.NewLazy(qualified, r), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownClass, qualified)
}

func (r *Registry) class(ci ClassInfo) *Class {
	c := &Class{
		Name:    ci.Name,
		Version: ci.Version,
		Members: append([]Member(nil), ci.Members...),
		nested:  r.nestedIn(ci.Name),
	}
	if hasFactory(ci.Name) {
		c.GoType = factoryType(ci.Name)
	}
	return c
}

// nestedIn lists registered classes declared directly inside scope.
func (r *Registry) nestedIn(scope string) []string {
	prefix := scope + namespace.Separator
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for name := range r.classes {
		if rest, ok := strings.CutPrefix(name, prefix); ok && !strings.Contains(rest, namespace.Separator) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Scope returns a lazy namespace over this registry.
func (r *Registry) Scope(name string) *namespace.Lazy {
	return namespace.NewLazy(name, r)
}

// Names returns every registered class name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.classes)
}

func hasFactory(name string) bool {
	return rtypes.Factory.HasKey(name)
}

// factoryType names the Go type groot instantiates for a ROOT class.
func factoryType(name string) (typ string) {
	defer func() {
		if recover() != nil {
			typ = ""
		}
	}()
	v := rtypes.Factory.Get(name)()
	return v.Type().String()
}
