// Package republish copies the leaf symbols of a warmed reflection namespace
// into a caller-owned binding table.
package republish

import (
	"context"
	"fmt"
	"strings"

	"github.com/san-kum/gcint/internal/discover"
	"github.com/san-kum/gcint/internal/namespace"
)

// InternalPrefix marks members reserved for the reflection layer itself.
const InternalPrefix = "__"

// Strategy selects what a bootstrap does with the toolkit namespace.
type Strategy int

const (
	// WarmOnly materializes discovered classes without binding them; the
	// default for interactive sessions.
	WarmOnly Strategy = iota
	// WarmAndExport also republishes every leaf symbol; used when gcint
	// behaves as a library.
	WarmAndExport
)

func (s Strategy) String() string {
	switch s {
	case WarmOnly:
		return "warm-only"
	case WarmAndExport:
		return "warm-and-export"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "warm-only", "warm":
		return WarmOnly, nil
	case "warm-and-export", "export":
		return WarmAndExport, nil
	}
	return WarmOnly, fmt.Errorf("unknown strategy: %s (available: warm-only, warm-and-export)", name)
}

// Exportable reports whether a member name is a leaf symbol that may be
// republished.
func Exportable(name string) bool {
	if name == "" || strings.HasPrefix(name, InternalPrefix) {
		return false
	}
	return !strings.Contains(name, namespace.Separator)
}

// Snapshot returns every exportable member of ns that resolves to something
// other than a nested namespace. Members that fail to resolve are skipped.
func Snapshot(ns namespace.Namespace) namespace.Table {
	out := make(namespace.Table)
	for _, name := range ns.Members() {
		if !Exportable(name) {
			continue
		}
		v, ok := fetch(ns, name)
		if !ok {
			continue
		}
		if _, container := v.(namespace.Namespace); container {
			continue
		}
		out[name] = v
	}
	return out
}

func fetch(ns namespace.Namespace, name string) (v any, ok bool) {
	defer func() {
		if recover() != nil {
			v, ok = nil, false
		}
	}()
	v, err := ns.Lookup(name)
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}

// Export merges Snapshot(ns) into target and returns the merged snapshot.
// Existing bindings are only ever overwritten by name, never removed.
func Export(ns namespace.Namespace, target namespace.Table) namespace.Table {
	snap := Snapshot(ns)
	target.Merge(snap)
	return snap
}

// Apply warms ns from the classes under sourceRoot and, for WarmAndExport,
// republishes its leaf symbols into target. It returns what was exported,
// which is empty for WarmOnly.
func Apply(ctx context.Context, s Strategy, sourceRoot string, ns namespace.Namespace, target namespace.Table, opts discover.Options) namespace.Table {
	discover.Discover(ctx, sourceRoot, ns, opts)
	if s != WarmAndExport {
		return namespace.Table{}
	}
	return Export(ns, target)
}
