package namespace

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolved indicates a name the reflection provider could not materialize.
	ErrUnresolved = errors.New("namespace: unresolved symbol")

	// ErrNoResolver indicates a lazy namespace built without a provider.
	ErrNoResolver = errors.New("namespace: no resolver configured")
)

// LookupError wraps a failed lookup with the scope and name involved.
type LookupError struct {
	Scope   string
	Name    string
	Wrapped error
}

func (e *LookupError) Error() string {
	if e.Scope == "" {
		return fmt.Sprintf("%s: %v", e.Name, e.Wrapped)
	}
	return fmt.Sprintf("%s.%s: %v", e.Scope, e.Name, e.Wrapped)
}

func (e *LookupError) Unwrap() error {
	return e.Wrapped
}
