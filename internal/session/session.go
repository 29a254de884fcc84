// Package session bootstraps an interactive gcint session: it attaches the
// data files named on the command line, applies the run options, flattens a
// lone file into the namespace and warms (or exports) the toolkit classes.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/san-kum/gcint/internal/discover"
	"github.com/san-kum/gcint/internal/logging"
	"github.com/san-kum/gcint/internal/namespace"
	"github.com/san-kum/gcint/internal/republish"
	"github.com/san-kum/gcint/internal/runopt"
)

const (
	DefaultDataExt = ".root"

	// Aliases bound into every session.
	RootAlias   = "R"
	ScopeAlias  = "genie"
	ShortAlias  = "G"
	RunOptAlias = "RunOpt"
)

var (
	// ErrNoRunOpt indicates a bootstrap attempted without run options.
	ErrNoRunOpt = errors.New("session: run options required")

	// ErrNoOpener indicates data files were given but nothing can open them.
	ErrNoOpener = errors.New("session: no file opener configured")
)

// Bootstrapper holds everything a session is built from.
type Bootstrapper struct {
	Opener FileOpener
	RunOpt *runopt.RunOpt
	// Root is the unscoped reflection namespace, Scope the toolkit's own.
	Root  namespace.Namespace
	Scope namespace.Namespace
	// SourceRoot is walked for class candidates.
	SourceRoot string
	Strategy   republish.Strategy
	DataExt    string
	Discover   discover.Options
	Logger     *log.Logger
}

// Session is the result of a bootstrap.
type Session struct {
	Bindings namespace.Table
	Files    []File
	RunOpt   *runopt.RunOpt
	Scope    namespace.Namespace
	// Exported holds the symbols republished by WarmAndExport.
	Exported namespace.Table
}

// Close closes every attached file and returns the first error.
func (s *Session) Close() error {
	var first error
	for _, f := range s.Files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Run performs the one-shot bootstrap for the given invocation arguments.
func (b *Bootstrapper) Run(ctx context.Context, args []string) (*Session, error) {
	if b.RunOpt == nil {
		return nil, ErrNoRunOpt
	}
	logger := logging.OrDiscard(b.Logger)
	ext := b.DataExt
	if ext == "" {
		ext = DefaultDataExt
	}

	s := &Session{
		Bindings: make(namespace.Table),
		Exported: make(namespace.Table),
		RunOpt:   b.RunOpt,
		Scope:    b.Scope,
	}

	paths := DataFiles(args, ext)
	if len(paths) > 0 && b.Opener == nil {
		return nil, ErrNoOpener
	}
	for i, path := range paths {
		name := FileVar(i)
		logger.Infof("attaching file %s as %s", path, name)
		f, err := b.Opener.Open(path)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		s.Files = append(s.Files, f)
		s.Bindings[name] = f
	}

	if b.Root != nil {
		s.Bindings[RootAlias] = b.Root
	}
	if b.Scope != nil {
		s.Bindings[ScopeAlias] = b.Scope
		s.Bindings[ShortAlias] = b.Scope
	}
	s.Bindings[RunOptAlias] = b.RunOpt
	logger.Debug("run options applied", "tune", b.RunOpt.TuneName())

	if len(s.Files) == 1 {
		if err := Burst(s.Files[0], s.Bindings, logger); err != nil {
			_ = s.Close()
			return nil, err
		}
	}

	if b.Scope != nil {
		s.Exported = republish.Apply(ctx, b.Strategy, b.SourceRoot, b.Scope, s.Bindings, b.withLogger(logger))
	}
	return s, nil
}

func (b *Bootstrapper) withLogger(l *log.Logger) discover.Options {
	opts := b.Discover
	if opts.Logger == nil {
		opts.Logger = l
	}
	return opts
}

// Burst binds every entry of f under its key name. Non-empty trees get their
// first row loaded so their schema is inspectable straight away.
func Burst(f File, target namespace.Table, logger *log.Logger) error {
	logger = logging.OrDiscard(logger)
	for _, k := range f.Keys() {
		obj, err := k.Object()
		if err != nil {
			return fmt.Errorf("read %s from %s: %w", k.Name(), f.Name(), err)
		}
		if t, ok := obj.(Tree); ok && t.Entries() > 0 {
			if err := t.LoadEntry(0); err != nil {
				logger.Warn("could not load first entry", "tree", k.Name(), "err", err)
			}
		}
		target[k.Name()] = obj
	}
	return nil
}
