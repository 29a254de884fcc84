// Package rootfile opens ROOT data files with groot and exposes them through
// the session file contract.
package rootfile

import (
	"fmt"
	"reflect"
	"sort"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/root"
	"go-hep.org/x/hep/groot/rtree"

	"github.com/san-kum/gcint/internal/dict"
	"github.com/san-kum/gcint/internal/session"
)

// Opener opens ROOT files and feeds their streamer infos to Dict, so
// classes stored in a data file become resolvable.
type Opener struct {
	Dict *dict.Registry
}

func (o Opener) Open(path string) (session.File, error) {
	f, err := groot.Open(path)
	if err != nil {
		return nil, err
	}
	if o.Dict != nil {
		o.Dict.AddStreamers(f.StreamerInfos())
	}
	return &File{f: f, path: path}, nil
}

// File wraps an opened ROOT file.
type File struct {
	f    *riofs.File
	path string
}

func (f *File) Name() string { return f.path }

func (f *File) Keys() []session.Key {
	keys := f.f.Keys()
	out := make([]session.Key, 0, len(keys))
	for i := range keys {
		out = append(out, &Key{k: &keys[i]})
	}
	return out
}

func (f *File) Close() error { return f.f.Close() }

func (f *File) String() string {
	return fmt.Sprintf("<TFile %s, %d keys>", f.path, len(f.f.Keys()))
}

// Key is one entry of a File.
type Key struct {
	k *riofs.Key
}

func (k *Key) Name() string { return k.k.Name() }

func (k *Key) ClassName() string { return k.k.ClassName() }

// Object reads the entry. Trees come back wrapped as *Tree.
func (k *Key) Object() (any, error) {
	obj, err := k.k.Object()
	if err != nil {
		return nil, err
	}
	return wrap(obj), nil
}

func wrap(obj root.Object) any {
	if t, ok := obj.(rtree.Tree); ok {
		return &Tree{t: t}
	}
	return obj
}

// Tree wraps a groot tree with row materialization.
type Tree struct {
	t   rtree.Tree
	row map[string]any
	cur int64
}

func (t *Tree) Name() string { return t.t.Name() }

func (t *Tree) Title() string { return t.t.Title() }

func (t *Tree) Entries() int64 { return t.t.Entries() }

// Branches lists the top-level branch names.
func (t *Tree) Branches() []string {
	brs := t.t.Branches()
	names := make([]string, 0, len(brs))
	for _, b := range brs {
		names = append(names, b.Name())
	}
	return names
}

// LoadEntry reads row i into memory; Row returns it afterwards.
func (t *Tree) LoadEntry(i int64) error {
	if i < 0 || i >= t.t.Entries() {
		return fmt.Errorf("entry %d out of range [0, %d)", i, t.t.Entries())
	}
	rvars := rtree.NewReadVars(t.t)
	r, err := rtree.NewReader(t.t, rvars, rtree.WithRange(i, i+1))
	if err != nil {
		return fmt.Errorf("open reader on %s: %w", t.Name(), err)
	}
	defer r.Close()

	row := make(map[string]any, len(rvars))
	err = r.Read(func(ctx rtree.RCtx) error {
		for _, rv := range rvars {
			row[rv.Name] = reflect.ValueOf(rv.Value).Elem().Interface()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("read entry %d of %s: %w", i, t.Name(), err)
	}
	t.row = row
	t.cur = i
	return nil
}

// Row returns the last loaded row, or nil if none was loaded.
func (t *Tree) Row() map[string]any { return t.row }

// Loaded reports which row Row holds.
func (t *Tree) Loaded() (int64, bool) { return t.cur, t.row != nil }

// Column reads the numeric values of branch in entry order, stopping after
// limit entries when limit > 0.
func (t *Tree) Column(branch string, limit int64) ([]float64, error) {
	var rvar *rtree.ReadVar
	rvars := rtree.NewReadVars(t.t)
	for i := range rvars {
		if rvars[i].Name == branch {
			rvar = &rvars[i]
			break
		}
	}
	if rvar == nil {
		return nil, fmt.Errorf("no branch %q in %s (have %v)", branch, t.Name(), t.sortedBranches())
	}

	end := t.t.Entries()
	if limit > 0 && limit < end {
		end = limit
	}
	r, err := rtree.NewReader(t.t, []rtree.ReadVar{*rvar}, rtree.WithRange(0, end))
	if err != nil {
		return nil, fmt.Errorf("open reader on %s: %w", t.Name(), err)
	}
	defer r.Close()

	out := make([]float64, 0, end)
	err = r.Read(func(ctx rtree.RCtx) error {
		v, ok := toFloat(reflect.ValueOf(rvar.Value).Elem())
		if !ok {
			return fmt.Errorf("branch %q is not numeric", branch)
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Tree) sortedBranches() []string {
	names := t.Branches()
	sort.Strings(names)
	return names
}

func (t *Tree) String() string {
	return fmt.Sprintf("<TTree %s, %d entries>", t.Name(), t.Entries())
}

func toFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Bool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
