package session_test

import (
	"errors"
	"fmt"

	"github.com/san-kum/gcint/internal/session"
)

type fakeTree struct {
	rows    int64
	loaded  []int64
	loadErr error
}

func (t *fakeTree) Entries() int64 { return t.rows }

func (t *fakeTree) LoadEntry(i int64) error {
	if t.loadErr != nil {
		return t.loadErr
	}
	t.loaded = append(t.loaded, i)
	return nil
}

type fakeHist struct{ title string }

type fakeKey struct {
	name string
	obj  any
	err  error
}

func (k fakeKey) Name() string { return k.name }

func (k fakeKey) ClassName() string { return fmt.Sprintf("%T", k.obj) }

func (k fakeKey) Object() (any, error) { return k.obj, k.err }

type fakeFile struct {
	path   string
	keys   []session.Key
	closed bool
}

func (f *fakeFile) Name() string { return f.path }

func (f *fakeFile) Keys() []session.Key { return f.keys }

func (f *fakeFile) Close() error {
	f.closed = true
	return nil
}

type fakeOpener struct {
	files  map[string]*fakeFile
	opened []string
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{files: make(map[string]*fakeFile)}
}

func (o *fakeOpener) add(path string, keys ...session.Key) *fakeFile {
	f := &fakeFile{path: path, keys: keys}
	o.files[path] = f
	return f
}

func (o *fakeOpener) Open(path string) (session.File, error) {
	o.opened = append(o.opened, path)
	f, ok := o.files[path]
	if !ok {
		return nil, errors.New("no such file or directory")
	}
	return f, nil
}
