package session

import (
	"fmt"
	"strings"
)

// FileOpener opens toolkit data files.
type FileOpener interface {
	Open(path string) (File, error)
}

// File is an opened data file with named, keyed entries.
type File interface {
	Name() string
	Keys() []Key
	Close() error
}

// Key is one entry of a File.
type Key interface {
	Name() string
	ClassName() string
	Object() (any, error)
}

// Tree is a record-oriented entry whose rows must be loaded explicitly.
type Tree interface {
	Entries() int64
	LoadEntry(i int64) error
}

// FileVar is the binding name of the i-th attached file.
func FileVar(i int) string {
	return fmt.Sprintf("_file%d", i)
}

// DataFiles keeps the arguments ending in ext, preserving order.
func DataFiles(args []string, ext string) []string {
	var out []string
	for _, a := range args {
		if strings.HasSuffix(a, ext) {
			out = append(out, a)
		}
	}
	return out
}
