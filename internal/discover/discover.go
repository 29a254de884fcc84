// Package discover warms a reflection namespace with class names found in
// the toolkit's source tree. Its only effect is on the namespace's cache:
// every name is looked up and the result thrown away.
package discover

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/san-kum/gcint/internal/logging"
)

// DefaultSuffix is the implementation-unit suffix class names are derived from.
const DefaultSuffix = ".cxx"

// Lookuper is the slice of a namespace the discoverer needs.
type Lookuper interface {
	Lookup(name string) (any, error)
}

type Options struct {
	// Suffix overrides DefaultSuffix.
	Suffix string
	// Workers > 1 resolves names concurrently; the namespace must then be
	// safe for concurrent use.
	Workers int
	Logger  *log.Logger
}

func (o Options) suffix() string {
	if o.Suffix == "" {
		return DefaultSuffix
	}
	return o.Suffix
}

// Candidates walks root and returns one name per file ending in suffix, in
// walk order. Duplicates are kept. Unreadable subdirectories are skipped;
// only a missing or unreadable root is an error.
func Candidates(root, suffix string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	var names []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.HasSuffix(name, suffix) || len(name) == len(suffix) {
			return nil
		}
		names = append(names, strings.TrimSuffix(name, suffix))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Warm looks up every name in ns and discards the result. Failures, panics
// included, are isolated per name. It returns how many names resolved.
func Warm(ctx context.Context, ns Lookuper, names []string, opts Options) int {
	if opts.Workers <= 1 {
		resolved := 0
		for _, name := range names {
			if ctx.Err() != nil {
				break
			}
			if touch(ns, name) {
				resolved++
			}
		}
		return resolved
	}

	jobs := make(chan string)
	counts := make([]int, opts.Workers)

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for name := range jobs {
				if touch(ns, name) {
					counts[idx]++
				}
			}
		}(w)
	}

feed:
	for _, name := range names {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- name:
		}
	}
	close(jobs)
	wg.Wait()

	resolved := 0
	for _, c := range counts {
		resolved += c
	}
	return resolved
}

func touch(ns Lookuper, name string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_, err := ns.Lookup(name)
	return err == nil
}

// Discover finds candidates under root and warms ns with them. Nothing is
// returned: a failed walk or an unresolved name only degrades what the
// namespace knows.
func Discover(ctx context.Context, root string, ns Lookuper, opts Options) {
	logger := logging.OrDiscard(opts.Logger)

	names, err := Candidates(root, opts.suffix())
	if err != nil {
		logger.Debug("source walk failed", "root", root, "err", err)
		return
	}

	resolved := Warm(ctx, ns, names, opts)
	logger.Debug("warmed namespace", "root", root, "candidates", len(names), "resolved", resolved)
}
