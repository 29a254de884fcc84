// Package draw renders tree branches as terminal plots.
package draw

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/guptarohit/asciigraph"
)

const (
	DefaultHeight = 10
	DefaultWidth  = 80
	DefaultBins   = 40
)

var ErrNoData = errors.New("draw: no data")

// Source is anything with numeric branches, such as an opened tree.
type Source interface {
	Column(branch string, limit int64) ([]float64, error)
}

type Options struct {
	Height int
	Width  int
	// Bins > 0 fills a histogram of the values instead of plotting
	// them in entry order.
	Bins  int
	Limit int64
}

func (o Options) withDefaults() Options {
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	return o
}

// Branch plots one branch of src to w.
func Branch(w io.Writer, src Source, branch string, opts Options) error {
	vals, err := src.Column(branch, opts.Limit)
	if err != nil {
		return err
	}
	return Values(w, branch, vals, opts)
}

func Values(w io.Writer, name string, vals []float64, opts Options) error {
	if len(vals) == 0 {
		return fmt.Errorf("%w for %s", ErrNoData, name)
	}
	opts = opts.withDefaults()

	data := vals
	caption := fmt.Sprintf("%s vs entry (%d entries)", name, len(vals))
	if opts.Bins > 0 {
		h := Fill(vals, opts.Bins)
		data = h.Counts
		caption = fmt.Sprintf("%s (%d entries, %d bins in [%.4g, %.4g))", name, len(vals), opts.Bins, h.Lo, h.Hi)
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption),
	)
	_, err := fmt.Fprintln(w, graph)
	return err
}

// Hist is a fixed-width 1D histogram over [Lo, Hi).
type Hist struct {
	Lo, Hi float64
	Counts []float64
}

// Fill bins vals into n equal bins spanning their range. The maximum
// lands in the last bin. NaN and infinite values are not counted.
func Fill(vals []float64, n int) Hist {
	if n <= 0 {
		n = DefaultBins
	}
	h := Hist{Counts: make([]float64, n)}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if !finite(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return h
	}
	if hi == lo {
		hi = lo + 1
	}
	h.Lo, h.Hi = lo, hi

	// halved so that hi-lo cannot overflow
	span := hi/2 - lo/2
	for _, v := range vals {
		if !finite(v) {
			continue
		}
		f := (v/2 - lo/2) / span * float64(n)
		i := n - 1
		if f < float64(n) {
			i = max(int(f), 0)
		}
		h.Counts[i]++
	}
	return h
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
