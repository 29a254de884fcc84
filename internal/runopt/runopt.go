// Package runopt holds the toolkit run options gcint threads into a session,
// most importantly the tune: the named comprehensive model configuration the
// toolkit runtime is set up with before any simulation object is touched.
package runopt

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// DefaultTuneName is accepted verbatim and maps to the toolkit's built-in
// default configuration.
const DefaultTuneName = "Default"

var (
	// ErrBadTuneName indicates a name that does not follow the tune naming scheme.
	ErrBadTuneName = errors.New("runopt: malformed tune name")

	// ErrUnknownTune indicates a well-formed name absent from the catalog.
	ErrUnknownTune = errors.New("runopt: unknown tune")
)

// Tune names look like G18_02a_00_000: prefix, year, model, variant, fit and
// tweak.
var tunePattern = regexp.MustCompile(`^([A-Z]+)(\d{2})_(\d{2})([a-z])_([0-9a-z]{2})_([0-9a-z]{3})$`)

// Tune is a parsed tune name.
type Tune struct {
	Name    string
	Prefix  string
	Year    int
	Model   int
	Variant string
	Fit     string
	Tweak   string
}

// IsDefault reports whether t is the built-in default tune.
func (t Tune) IsDefault() bool { return t.Name == DefaultTuneName }

// ModelID is the model-level identifier shared by every fit and tweak,
// e.g. G18_02a.
func (t Tune) ModelID() string {
	if t.IsDefault() {
		return t.Name
	}
	return fmt.Sprintf("%s%02d_%02d%s", t.Prefix, t.Year, t.Model, t.Variant)
}

func (t Tune) String() string { return t.Name }

// ParseTune validates name against the tune naming scheme.
func ParseTune(name string) (Tune, error) {
	if name == DefaultTuneName {
		return Tune{Name: name}, nil
	}
	m := tunePattern.FindStringSubmatch(name)
	if m == nil {
		return Tune{}, fmt.Errorf("%w: %q", ErrBadTuneName, name)
	}
	year, _ := strconv.Atoi(m[2])
	model, _ := strconv.Atoi(m[3])
	return Tune{
		Name:    name,
		Prefix:  m[1],
		Year:    year,
		Model:   model,
		Variant: m[4],
		Fit:     m[5],
		Tweak:   m[6],
	}, nil
}

// RunOpt is the explicit replacement for the toolkit's process-wide run
// options singleton. Build one per session and pass it along.
type RunOpt struct {
	tune Tune
}

// New validates tuneName and returns run options using it. Tunes missing
// from the catalog are accepted only when strict is false.
func New(tuneName string, strict bool) (*RunOpt, error) {
	t, err := ParseTune(tuneName)
	if err != nil {
		return nil, err
	}
	if strict {
		if _, ok := Lookup(t.Name); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTune, t.Name)
		}
	}
	return &RunOpt{tune: t}, nil
}

func (r *RunOpt) Tune() Tune { return r.tune }

func (r *RunOpt) TuneName() string { return r.tune.Name }

func (r *RunOpt) String() string {
	return fmt.Sprintf("RunOpt{tune=%s}", r.tune.Name)
}
