package runopt

import "sort"

// Entry describes one catalogued tune.
type Entry struct {
	Name        string
	Description string
}

var catalog = map[string]string{
	DefaultTuneName:  "built-in default model configuration",
	"G18_01a_00_000": "G18 empirical model set, hA2018 FSI",
	"G18_01b_00_000": "G18 empirical model set, hN2018 FSI",
	"G18_02a_00_000": "G18 empirical set with Berger-Sehgal resonances, hA2018 FSI",
	"G18_02b_00_000": "G18 empirical set with Berger-Sehgal resonances, hN2018 FSI",
	"G18_10a_00_000": "G18 theory-driven model set, hA2018 FSI",
	"G18_10a_02_11a": "G18_10a refit to free-nucleon data",
	"G18_10b_00_000": "G18 theory-driven model set, hN2018 FSI",
	"G21_11a_00_000": "G21 SuSAv2 model set, hA2018 FSI",
	"G21_11b_00_000": "G21 SuSAv2 model set, hN2018 FSI",
}

// Lookup returns the catalog description for a tune name.
func Lookup(name string) (Entry, bool) {
	desc, ok := catalog[name]
	if !ok {
		return Entry{}, false
	}
	return Entry{Name: name, Description: desc}, true
}

// List returns every catalogued tune, sorted by name.
func List() []Entry {
	entries := make([]Entry, 0, len(catalog))
	for name, desc := range catalog {
		entries = append(entries, Entry{Name: name, Description: desc})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
