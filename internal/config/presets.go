package config

import "sort"

// Profiles are named overlays for common ways of running gcint.
var Profiles = map[string]*Config{
	"interactive": {
		Strategy: "warm-only", Workers: 1, LogLevel: "info",
	},
	"library": {
		Strategy: "warm-and-export", Workers: 1, LogLevel: "warn",
	},
	"fast": {
		Strategy: "warm-only", Workers: 8, LogLevel: "warn",
	},
	"verbose": {
		Strategy: "warm-and-export", Workers: 1, LogLevel: "debug",
	},
}

// GetProfile returns a copy of the named profile applied over the defaults,
// or nil if unknown.
func GetProfile(name string) *Config {
	p, ok := Profiles[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Strategy = p.Strategy
	cfg.Workers = p.Workers
	cfg.LogLevel = p.LogLevel
	return cfg
}

func ListProfiles() []string {
	names := make([]string, 0, len(Profiles))
	for name := range Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
