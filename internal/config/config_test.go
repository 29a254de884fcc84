package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.SourceSuffix != ".cxx" {
		t.Errorf("expected suffix .cxx, got %s", cfg.SourceSuffix)
	}
	if cfg.DataExt != ".root" {
		t.Errorf("expected data ext .root, got %s", cfg.DataExt)
	}
	if cfg.Tune != "Default" {
		t.Errorf("expected tune Default, got %s", cfg.Tune)
	}
	if cfg.Workers != 1 {
		t.Error("default discovery must be single-threaded")
	}
}

func TestValidateMissingRoot(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, ErrMissingRoot) {
		t.Errorf("expected ErrMissingRoot, got %v", err)
	}

	cfg.GenieRoot = "/opt/genie"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"empty suffix", func(c *Config) { c.SourceSuffix = "" }},
		{"empty data ext", func(c *Config) { c.DataExt = "" }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.GenieRoot = "/opt/genie"
		tt.mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: expected ErrInvalid, got %v", tt.name, err)
		}
	}
}

func TestSourceRoot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GenieRoot = "/opt/genie"
	if got := cfg.SourceRoot(); got != filepath.Join("/opt/genie", "src") {
		t.Errorf("unexpected source root %s", got)
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gcint.yaml")

	cfg := DefaultConfig()
	cfg.GenieRoot = "/opt/genie"
	cfg.Tune = "G18_02a_00_000"
	cfg.Dictionaries = []string{"/data/dict.root"}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Tune != "G18_02a_00_000" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
	if loaded.GenieRoot != "" {
		t.Errorf("installation root must not be persisted, got %s", loaded.GenieRoot)
	}
	if len(loaded.Dictionaries) != 1 {
		t.Errorf("expected one dictionary, got %v", loaded.Dictionaries)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gcint.yaml")
	if err := os.WriteFile(path, []byte("tune: G18_10a_02_11a\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.SourceSuffix != DefaultSourceSuffix || cfg.Workers != DefaultWorkers {
		t.Errorf("missing keys must keep defaults: %+v", cfg)
	}
}

func TestResolveFromEnv(t *testing.T) {
	t.Setenv("GCINT_PROFILE", "")
	t.Setenv("GCINT_CONFIG", "")
	t.Setenv("GENIE", "/opt/genie")
	t.Setenv("GCINT_TUNE", "G18_02b_00_000")
	t.Setenv("GCINT_WORKERS", "4")
	t.Setenv("GCINT_DICTIONARIES", "/a.root:/b.root")

	cfg, err := Resolve()
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if cfg.GenieRoot != "/opt/genie" {
		t.Errorf("expected GENIE root, got %s", cfg.GenieRoot)
	}
	if cfg.Tune != "G18_02b_00_000" {
		t.Errorf("expected env tune, got %s", cfg.Tune)
	}
	if cfg.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Workers)
	}
	if len(cfg.Dictionaries) != 2 || cfg.Dictionaries[1] != "/b.root" {
		t.Errorf("unexpected dictionaries %v", cfg.Dictionaries)
	}
	if cfg.SourceDir != DefaultSourceDir {
		t.Errorf("unset env must keep default source dir, got %q", cfg.SourceDir)
	}
}

func TestResolveMissingRoot(t *testing.T) {
	t.Setenv("GENIE", "")
	t.Setenv("GCINT_PROFILE", "")
	t.Setenv("GCINT_CONFIG", "")

	if _, err := Resolve(); !errors.Is(err, ErrMissingRoot) {
		t.Errorf("expected ErrMissingRoot, got %v", err)
	}
}

func TestResolveLayersFileOverProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gcint.yaml")
	if err := os.WriteFile(path, []byte("workers: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GENIE", "/srv/genie")
	t.Setenv("GCINT_WORKERS", "")
	t.Setenv("GCINT_STRATEGY", "")
	t.Setenv("GCINT_PROFILE", "library")
	t.Setenv("GCINT_CONFIG", path)

	cfg, err := Resolve()
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if cfg.Strategy != "warm-and-export" {
		t.Errorf("expected profile strategy, got %s", cfg.Strategy)
	}
	if cfg.Workers != 2 {
		t.Errorf("file must override profile workers, got %d", cfg.Workers)
	}
	if cfg.GenieRoot != "/srv/genie" {
		t.Errorf("expected env root, got %s", cfg.GenieRoot)
	}
}

func TestResolveIgnoresRootInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gcint.yaml")
	if err := os.WriteFile(path, []byte("genie_root: /srv/genie\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GENIE", "")
	t.Setenv("GCINT_PROFILE", "")
	t.Setenv("GCINT_CONFIG", path)

	if _, err := Resolve(); !errors.Is(err, ErrMissingRoot) {
		t.Errorf("expected ErrMissingRoot with the root only in the file, got %v", err)
	}
}

func TestResolveUnknownProfile(t *testing.T) {
	t.Setenv("GCINT_PROFILE", "nonexistent")
	if _, err := Resolve(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestGetProfile(t *testing.T) {
	cfg := GetProfile("library")
	if cfg == nil {
		t.Fatal("expected profile, got nil")
	}
	if cfg.Strategy != "warm-and-export" {
		t.Errorf("expected warm-and-export, got %s", cfg.Strategy)
	}
	if cfg.SourceSuffix != DefaultSourceSuffix {
		t.Error("profile must keep defaults for unset fields")
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	if cfg := GetProfile("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent profile")
	}
}

func TestListProfiles(t *testing.T) {
	profiles := ListProfiles()
	if len(profiles) != len(Profiles) {
		t.Errorf("expected %d profiles, got %d", len(Profiles), len(profiles))
	}
	for i := 1; i < len(profiles); i++ {
		if profiles[i-1] > profiles[i] {
			t.Errorf("profiles not sorted: %v", profiles)
		}
	}
}
