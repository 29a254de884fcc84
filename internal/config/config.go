package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSourceDir    = "src"
	DefaultSourceSuffix = ".cxx"
	DefaultDataExt      = ".root"
	DefaultScope        = "genie"
	DefaultTune         = "Default"
	DefaultStrategy     = "warm-only"
	DefaultWorkers      = 1
	DefaultLogLevel     = "info"
	DefaultHistory      = ".gcint_history"
)

var (
	// ErrMissingRoot indicates the toolkit installation root is unset.
	ErrMissingRoot = errors.New("config: GENIE installation root not set")

	// ErrInvalid indicates a configuration value outside its valid range.
	ErrInvalid = errors.New("config: invalid value")
)

type Config struct {
	// GenieRoot comes only from GENIE; config files cannot set it.
	GenieRoot    string   `yaml:"-" env:"GENIE"`
	SourceDir    string   `yaml:"source_dir" env:"GCINT_SOURCE_DIR"`
	SourceSuffix string   `yaml:"source_suffix" env:"GCINT_SOURCE_SUFFIX"`
	DataExt      string   `yaml:"data_ext" env:"GCINT_DATA_EXT"`
	Scope        string   `yaml:"scope" env:"GCINT_SCOPE"`
	Tune         string   `yaml:"tune" env:"GCINT_TUNE"`
	Strategy     string   `yaml:"strategy" env:"GCINT_STRATEGY"`
	Workers      int      `yaml:"workers" env:"GCINT_WORKERS"`
	LogLevel     string   `yaml:"log_level" env:"GCINT_LOG_LEVEL"`
	History      string   `yaml:"history" env:"GCINT_HISTORY"`
	Dictionaries []string `yaml:"dictionaries" env:"GCINT_DICTIONARIES" envSeparator:":"`
}

func DefaultConfig() *Config {
	return &Config{
		SourceDir:    DefaultSourceDir,
		SourceSuffix: DefaultSourceSuffix,
		DataExt:      DefaultDataExt,
		Scope:        DefaultScope,
		Tune:         DefaultTune,
		Strategy:     DefaultStrategy,
		Workers:      DefaultWorkers,
		LogLevel:     DefaultLogLevel,
		History:      DefaultHistory,
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := loadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadInto decodes the YAML file over cfg; keys absent from the file keep
// their current values.
func loadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overlays environment variables onto cfg. Unset variables leave
// the current value in place.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Resolve layers, lowest first: defaults, the GCINT_PROFILE profile, the
// YAML file named by GCINT_CONFIG, then the remaining environment. The
// result is validated.
func Resolve() (*Config, error) {
	cfg := DefaultConfig()
	if name := os.Getenv("GCINT_PROFILE"); name != "" {
		cfg = GetProfile(name)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown profile %s (available: %v)", ErrInvalid, name, ListProfiles())
		}
	}
	if path := os.Getenv("GCINT_CONFIG"); path != "" {
		if err := loadInto(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.GenieRoot == "" {
		return ErrMissingRoot
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalid, c.Workers)
	}
	if c.SourceSuffix == "" {
		return fmt.Errorf("%w: empty source suffix", ErrInvalid)
	}
	if c.DataExt == "" {
		return fmt.Errorf("%w: empty data file extension", ErrInvalid)
	}
	return nil
}

// SourceRoot is the directory walked for class candidates.
func (c *Config) SourceRoot() string {
	return filepath.Join(c.GenieRoot, c.SourceDir)
}

// HistoryPath resolves the REPL history file against the home directory
// when it is relative.
func (c *Config) HistoryPath() string {
	if c.History == "" || filepath.IsAbs(c.History) {
		return c.History
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return c.History
	}
	return filepath.Join(home, c.History)
}
