package run

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"src.dde.sh/pkg/eval"
)

// Color modes of the run report.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the content of the configuration file.
type Config struct {
	Color        string `yaml:"color"`
	MaxCallDepth int    `yaml:"max-call-depth"`
	HistoryFile  string `yaml:"history-file"`
	// 0 means seeding from the current time.
	Seed int64 `yaml:"seed"`
}

// DefaultConfig returns the configuration used when there is no
// configuration file.
func DefaultConfig() *Config {
	return &Config{Color: ColorAuto, MaxCallDepth: eval.DefaultMaxCallDepth}
}

// DefaultConfigPath returns the path of the configuration file used when -config
// is not given, $XDG_CONFIG_HOME/dde/config.yaml on Unix.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dde", "config.yaml"), nil
}

// LoadConfig reads the configuration file at path. Fields missing from the
// file keep their defaults. If mustExist is false, a missing file is not an
// error.
func LoadConfig(path string, mustExist bool) (*Config, error) {
	cfg := DefaultConfig()
	file, err := os.Open(path)
	if err != nil {
		if !mustExist && errors.Is(err, fs.ErrNotExist) {
			logger.Println("no config file at", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.HistoryFile = expandHome(cfg.HistoryFile)
	logger.Printf("loaded config from %s: %+v", path, *cfg)
	return cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be %s, %s or %s, but is %q",
			ColorAuto, ColorAlways, ColorNever, cfg.Color)
	}
	if cfg.MaxCallDepth <= 0 {
		return fmt.Errorf("max-call-depth must be positive, but is %d", cfg.MaxCallDepth)
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
