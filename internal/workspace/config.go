package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables read by FromEnv.
const (
	EnvConfigPath     = "STROKE_MCP_CONFIG"
	EnvDictionaryPath = "STROKE_MCP_DICTIONARY"
)

const maxConfigSize = 1 << 20

// Config is the on-disk configuration: the workspace, the extraction tuning
// and the marker detector settings.
type Config struct {
	Workspace Spec           `yaml:"workspace" json:"workspace"`
	Tuning    Tuning         `yaml:"tuning" json:"tuning"`
	Detector  DetectorConfig `yaml:"detector" json:"detector"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Workspace: DefaultSpec(),
		Tuning:    DefaultTuning(),
		Detector:  DefaultDetectorConfig(),
	}
}

// Validate checks every section of the configuration.
func (c Config) Validate() error {
	var errs []error
	if err := c.Workspace.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("workspace: %w", err))
	}
	if err := c.Tuning.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tuning: %w", err))
	}
	if c.Detector.AdaptiveWindow < 0 {
		errs = append(errs, fmt.Errorf("detector: adaptive window must not be negative, got %d", c.Detector.AdaptiveWindow))
	}
	return errors.Join(errs...)
}

// Load reads a YAML configuration file. Fields omitted from the file keep
// their default values, so partial files are fine.
func Load(path string) (Config, error) {
	cfg := Default()

	cleanPath := filepath.Clean(path)
	switch ext := filepath.Ext(cleanPath); ext {
	case ".yaml", ".yml":
	default:
		return cfg, fmt.Errorf("config file must have .yaml or .yml extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A relative dictionary path is resolved against the config file.
	if p := cfg.Detector.DictionaryPath; p != "" && !filepath.IsAbs(p) {
		cfg.Detector.DictionaryPath = filepath.Join(filepath.Dir(cleanPath), p)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", cleanPath, err)
	}
	return cfg, nil
}

// FromEnv loads the file named by STROKE_MCP_CONFIG, or the defaults when it
// is unset, then applies STROKE_MCP_DICTIONARY.
func FromEnv() (Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigPath); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if dict := os.Getenv(EnvDictionaryPath); dict != "" {
		cfg.Detector.DictionaryPath = dict
	}
	return cfg, nil
}
