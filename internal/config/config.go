// Package config loads and validates the tsbridge configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// DefaultDepthLimit bounds transitive type discovery when the config does
// not set one.
const DefaultDepthLimit = 20

// Config represents the tsbridge configuration, read from
// tsbridge.config.json or tsbridge.config.yaml.
type Config struct {
	Extract ExtractConfig `json:"extract" yaml:"extract"`
	Runtime RuntimeConfig `json:"runtime,omitempty" yaml:"runtime,omitempty"`

	// Output is the directory payloads and the manifest are written to.
	Output string `json:"output" yaml:"output"`

	// TSConfig points at the project's tsconfig.json; empty means
	// "tsconfig.json next to the config file".
	TSConfig string `json:"tsconfig,omitempty" yaml:"tsconfig,omitempty"`
}

// ExtractConfig specifies which files to scan and how to traverse them.
type ExtractConfig struct {
	Include []string `json:"include" yaml:"include"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// Functions are the bridge function names whose call sites are
	// extracted. Defaults to ["runInAgent"].
	Functions []string `json:"functions,omitempty" yaml:"functions,omitempty"`

	// DepthLimit bounds transitive type discovery hops (default 20).
	DepthLimit int `json:"depthLimit,omitempty" yaml:"depthLimit,omitempty"`

	// Remap maps declaration-only module specifiers onto the packages the
	// runtime actually loads. Patterns may contain one "*".
	Remap map[string]string `json:"remap,omitempty" yaml:"remap,omitempty"`
}

// RuntimeConfig pins the runtime package the generated payloads target.
type RuntimeConfig struct {
	// Package is the npm package name of the agent runtime.
	Package string `json:"package,omitempty" yaml:"package,omitempty"`
	// Version is a semver constraint the installed runtime must satisfy,
	// e.g. "^0.4.0".
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Extract: ExtractConfig{
			Include:    []string{"src/**/*.ts"},
			Functions:  []string{"runInAgent"},
			DepthLimit: DefaultDepthLimit,
		},
		Output: "dist/tsbridge",
	}
}

// Load reads and parses a tsbridge config file. The format follows the
// extension: .json via encoding/json, .yaml/.yml via yaml.v3.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	config := DefaultConfig()
	switch ext := filepath.Ext(path); ext {
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config file %q: unsupported extension %q", path, ext)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}
	return &config, nil
}

// applyDefaults fills fields an explicit config file may have zeroed out.
func (c *Config) applyDefaults() {
	if len(c.Extract.Functions) == 0 {
		c.Extract.Functions = []string{"runInAgent"}
	}
	if c.Extract.DepthLimit == 0 {
		c.Extract.DepthLimit = DefaultDepthLimit
	}
}

// Validate checks the config for logical errors.
func (c *Config) Validate() error {
	if len(c.Extract.Include) == 0 {
		return fmt.Errorf("extract.include must have at least one pattern")
	}
	if c.Extract.DepthLimit < 1 {
		return fmt.Errorf("extract.depthLimit must be positive, got %d", c.Extract.DepthLimit)
	}
	for _, fn := range c.Extract.Functions {
		if fn == "" {
			return fmt.Errorf("extract.functions must not contain empty names")
		}
	}
	for pattern, target := range c.Extract.Remap {
		if target == "" {
			return fmt.Errorf("extract.remap[%q]: target must not be empty", pattern)
		}
	}
	if c.Output == "" {
		return fmt.Errorf("output must not be empty")
	}
	if c.Runtime.Version != "" {
		if _, err := semver.NewConstraint(c.Runtime.Version); err != nil {
			return fmt.Errorf("runtime.version: %q is not a valid semver constraint: %w", c.Runtime.Version, err)
		}
	}
	return nil
}

// RuntimeSatisfied reports whether an installed runtime version meets the
// configured constraint. An empty constraint always passes.
func (c *Config) RuntimeSatisfied(installed string) (bool, error) {
	if c.Runtime.Version == "" {
		return true, nil
	}
	constraint, err := semver.NewConstraint(c.Runtime.Version)
	if err != nil {
		return false, err
	}
	v, err := semver.NewVersion(installed)
	if err != nil {
		return false, fmt.Errorf("installed runtime version %q is not semver: %w", installed, err)
	}
	return constraint.Check(v), nil
}
