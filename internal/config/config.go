// Package config holds the process-wide settings the rest of the compiler
// consults: the optional on-disk flux.yaml, and a pair of mode switches
// (IsTestMode, IsLSPMode); IsTestMode changes how type variables print.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const SourceFileExt = ".flux"

// IsTestMode is set once at startup by the test-runner entry point; it
// switches types.TVar.String from its normal t0/t1/... naming to letter
// names (A, B, ..., Z, A1, ...) for golden fixtures.
var IsTestMode = false

// IsLSPMode is the mode switch for an editor-facing entry point. No
// package in this module reads it.
var IsLSPMode = false

// Config is the decoded shape of flux.yaml.
type Config struct {
	StdlibRoot          string   `yaml:"stdlibRoot"`
	Prelude             []string `yaml:"prelude"`
	PrettyError         bool     `yaml:"prettyError"`
	StrictImportCycles  bool     `yaml:"strictImportCycles"`
	ResolverCacheDir    string   `yaml:"resolverCacheDir"`
}

// Default returns the configuration used when no flux.yaml is present.
func Default() *Config {
	return &Config{
		StdlibRoot:         "stdlib",
		Prelude:            []string{"universe", "influxdata/influxdb"},
		PrettyError:        true,
		StrictImportCycles: true,
		ResolverCacheDir:   ".flux/cache",
	}
}

// Load reads and decodes path, falling back to Default when path does not
// exist. A present-but-malformed file is a hard error — silently ignoring
// a broken config is worse than failing the build.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
