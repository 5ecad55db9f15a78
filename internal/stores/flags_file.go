package stores

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// FlagDefaults are the feature flag values a fresh install starts with.
// Flags listed in ForceDefault ignore persisted values.
type FlagDefaults struct {
	Flags        map[string]bool `json:"flags" yaml:"flags" toml:"flags"`
	ForceDefault []string        `json:"forceDefault" yaml:"forceDefault" toml:"forceDefault"`
}

// BuiltinFlagDefaults returns the defaults used when no file is configured.
func BuiltinFlagDefaults() FlagDefaults {
	return FlagDefaults{
		Flags: map[string]bool{
			"logTelemetryToConsole": false,
			"showAllAssessments":    false,
			"showAllFeatureFlags":   false,
			"scoping":               false,
			"debugTools":            false,
		},
	}
}

// LoadFlagDefaults reads defaults from a .yaml, .yml, .toml or .json file.
// An empty path yields BuiltinFlagDefaults.
func LoadFlagDefaults(path string) (FlagDefaults, error) {
	if path == "" {
		return BuiltinFlagDefaults(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return FlagDefaults{}, fmt.Errorf("failed to read flag defaults: %w", err)
	}

	var defaults FlagDefaults
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &defaults)
	case ".toml":
		err = toml.Unmarshal(data, &defaults)
	case ".json":
		err = sonic.Unmarshal(data, &defaults)
	default:
		return FlagDefaults{}, fmt.Errorf("unsupported flag defaults format: %s", ext)
	}
	if err != nil {
		return FlagDefaults{}, fmt.Errorf("failed to parse flag defaults %s: %w", path, err)
	}
	if defaults.Flags == nil {
		defaults.Flags = make(map[string]bool)
	}
	return defaults, nil
}
