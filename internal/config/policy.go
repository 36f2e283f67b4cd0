package config

import (
	"fmt"
	"os"

	"github.com/sentra-sec/sentinel/internal/registry"
	"gopkg.in/yaml.v3"
)

// ComponentPolicy tunes one registered detector or checker.
type ComponentPolicy struct {
	Enabled *bool    `yaml:"enabled"`
	Weight  *float64 `yaml:"weight"`
}

// Policy is the YAML component policy file. Components not named keep
// their registered defaults; unknown names are an error so a typo in the
// file cannot silently leave a component on.
type Policy struct {
	Detectors map[string]ComponentPolicy `yaml:"detectors"`
	Checkers  map[string]ComponentPolicy `yaml:"checkers"`
}

// LoadPolicy reads and parses a YAML component policy file.
func LoadPolicy(path string) (*Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.LoadPolicy: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("config.LoadPolicy: parse %s: %w", path, err)
	}
	return &p, nil
}

// ApplyPolicy applies per-component overrides to a registry.
func ApplyPolicy[T any](reg *registry.Registry[T], policies map[string]ComponentPolicy) error {
	for name, pol := range policies {
		if pol.Weight != nil {
			if err := reg.SetWeight(name, *pol.Weight); err != nil {
				return fmt.Errorf("config.ApplyPolicy: %s: %w", name, err)
			}
		}
		if pol.Enabled != nil {
			var err error
			if *pol.Enabled {
				err = reg.Enable(name)
			} else {
				err = reg.Disable(name)
			}
			if err != nil {
				return fmt.Errorf("config.ApplyPolicy: %s: %w", name, err)
			}
		}
	}
	return nil
}
