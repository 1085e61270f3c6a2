// Package config loads the pricing rate card from a YAML file, merged
// over compiled defaults so a partial file only overrides what it
// names.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/accessibleworks/scopescan/internal/pricing"
)

// file mirrors the YAML layout. Pointer fields distinguish "absent"
// from an explicit zero.
type file struct {
	Pricing struct {
		Tier1Rate      *float64 `yaml:"tier1_rate"`
		Tier2Rate      *float64 `yaml:"tier2_rate"`
		Tier3Rate      *float64 `yaml:"tier3_rate"`
		RushMultiplier *float64 `yaml:"rush_multiplier"`
		MinimumCharge  *float64 `yaml:"minimum_charge"`
	} `yaml:"pricing"`
	Scoring struct {
		FormFieldWeight       *int `yaml:"form_field_weight"`
		DensityThresholdBytes *int `yaml:"density_threshold_bytes"`
		DensityWeight         *int `yaml:"density_weight"`
		ImageThreshold        *int `yaml:"image_threshold"`
		ImageWeight           *int `yaml:"image_weight"`
	} `yaml:"scoring"`
}

// Load reads a rate card from path. An empty path returns the
// defaults unchanged.
func Load(path string) (pricing.Config, error) {
	cfg := pricing.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse merges YAML bytes over the default rate card and validates
// the result.
func Parse(data []byte) (pricing.Config, error) {
	cfg := pricing.DefaultConfig()

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if f.Pricing.Tier1Rate != nil {
		cfg.Tier1Rate = *f.Pricing.Tier1Rate
	}
	if f.Pricing.Tier2Rate != nil {
		cfg.Tier2Rate = *f.Pricing.Tier2Rate
	}
	if f.Pricing.Tier3Rate != nil {
		cfg.Tier3Rate = *f.Pricing.Tier3Rate
	}
	if f.Pricing.RushMultiplier != nil {
		cfg.RushMultiplier = *f.Pricing.RushMultiplier
	}
	if f.Pricing.MinimumCharge != nil {
		cfg.MinimumCharge = *f.Pricing.MinimumCharge
	}
	if f.Scoring.FormFieldWeight != nil {
		cfg.FormFieldWeight = *f.Scoring.FormFieldWeight
	}
	if f.Scoring.DensityThresholdBytes != nil {
		cfg.DensityThresholdBytes = *f.Scoring.DensityThresholdBytes
	}
	if f.Scoring.DensityWeight != nil {
		cfg.DensityWeight = *f.Scoring.DensityWeight
	}
	if f.Scoring.ImageThreshold != nil {
		cfg.ImageThreshold = *f.Scoring.ImageThreshold
	}
	if f.Scoring.ImageWeight != nil {
		cfg.ImageWeight = *f.Scoring.ImageWeight
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
