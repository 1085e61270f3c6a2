package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/accessibleworks/scopescan/internal/pricing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg != pricing.DefaultConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestParsePartialOverride(t *testing.T) {
	cfg, err := Parse([]byte(`
pricing:
  tier3_rate: 40.00
  minimum_charge: 30.00
scoring:
  density_threshold_bytes: 12000
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Tier3Rate != 40.00 {
		t.Errorf("tier3 rate = %v, want 40.00", cfg.Tier3Rate)
	}
	if cfg.MinimumCharge != 30.00 {
		t.Errorf("minimum charge = %v, want 30.00", cfg.MinimumCharge)
	}
	if cfg.DensityThresholdBytes != 12000 {
		t.Errorf("density threshold = %v, want 12000", cfg.DensityThresholdBytes)
	}

	// Untouched fields keep their defaults.
	def := pricing.DefaultConfig()
	if cfg.Tier1Rate != def.Tier1Rate || cfg.RushMultiplier != def.RushMultiplier {
		t.Errorf("unset fields changed: %+v", cfg)
	}
}

func TestParseExplicitZeroWeight(t *testing.T) {
	cfg, err := Parse([]byte("scoring:\n  image_weight: 0\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.ImageWeight != 0 {
		t.Errorf("image weight = %v, want explicit 0", cfg.ImageWeight)
	}
}

func TestParseRejectsInvalidConfig(t *testing.T) {
	if _, err := Parse([]byte("pricing:\n  rush_multiplier: 0.5\n")); err == nil {
		t.Error("expected validation error for rush multiplier below 1")
	}
	if _, err := Parse([]byte("pricing: [not a map]\n")); err == nil {
		t.Error("expected parse error for malformed YAML")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	if err := os.WriteFile(path, []byte("pricing:\n  tier1_rate: 8.00\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Tier1Rate != 8.00 {
		t.Errorf("tier1 rate = %v, want 8.00", cfg.Tier1Rate)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
