// Package pricing implements the complexity scoring and cost model for
// accessibility remediation quotes. All functions are pure: rates,
// thresholds, and weights arrive through a Config value and nothing is
// read from the environment.
package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/accessibleworks/scopescan/models"
)

// Tier boundaries. Classification is a total function over scores:
// every non-negative score lands in exactly one tier.
const (
	tier2MinScore = 5
	tier3MinScore = 15
)

// Config carries the pricing and scoring knobs. The scoring thresholds
// are heuristic constants inherited from earlier revisions of the cost
// model; they are configurable but their defaults are deliberate.
type Config struct {
	Tier1Rate      float64 `yaml:"tier1_rate"`
	Tier2Rate      float64 `yaml:"tier2_rate"`
	Tier3Rate      float64 `yaml:"tier3_rate"`
	RushMultiplier float64 `yaml:"rush_multiplier"`
	MinimumCharge  float64 `yaml:"minimum_charge"`

	FormFieldWeight       int `yaml:"form_field_weight"`
	DensityThresholdBytes int `yaml:"density_threshold_bytes"`
	DensityWeight         int `yaml:"density_weight"`
	ImageThreshold        int `yaml:"image_threshold"`
	ImageWeight           int `yaml:"image_weight"`
}

// DefaultConfig returns the standard rate card.
func DefaultConfig() Config {
	return Config{
		Tier1Rate:             10.00,
		Tier2Rate:             17.50,
		Tier3Rate:             35.00,
		RushMultiplier:        2.0,
		MinimumCharge:         25.00,
		FormFieldWeight:       5,
		DensityThresholdBytes: 15000,
		DensityWeight:         10,
		ImageThreshold:        2,
		ImageWeight:           2,
	}
}

// Validate rejects configurations that would produce nonsense quotes.
func (c Config) Validate() error {
	if c.Tier1Rate < 0 || c.Tier2Rate < 0 || c.Tier3Rate < 0 {
		return fmt.Errorf("tier rates must be non-negative")
	}
	if c.RushMultiplier < 1 {
		return fmt.Errorf("rush multiplier must be at least 1, got %v", c.RushMultiplier)
	}
	if c.MinimumCharge < 0 {
		return fmt.Errorf("minimum charge must be non-negative, got %v", c.MinimumCharge)
	}
	if c.FormFieldWeight < 0 || c.DensityWeight < 0 || c.ImageWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if c.DensityThresholdBytes < 0 || c.ImageThreshold < 0 {
		return fmt.Errorf("scoring thresholds must be non-negative")
	}
	return nil
}

// Rate returns the per-page rate for a tier.
func (c Config) Rate(t models.Tier) float64 {
	switch t {
	case models.Tier1:
		return c.Tier1Rate
	case models.Tier2:
		return c.Tier2Rate
	case models.Tier3:
		return c.Tier3Rate
	}
	return 0
}

// Score computes the complexity score for one page. Each form field
// contributes FormFieldWeight; crossing the density and image
// thresholds contributes a flat bonus each, regardless of how far the
// threshold is exceeded.
func Score(sig models.PageSignal, cfg Config) int {
	score := sig.FormFieldCount * cfg.FormFieldWeight
	if sig.ContentByteLength > cfg.DensityThresholdBytes {
		score += cfg.DensityWeight
	}
	if sig.ImageCount > cfg.ImageThreshold {
		score += cfg.ImageWeight
	}
	return score
}

// Classify maps a score to its tier. Boundaries are inclusive on the
// upper tier: 5 is Tier 2, 15 is Tier 3.
func Classify(score int) models.Tier {
	switch {
	case score < tier2MinScore:
		return models.Tier1
	case score < tier3MinScore:
		return models.Tier2
	default:
		return models.Tier3
	}
}

// Assess scores and classifies every page, returning the ordered
// per-page breakdown, the tier histogram, and the element totals.
func Assess(signals []models.PageSignal, cfg Config) ([]models.PageAssessment, map[models.Tier]int, models.ElementTotals) {
	perPage := make([]models.PageAssessment, 0, len(signals))
	counts := map[models.Tier]int{models.Tier1: 0, models.Tier2: 0, models.Tier3: 0}
	var totals models.ElementTotals

	for _, sig := range signals {
		score := Score(sig, cfg)
		tier := Classify(score)
		counts[tier]++
		totals.FormFields += sig.FormFieldCount
		totals.Images += sig.ImageCount
		if sig.ContentByteLength > cfg.DensityThresholdBytes {
			totals.DensePages++
		}
		perPage = append(perPage, models.PageAssessment{
			PageNumber:     sig.PageNumber,
			Tier:           tier,
			FormFieldCount: sig.FormFieldCount,
			Score:          score,
		})
	}
	return perPage, counts, totals
}

// Price applies the rate card to a tier histogram. The rush multiplier
// scales every tier rate; the minimum charge floors the post-multiplier
// total and is applied per document, never across a project.
func Price(tierCounts map[models.Tier]int, cfg Config, rush bool) models.PricingBreakdown {
	multiplier := 1.0
	if rush {
		multiplier = cfg.RushMultiplier
	}

	var subtotals []models.TierSubtotal
	var rawTotal float64
	for _, tier := range models.Tiers() {
		rate := cfg.Rate(tier) * multiplier
		pages := tierCounts[tier]
		subtotal := float64(pages) * rate
		rawTotal += subtotal
		subtotals = append(subtotals, models.TierSubtotal{
			Tier:     tier,
			Pages:    pages,
			Rate:     rate,
			Subtotal: RoundCents(subtotal),
		})
	}

	minimumApplied := rawTotal < cfg.MinimumCharge
	total := rawTotal
	if minimumApplied {
		total = cfg.MinimumCharge
	}

	return models.PricingBreakdown{
		TierSubtotals:  subtotals,
		RushApplied:    rush,
		MinimumApplied: minimumApplied,
		RawTotal:       RoundCents(rawTotal),
		Total:          RoundCents(total),
	}
}

// BuildReport runs the full engine over one document's signals and
// seals the result. Callers must treat the returned report as
// read-only.
func BuildReport(filename string, isTagged bool, signals []models.PageSignal, cfg Config, rush bool) *models.DocumentReport {
	perPage, counts, totals := Assess(signals, cfg)
	breakdown := Price(counts, cfg, rush)
	return &models.DocumentReport{
		Filename:      filename,
		TotalPages:    len(signals),
		IsTagged:      isTagged,
		TierCounts:    counts,
		ElementTotals: totals,
		PerPage:       perPage,
		Pricing:       breakdown,
		EstimatedCost: breakdown.Total,
	}
}

// AggregateProject folds already-priced reports into project totals.
// Each report's EstimatedCost has the minimum floor baked in, so the
// project total is a plain sum: a batch of cheap documents bills as
// many independent minimums.
func AggregateProject(reports []models.DocumentReport, failures []models.DocumentFailure) models.ProjectAggregate {
	agg := models.ProjectAggregate{
		Reports:   reports,
		Failures:  failures,
		FileCount: len(reports),
	}
	var total float64
	for _, r := range reports {
		agg.TotalPages += r.TotalPages
		total += r.EstimatedCost
	}
	agg.TotalCost = RoundCents(total)
	return agg
}

// RoundCents rounds to two decimal places, half away from zero.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ProposalSummary renders the deterministic proposal text for a sealed
// report: the client-facing paragraph quoted in outgoing estimates. It
// never recomputes pricing.
func ProposalSummary(r *models.DocumentReport) string {
	tagStatus := "is untagged and will require full structural markup"
	if r.IsTagged {
		tagStatus = "declares structural tagging"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Based on our structural audit of %s:\n\n", r.Filename)
	fmt.Fprintf(&b, "- The document contains %d pages and %s.\n", r.TotalPages, tagStatus)
	fmt.Fprintf(&b, "- Complexity analysis: %d pages identified as high-complexity (technical/tables).\n", r.TierCounts[models.Tier3])
	fmt.Fprintf(&b, "- Interactive elements: %d form fields detected.\n", r.ElementTotals.FormFields)
	fmt.Fprintf(&b, "- Compliance target: WCAG 2.1 AA.\n\n")
	fmt.Fprintf(&b, "Estimated project cost: $%.2f\n", r.EstimatedCost)
	fmt.Fprintf(&b, "Timeline estimate: %d business days.\n", TimelineDays(r.TotalPages))
	return b.String()
}

// TimelineDays estimates turnaround in business days: roughly ten
// pages per day with a two-day minimum.
func TimelineDays(pages int) int {
	days := pages / 10
	if days < 2 {
		days = 2
	}
	return days
}
