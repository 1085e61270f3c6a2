package models

import "fmt"

// Tier is the remediation complexity bucket assigned to a single page.
type Tier int

const (
	Tier1 Tier = iota + 1 // simple text
	Tier2                 // layouts, simple tables
	Tier3                 // complex or technical content
)

// String returns the display form of the tier ("Tier 1" etc).
func (t Tier) String() string {
	switch t {
	case Tier1:
		return "Tier 1"
	case Tier2:
		return "Tier 2"
	case Tier3:
		return "Tier 3"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// MarshalText makes tiers render as their display form in JSON,
// including when used as map keys.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses the display form produced by MarshalText.
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTier converts a tier label back into a Tier value.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "Tier 1":
		return Tier1, nil
	case "Tier 2":
		return Tier2, nil
	case "Tier 3":
		return Tier3, nil
	}
	return 0, fmt.Errorf("unknown tier: %q", s)
}

// Tiers lists all tiers in ascending complexity order.
func Tiers() []Tier {
	return []Tier{Tier1, Tier2, Tier3}
}

// PageSignal holds the structural measurements extracted from one page.
// A document produces exactly one signal per page, ordered by PageNumber.
// Signals are immutable once the inspector returns them.
type PageSignal struct {
	PageNumber        int `json:"page_number"`
	FormFieldCount    int `json:"form_field_count"`
	ContentByteLength int `json:"content_byte_length"`
	ImageCount        int `json:"image_count"`
}

// PageAssessment is one row of the per-page complexity breakdown.
type PageAssessment struct {
	PageNumber     int  `json:"page_number"`
	Tier           Tier `json:"tier"`
	FormFieldCount int  `json:"form_field_count"`
	Score          int  `json:"score"`
}

// ElementTotals aggregates detected elements over a whole document.
// DensePages counts pages whose content stream exceeded the density
// threshold, the heuristic stand-in for tables and heavy vector art.
type ElementTotals struct {
	FormFields int `json:"form_fields"`
	Images     int `json:"images"`
	DensePages int `json:"dense_pages"`
}

// TierSubtotal is the billable line for one tier.
type TierSubtotal struct {
	Tier     Tier    `json:"tier"`
	Pages    int     `json:"pages"`
	Rate     float64 `json:"rate"`
	Subtotal float64 `json:"subtotal"`
}

// PricingBreakdown captures how a document's estimate was assembled.
// It is owned by the DocumentReport that produced it.
type PricingBreakdown struct {
	TierSubtotals  []TierSubtotal `json:"tier_subtotals"`
	RushApplied    bool           `json:"rush_applied"`
	MinimumApplied bool           `json:"minimum_applied"`
	RawTotal       float64        `json:"raw_total"`
	Total          float64        `json:"total"`
}

// DocumentReport is the sealed result of inspecting and pricing one
// document. It is constructed in a single pass and must not be mutated
// by consumers once pricing has been computed.
type DocumentReport struct {
	Filename      string           `json:"filename,omitempty"`
	TotalPages    int              `json:"total_pages"`
	IsTagged      bool             `json:"is_tagged"`
	TierCounts    map[Tier]int     `json:"tier_counts"`
	ElementTotals ElementTotals    `json:"element_totals"`
	PerPage       []PageAssessment `json:"per_page_breakdown"`
	Pricing       PricingBreakdown `json:"pricing"`
	EstimatedCost float64          `json:"estimated_cost"`
}

// DocumentFailure records a document that could not be inspected.
// Failures ride the project aggregate so a skipped file is always
// visible, never silently absent.
type DocumentFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// ProjectAggregate folds a batch of document reports into project
// totals. It carries no state of its own: every derived field is a
// pure function of the reports and failures.
type ProjectAggregate struct {
	Reports    []DocumentReport  `json:"reports"`
	Failures   []DocumentFailure `json:"failures,omitempty"`
	FileCount  int               `json:"file_count"`
	TotalPages int               `json:"total_pages"`
	TotalCost  float64           `json:"total_cost"`
}

// SourceInfo says where a document's bytes came from.
type SourceInfo struct {
	Path string `json:"path,omitempty"`
	URL  string `json:"url,omitempty"`
}

// QuoteInfo is the listing row for a stored quote.
type QuoteInfo struct {
	QuoteID       string  `json:"quote_id"`
	Filename      string  `json:"filename"`
	TotalPages    int     `json:"total_pages"`
	EstimatedCost float64 `json:"estimated_cost"`
	RushApplied   bool    `json:"rush_applied"`
	CreatedAt     string  `json:"created_at,omitempty"`
}
