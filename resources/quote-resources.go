// Package resources serves stored quotes over MCP resource URIs.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/accessibleworks/scopescan/internal/storage"
	"github.com/accessibleworks/scopescan/models"
)

// QuoteResourceHandler handles resource requests for stored quotes
type QuoteResourceHandler struct {
	store storage.Store
}

// NewQuoteResourceHandler creates a new quote resource handler
func NewQuoteResourceHandler(store storage.Store) *QuoteResourceHandler {
	return &QuoteResourceHandler{store: store}
}

// ListResources returns a list of available resources
func (h *QuoteResourceHandler) ListResources(ctx context.Context) ([]mcp.Resource, error) {
	quotes, err := h.store.ListQuotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	var resources []mcp.Resource
	for _, quote := range quotes {
		resources = append(resources, mcp.Resource{
			URI:         fmt.Sprintf("quote://%s", quote.QuoteID),
			Name:        fmt.Sprintf("%s (Quote)", quote.Filename),
			Description: fmt.Sprintf("Remediation quote for %s: %d pages, $%.2f", quote.Filename, quote.TotalPages, quote.EstimatedCost),
			MIMEType:    "application/json",
		})

		resources = append(resources, mcp.Resource{
			URI:         fmt.Sprintf("quote://%s/pricing", quote.QuoteID),
			Name:        fmt.Sprintf("%s (Pricing)", quote.Filename),
			Description: "Pricing breakdown with per-tier subtotals",
			MIMEType:    "application/json",
		})

		resources = append(resources, mcp.Resource{
			URI:         fmt.Sprintf("quote://%s/pages", quote.QuoteID),
			Name:        fmt.Sprintf("%s (Pages)", quote.Filename),
			Description: "Per-page complexity breakdown",
			MIMEType:    "application/json",
		})
	}

	return resources, nil
}

// ReadResource reads a specific resource by URI
func (h *QuoteResourceHandler) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	// Parse URI: quote://quote_id/resource_type
	if !strings.HasPrefix(uri, "quote://") {
		return nil, fmt.Errorf("invalid URI scheme, expected quote://")
	}

	path := strings.TrimPrefix(uri, "quote://")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("invalid URI, missing quote ID")
	}

	quoteID := parts[0]
	resourceType := ""
	if len(parts) > 1 {
		resourceType = parts[1]
	}

	var content string
	var err error

	switch resourceType {
	case "":
		content, err = h.getQuoteSummary(ctx, quoteID)
	case "pricing":
		content, err = h.getPricing(ctx, quoteID)
	case "pages":
		content, err = h.getPages(ctx, quoteID)
	default:
		return nil, fmt.Errorf("unknown resource type: %s", resourceType)
	}

	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     content,
			},
		},
	}, nil
}

func (h *QuoteResourceHandler) getQuoteSummary(ctx context.Context, quoteID string) (string, error) {
	report, err := h.store.GetReport(ctx, quoteID)
	if err != nil {
		return "", err
	}

	summary := map[string]interface{}{
		"quote_id":            quoteID,
		"filename":            report.Filename,
		"total_pages":         report.TotalPages,
		"is_tagged":           report.IsTagged,
		"tier_counts":         report.TierCounts,
		"element_totals":      report.ElementTotals,
		"estimated_cost":      report.EstimatedCost,
		"available_resources": storage.CalculateResourcePaths(quoteID, report),
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}

	return string(data), nil
}

func (h *QuoteResourceHandler) getPricing(ctx context.Context, quoteID string) (string, error) {
	report, err := h.store.GetReport(ctx, quoteID)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(report.Pricing, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal pricing: %w", err)
	}

	return string(data), nil
}

func (h *QuoteResourceHandler) getPages(ctx context.Context, quoteID string) (string, error) {
	report, err := h.store.GetReport(ctx, quoteID)
	if err != nil {
		return "", err
	}

	pages := report.PerPage
	if pages == nil {
		pages = []models.PageAssessment{}
	}

	result := map[string]interface{}{
		"page_count": len(pages),
		"pages":      pages,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal pages: %w", err)
	}

	return string(data), nil
}
