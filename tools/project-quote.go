package tools

import (
	"context"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/accessibleworks/scopescan/internal/logger"
	"github.com/accessibleworks/scopescan/internal/operations"
	"github.com/accessibleworks/scopescan/internal/pricing"
	"github.com/accessibleworks/scopescan/internal/storage"
	"github.com/accessibleworks/scopescan/models"
)

type ProjectQuoteQuery struct {
	Paths      []string `json:"paths"`
	Rush       bool     `json:"rush,omitempty"`
	MaxWorkers int      `json:"max_workers,omitempty"`
}

type ProjectQuoteResponse struct {
	FileCount  int                      `json:"file_count"`
	TotalPages int                      `json:"total_pages"`
	TotalCost  float64                  `json:"total_cost"`
	Reports    []models.DocumentReport  `json:"reports"`
	Failures   []models.DocumentFailure `json:"failures,omitempty"`
}

func ProjectQuoteTool() *mcp.Tool {
	inputschema, err := jsonschema.For[ProjectQuoteQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "scopescan.project-quote",
		Description: "Quote a batch of PDF files and return per-document estimates plus project totals. Unreadable files are reported, not fatal.",
		InputSchema: inputschema,
	}
}

func ProjectQuoteToolHandler(ctx context.Context, req *mcp.CallToolRequest, query ProjectQuoteQuery, store storage.Store, cfg pricing.Config, log logger.Logger) (*mcp.CallToolResult, *ProjectQuoteResponse, error) {
	if len(query.Paths) == 0 {
		return nil, nil, errors.New("no paths provided")
	}

	agg := operations.QuoteBatch(ctx, query.Paths, query.Rush, cfg, store, query.MaxWorkers, nil, log)

	responseData := &ProjectQuoteResponse{
		FileCount:  agg.FileCount,
		TotalPages: agg.TotalPages,
		TotalCost:  agg.TotalCost,
		Reports:    agg.Reports,
		Failures:   agg.Failures,
	}

	return nil, responseData, nil
}
