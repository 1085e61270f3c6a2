// Package tools exposes the quoting operations as MCP tools. Each tool
// is a thin adapter: query decoding and response shaping live here, the
// actual work happens in internal/operations.
package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/accessibleworks/scopescan/internal/logger"
	"github.com/accessibleworks/scopescan/internal/operations"
	"github.com/accessibleworks/scopescan/internal/pricing"
	"github.com/accessibleworks/scopescan/internal/storage"
	"github.com/accessibleworks/scopescan/models"
)

type DocumentQuoteQuery struct {
	Path    string `json:"path,omitempty"`
	URL     string `json:"url,omitempty"`
	RawData []byte `json:"raw_data,omitempty"`
	Rush    bool   `json:"rush,omitempty"`
}

type DocumentQuoteResponse struct {
	QuoteID       string                 `json:"quote_id"`
	ResourcePaths []string               `json:"resource_paths,omitempty"`
	Report        *models.DocumentReport `json:"report"`
}

func DocumentQuoteTool() *mcp.Tool {
	inputschema, err := jsonschema.For[DocumentQuoteQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "scopescan.document-quote",
		Description: "Inspect a PDF and produce an accessibility remediation cost estimate",
		InputSchema: inputschema,
	}
}

func DocumentQuoteToolHandler(ctx context.Context, req *mcp.CallToolRequest, query DocumentQuoteQuery, store storage.Store, cfg pricing.Config, log logger.Logger) (*mcp.CallToolResult, *DocumentQuoteResponse, error) {
	sourceInfo := models.SourceInfo{
		Path: query.Path,
		URL:  query.URL,
	}

	quoteID, report, err := operations.GetOrQuote(ctx, sourceInfo, query.RawData, query.Rush, cfg, store, log)
	if err != nil {
		return nil, nil, err
	}

	responseData := &DocumentQuoteResponse{
		QuoteID:       quoteID,
		ResourcePaths: storage.CalculateResourcePaths(quoteID, report),
		Report:        report,
	}

	return nil, responseData, nil
}
