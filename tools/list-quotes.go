package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/accessibleworks/scopescan/internal/logger"
	"github.com/accessibleworks/scopescan/internal/storage"
	"github.com/accessibleworks/scopescan/models"
)

type ListQuotesQuery struct{}

type ListQuotesResponse struct {
	Quotes []models.QuoteInfo `json:"quotes"`
}

func ListQuotesTool() *mcp.Tool {
	inputschema, err := jsonschema.For[ListQuotesQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "scopescan.list-quotes",
		Description: "List all stored quotes, newest first",
		InputSchema: inputschema,
	}
}

func ListQuotesToolHandler(ctx context.Context, req *mcp.CallToolRequest, query ListQuotesQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *ListQuotesResponse, error) {
	quotes, err := store.ListQuotes(ctx)
	if err != nil {
		return nil, nil, err
	}

	return nil, &ListQuotesResponse{Quotes: quotes}, nil
}
