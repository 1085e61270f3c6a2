package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/accessibleworks/scopescan/internal/config"
	"github.com/accessibleworks/scopescan/internal/logger"
	"github.com/accessibleworks/scopescan/internal/storage"
	"github.com/accessibleworks/scopescan/resources"
	"github.com/accessibleworks/scopescan/tools"
)

func CreateServer(log logger.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "scopescan", Version: "v0.0.1"}, nil)

	cfg, err := config.Load(os.Getenv("SCOPESCAN_CONFIG"))
	if err != nil {
		log.Fatal("Failed to load pricing config: %v", err)
	}

	store, err := initializeStorage(log)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}

	quoteResourceHandler := resources.NewQuoteResourceHandler(store)

	// Register tools with storage, config, and logger dependencies
	mcp.AddTool(server, tools.DocumentQuoteTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.DocumentQuoteQuery) (*mcp.CallToolResult, *tools.DocumentQuoteResponse, error) {
		return tools.DocumentQuoteToolHandler(ctx, req, query, store, cfg, log)
	})

	mcp.AddTool(server, tools.ProjectQuoteTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.ProjectQuoteQuery) (*mcp.CallToolResult, *tools.ProjectQuoteResponse, error) {
		return tools.ProjectQuoteToolHandler(ctx, req, query, store, cfg, log)
	})

	mcp.AddTool(server, tools.QuoteProposalTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.QuoteProposalQuery) (*mcp.CallToolResult, *tools.QuoteProposalResponse, error) {
		return tools.QuoteProposalToolHandler(ctx, req, query, store, cfg, log)
	})

	mcp.AddTool(server, tools.ListQuotesTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.ListQuotesQuery) (*mcp.CallToolResult, *tools.ListQuotesResponse, error) {
		return tools.ListQuotesToolHandler(ctx, req, query, store, log)
	})

	// Template for quote summary
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "quote://{quoteId}",
		Name:        "quote",
		Description: "Stored remediation quote with tier counts and estimated cost",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return quoteResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for pricing breakdown
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "quote://{quoteId}/pricing",
		Name:        "quote-pricing",
		Description: "Pricing breakdown with per-tier subtotals, rush, and minimum flags",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return quoteResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for per-page breakdown
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "quote://{quoteId}/pages",
		Name:        "quote-pages",
		Description: "Per-page complexity tiers and scores",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return quoteResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	return server
}

// initializeStorage creates and initializes the storage backend
func initializeStorage(log logger.Logger) (storage.Store, error) {
	dbPath := os.Getenv("SCOPESCAN_DB_PATH")
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		dbDir := filepath.Join(homeDir, ".scopescan")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dbPath = filepath.Join(dbDir, "scopescan.db")
	}

	log.Info("Initializing SQLite database at: %s", dbPath)

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite store: %w", err)
	}

	return store, nil
}
