package tools

import (
	"context"
	"errors"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/accessibleworks/scopescan/internal/llm"
	"github.com/accessibleworks/scopescan/internal/logger"
	"github.com/accessibleworks/scopescan/internal/pricing"
	"github.com/accessibleworks/scopescan/internal/storage"
)

type QuoteProposalQuery struct {
	QuoteID string `json:"quote_id"`
	// Polish rewrites the summary as a proposal letter via the LLM.
	// Requires OPENAI_API_KEY; the figures themselves never change.
	Polish bool `json:"polish,omitempty"`
}

type QuoteProposalResponse struct {
	QuoteID  string `json:"quote_id"`
	Filename string `json:"filename,omitempty"`
	Proposal string `json:"proposal"`
}

func QuoteProposalTool() *mcp.Tool {
	inputschema, err := jsonschema.For[QuoteProposalQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "scopescan.quote-proposal",
		Description: "Render a client-facing proposal for a stored quote",
		InputSchema: inputschema,
	}
}

func QuoteProposalToolHandler(ctx context.Context, req *mcp.CallToolRequest, query QuoteProposalQuery, store storage.Store, cfg pricing.Config, log logger.Logger) (*mcp.CallToolResult, *QuoteProposalResponse, error) {
	if query.QuoteID == "" {
		return nil, nil, errors.New("no quote_id provided")
	}

	report, err := store.GetReport(ctx, query.QuoteID)
	if err != nil {
		return nil, nil, err
	}

	proposal := pricing.ProposalSummary(report)

	if query.Polish {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, nil, errors.New("OPENAI_API_KEY environment variable not set")
		}
		proposal, err = llm.DraftProposal(ctx, apiKey, report, log)
		if err != nil {
			return nil, nil, err
		}
	}

	responseData := &QuoteProposalResponse{
		QuoteID:  query.QuoteID,
		Filename: report.Filename,
		Proposal: proposal,
	}

	return nil, responseData, nil
}
