// Package llm drafts client-facing proposal letters from remediation
// quotes. The deterministic quote math never depends on this package;
// the model only rewrites an already-computed summary into prose.
package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	"github.com/accessibleworks/scopescan/internal/logger"
	"github.com/accessibleworks/scopescan/internal/pricing"
	"github.com/accessibleworks/scopescan/models"
)

// DraftProposal asks the model to turn a quote summary into a polished
// proposal letter. The figures in the summary are authoritative: the
// prompt forbids changing any number, and the caller should fall back
// to the plain summary if the call fails.
func DraftProposal(ctx context.Context, apiKey string, report *models.DocumentReport, log logger.Logger) (string, error) {
	if apiKey == "" {
		return "", errors.New("no API key provided")
	}
	if report == nil {
		return "", errors.New("no report provided")
	}

	summary := pricing.ProposalSummary(report)
	log.Info("Drafting proposal letter for document: %s", report.Filename)

	return RateLimitedCall(ctx, estimatedTokensPerProposal, log, func(ctx context.Context) (string, error) {
		client := openai.NewClient(option.WithAPIKey(apiKey))
		response, err := client.Responses.New(ctx, responses.ResponseNewParams{
			Model: shared.ChatModelGPT5Mini,
			Input: responses.ResponseNewParamsInputUnion{
				OfInputItemList: responses.ResponseInputParam{
					responses.ResponseInputItemParamOfMessage(
						responses.ResponseInputMessageContentListParam{
							responses.ResponseInputContentParamOfInputText(`Rewrite this PDF accessibility remediation quote as a short, professional proposal letter addressed to the client.

- Keep every number, dollar amount, page count, and timeline exactly as given. Do not invent, round, or recalculate any figure.
- Keep the reference to WCAG 2.1 AA conformance.
- Use a warm but businesslike tone, 2-4 paragraphs, no bullet lists.
- Do not add terms, discounts, or commitments that are not in the quote.

Quote:
` + summary),
						},
						"user",
					),
				},
			},
		})
		if err != nil {
			log.Error("Failed to draft proposal: %v", err)
			return "", err
		}
		log.Info("Successfully drafted proposal letter")
		return response.OutputText(), nil
	})
}
