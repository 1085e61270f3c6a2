// Package operations holds the shared quoting flow used by both the
// CLI and the MCP tools.
package operations

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/accessibleworks/scopescan/internal/batch"
	"github.com/accessibleworks/scopescan/internal/documents"
	"github.com/accessibleworks/scopescan/internal/inspect"
	"github.com/accessibleworks/scopescan/internal/logger"
	"github.com/accessibleworks/scopescan/internal/pricing"
	"github.com/accessibleworks/scopescan/internal/storage"
	"github.com/accessibleworks/scopescan/models"
)

// GetOrQuote retrieves a stored quote for a document if one exists
// under the current pricing terms, or inspects and prices the document
// if it doesn't. This encapsulates the common logic shared by the CLI
// and the MCP tools.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - sourceInfo: Disk path or URL of the document (ignored if rawData is set)
//   - rawData: Optional raw PDF bytes (takes precedence over sourceInfo)
//   - rush: Whether rush pricing applies
//   - cfg: The rate card to price under
//   - store: Storage backend for checking existence and retrieving/storing quotes
//
// Returns the quote ID, the document report, and any error. Quote IDs
// are derived from the document bytes and pricing terms, so repeating a
// request serves the stored quote instead of re-inspecting.
func GetOrQuote(ctx context.Context, sourceInfo models.SourceInfo, rawData []byte, rush bool, cfg pricing.Config, store storage.Store, log logger.Logger) (string, *models.DocumentReport, error) {
	var data []byte
	var err error
	if rawData != nil {
		if !documents.IsPDF(rawData) {
			return "", nil, documents.ErrNotPDF
		}
		data = rawData
	} else {
		data, err = documents.GetData(ctx, sourceInfo)
		if err != nil {
			return "", nil, fmt.Errorf("failed to fetch document: %w", err)
		}
	}

	quoteID := storage.GenerateQuoteID(data, rush, cfg)

	exists, err := store.ReportExists(ctx, quoteID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to check quote existence: %w", err)
	}

	if exists {
		log.Debug("Serving stored quote %s", quoteID)
		report, err := store.GetReport(ctx, quoteID)
		if err != nil {
			return "", nil, fmt.Errorf("failed to retrieve existing quote: %w", err)
		}
		return quoteID, report, nil
	}

	isTagged, signals, err := inspect.Inspect(data)
	if err != nil {
		return "", nil, err
	}

	report := pricing.BuildReport(displayName(sourceInfo), isTagged, signals, cfg, rush)

	if err := store.StoreReport(ctx, quoteID, report, &sourceInfo); err != nil {
		return "", nil, fmt.Errorf("failed to store quote: %w", err)
	}
	log.Info("Stored quote %s for %s (%d pages, $%.2f)", quoteID, report.Filename, report.TotalPages, report.EstimatedCost)

	return quoteID, report, nil
}

// QuoteBatch quotes every path in parallel and folds the outcomes into
// a project aggregate. A document that cannot be read becomes a
// failure entry; it never aborts the batch. Report order follows input
// order, with failed slots moved to the failure list.
func QuoteBatch(ctx context.Context, paths []string, rush bool, cfg pricing.Config, store storage.Store, maxWorkers int, onProgress func(done, total int), log logger.Logger) models.ProjectAggregate {
	results := batch.ParallelProcess(ctx, paths, maxWorkers, onProgress, func(ctx context.Context, idx int, path string) (*models.DocumentReport, error) {
		_, report, err := GetOrQuote(ctx, models.SourceInfo{Path: path}, nil, rush, cfg, store, log)
		return report, err
	})

	var reports []models.DocumentReport
	var failures []models.DocumentFailure
	for i, res := range results {
		if res.Err != nil {
			log.Warn("Skipping %s: %v", paths[i], res.Err)
			failures = append(failures, models.DocumentFailure{
				Filename: filepath.Base(paths[i]),
				Reason:   res.Err.Error(),
			})
			continue
		}
		reports = append(reports, *res.Value)
	}

	return pricing.AggregateProject(reports, failures)
}

// displayName picks the human-facing filename for a report.
func displayName(sourceInfo models.SourceInfo) string {
	switch {
	case sourceInfo.Path != "":
		return filepath.Base(sourceInfo.Path)
	case sourceInfo.URL != "":
		return sourceInfo.URL
	}
	return "document.pdf"
}
