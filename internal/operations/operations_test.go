package operations

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/accessibleworks/scopescan/internal/documents"
	"github.com/accessibleworks/scopescan/internal/inspect"
	"github.com/accessibleworks/scopescan/internal/logger"
	"github.com/accessibleworks/scopescan/internal/pricing"
	"github.com/accessibleworks/scopescan/internal/storage"
	"github.com/accessibleworks/scopescan/internal/testpdf"
	"github.com/accessibleworks/scopescan/models"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "quotes.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetOrQuoteFromFile(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	log := logger.NewNoOpLogger()
	cfg := pricing.DefaultConfig()

	data := testpdf.Build(testpdf.Doc{
		Marked: testpdf.Bool(true),
		Pages: []testpdf.Page{
			{},                              // Tier 1
			{Widgets: 1, ContentSize: 500},  // Tier 2: score 5
			{Widgets: 3, ContentSize: 20000, Images: 3}, // Tier 3: score 27
		},
	})
	path := filepath.Join(t.TempDir(), "intake.pdf")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	quoteID, report, err := GetOrQuote(ctx, models.SourceInfo{Path: path}, nil, false, cfg, store, log)
	if err != nil {
		t.Fatalf("GetOrQuote failed: %v", err)
	}

	if report.Filename != "intake.pdf" {
		t.Errorf("filename = %q, want intake.pdf", report.Filename)
	}
	if report.TotalPages != 3 {
		t.Errorf("total pages = %d, want 3", report.TotalPages)
	}
	if !report.IsTagged {
		t.Error("expected tagged document")
	}
	// 10.00 + 17.50 + 35.00
	if report.EstimatedCost != 62.50 {
		t.Errorf("estimated cost = %v, want 62.50", report.EstimatedCost)
	}

	exists, err := store.ReportExists(ctx, quoteID)
	if err != nil {
		t.Fatalf("ReportExists failed: %v", err)
	}
	if !exists {
		t.Error("expected quote to be stored after first call")
	}
}

func TestGetOrQuoteServesStoredQuote(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	log := logger.NewNoOpLogger()
	cfg := pricing.DefaultConfig()

	data := testpdf.Build(testpdf.Doc{Pages: []testpdf.Page{{Widgets: 2}}})

	firstID, first, err := GetOrQuote(ctx, models.SourceInfo{}, data, false, cfg, store, log)
	if err != nil {
		t.Fatalf("first GetOrQuote failed: %v", err)
	}
	secondID, second, err := GetOrQuote(ctx, models.SourceInfo{}, data, false, cfg, store, log)
	if err != nil {
		t.Fatalf("second GetOrQuote failed: %v", err)
	}

	if firstID != secondID {
		t.Errorf("quote IDs differ for identical requests: %s vs %s", firstID, secondID)
	}
	if first.EstimatedCost != second.EstimatedCost {
		t.Errorf("costs differ: %v vs %v", first.EstimatedCost, second.EstimatedCost)
	}

	// Rush pricing is a different quote, not a cache hit.
	rushID, rushed, err := GetOrQuote(ctx, models.SourceInfo{}, data, true, cfg, store, log)
	if err != nil {
		t.Fatalf("rush GetOrQuote failed: %v", err)
	}
	if rushID == firstID {
		t.Error("rush quote reused the standard quote ID")
	}
	if !rushed.Pricing.RushApplied {
		t.Error("expected rush pricing on the rush quote")
	}
}

func TestGetOrQuoteRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	log := logger.NewNoOpLogger()
	cfg := pricing.DefaultConfig()

	if _, _, err := GetOrQuote(ctx, models.SourceInfo{}, []byte("plain text"), false, cfg, store, log); !errors.Is(err, documents.ErrNotPDF) {
		t.Errorf("expected ErrNotPDF for non-PDF bytes, got: %v", err)
	}

	if _, _, err := GetOrQuote(ctx, models.SourceInfo{}, []byte("%PDF-1.7 truncated"), false, cfg, store, log); !errors.Is(err, inspect.ErrDocumentUnreadable) {
		t.Errorf("expected ErrDocumentUnreadable for corrupt PDF, got: %v", err)
	}
}

func TestQuoteBatch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	log := logger.NewNoOpLogger()
	cfg := pricing.DefaultConfig()
	dir := t.TempDir()

	// Two valid documents that each floor at the minimum charge, plus
	// one corrupt file.
	cheap := testpdf.Build(testpdf.Doc{Pages: []testpdf.Page{{}}})
	paths := []string{
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "broken.pdf"),
	}
	if err := os.WriteFile(paths[0], cheap, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(paths[1], cheap, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(paths[2], []byte("%PDF-1.7 not really"), 0644); err != nil {
		t.Fatal(err)
	}

	var progress int
	agg := QuoteBatch(ctx, paths, false, cfg, store, 2, func(done, total int) {
		progress = done
		if total != 3 {
			t.Errorf("progress total = %d, want 3", total)
		}
	}, log)

	if agg.FileCount != 2 {
		t.Errorf("file count = %d, want 2", agg.FileCount)
	}
	if len(agg.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(agg.Failures))
	}
	if agg.Failures[0].Filename != "broken.pdf" {
		t.Errorf("failure filename = %q, want broken.pdf", agg.Failures[0].Filename)
	}
	if agg.Failures[0].Reason == "" {
		t.Error("failure reason should not be empty")
	}
	// Each document floors independently at 25.00; the project total is
	// a plain sum.
	if agg.TotalCost != 50.00 {
		t.Errorf("total cost = %v, want 50.00", agg.TotalCost)
	}
	if agg.TotalPages != 2 {
		t.Errorf("total pages = %d, want 2", agg.TotalPages)
	}
	if progress != 3 {
		t.Errorf("final progress = %d, want 3", progress)
	}
}

func TestQuoteBatchEmpty(t *testing.T) {
	store := newTestStore(t)
	agg := QuoteBatch(context.Background(), nil, false, pricing.DefaultConfig(), store, 2, nil, logger.NewNoOpLogger())

	if agg.FileCount != 0 || agg.TotalCost != 0 {
		t.Errorf("empty batch should be zero-valued, got %+v", agg)
	}
}
