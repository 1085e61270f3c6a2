// Package storage persists quotes so a document is inspected once and
// its estimate can be retrieved later by ID.
package storage

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/accessibleworks/scopescan/internal/pricing"
	"github.com/accessibleworks/scopescan/models"
)

// Store defines the interface for storing and retrieving quotes
type Store interface {
	// StoreReport stores a quote under the given ID, replacing any
	// previous quote with the same ID
	StoreReport(ctx context.Context, quoteID string, report *models.DocumentReport, sourceInfo *models.SourceInfo) error

	// ReportExists reports whether a quote with the given ID is stored
	ReportExists(ctx context.Context, quoteID string) (bool, error)

	// GetReport retrieves a stored quote by ID
	GetReport(ctx context.Context, quoteID string) (*models.DocumentReport, error)

	// ListQuotes returns all stored quotes, newest first
	ListQuotes(ctx context.Context) ([]models.QuoteInfo, error)

	// DeleteQuote removes a quote and all associated data
	DeleteQuote(ctx context.Context, quoteID string) error

	// Close closes the database connection
	Close() error
}

// GenerateQuoteID derives a stable quote ID from the document bytes,
// the rush flag, and the rate card. The same document quoted under the
// same pricing terms always maps to the same ID, so repeat requests hit
// the stored quote; changing the rates or the rush flag yields a fresh
// ID instead of silently serving a quote priced under old terms.
func GenerateQuoteID(data []byte, rush bool, cfg pricing.Config) string {
	h := sha256.New()
	h.Write(data)
	fmt.Fprintf(h, "|rush=%t|%+v", rush, cfg)
	return fmt.Sprintf("quote_%x", h.Sum(nil)[:8])
}
