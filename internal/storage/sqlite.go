package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/accessibleworks/scopescan/models"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the database tables if they don't exist
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS quotes (
		id TEXT PRIMARY KEY,
		filename TEXT,
		path TEXT,
		url TEXT,
		total_pages INTEGER NOT NULL,
		is_tagged INTEGER NOT NULL,
		tier1_pages INTEGER NOT NULL,
		tier2_pages INTEGER NOT NULL,
		tier3_pages INTEGER NOT NULL,
		form_fields INTEGER NOT NULL,
		images INTEGER NOT NULL,
		dense_pages INTEGER NOT NULL,
		rush_applied INTEGER NOT NULL,
		minimum_applied INTEGER NOT NULL,
		raw_total REAL NOT NULL,
		estimated_cost REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS quote_pages (
		quote_id TEXT NOT NULL,
		page_number INTEGER NOT NULL,
		tier INTEGER NOT NULL,
		form_fields INTEGER NOT NULL,
		score INTEGER NOT NULL,
		PRIMARY KEY (quote_id, page_number),
		FOREIGN KEY (quote_id) REFERENCES quotes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS quote_subtotals (
		quote_id TEXT NOT NULL,
		tier INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		rate REAL NOT NULL,
		subtotal REAL NOT NULL,
		PRIMARY KEY (quote_id, tier),
		FOREIGN KEY (quote_id) REFERENCES quotes(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_quotes_filename ON quotes(filename);
	`

	_, err := s.db.Exec(schema)
	return err
}

// StoreReport stores a quote under the given ID, replacing any
// previous quote with the same ID
func (s *SQLiteStore) StoreReport(ctx context.Context, quoteID string, report *models.DocumentReport, sourceInfo *models.SourceInfo) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var path, url string
	if sourceInfo != nil {
		path = sourceInfo.Path
		url = sourceInfo.URL
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO quotes (id, filename, path, url, total_pages, is_tagged,
			tier1_pages, tier2_pages, tier3_pages, form_fields, images, dense_pages,
			rush_applied, minimum_applied, raw_total, estimated_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, quoteID, report.Filename, path, url, report.TotalPages, report.IsTagged,
		report.TierCounts[models.Tier1], report.TierCounts[models.Tier2], report.TierCounts[models.Tier3],
		report.ElementTotals.FormFields, report.ElementTotals.Images, report.ElementTotals.DensePages,
		report.Pricing.RushApplied, report.Pricing.MinimumApplied, report.Pricing.RawTotal, report.EstimatedCost)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}

	// Replace any stale rows from a previous quote under the same ID.
	if _, err = tx.ExecContext(ctx, `DELETE FROM quote_pages WHERE quote_id = ?`, quoteID); err != nil {
		return fmt.Errorf("failed to clear quote pages: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM quote_subtotals WHERE quote_id = ?`, quoteID); err != nil {
		return fmt.Errorf("failed to clear quote subtotals: %w", err)
	}

	for _, page := range report.PerPage {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO quote_pages (quote_id, page_number, tier, form_fields, score)
			VALUES (?, ?, ?, ?, ?)
		`, quoteID, page.PageNumber, int(page.Tier), page.FormFieldCount, page.Score)
		if err != nil {
			return fmt.Errorf("failed to insert page %d: %w", page.PageNumber, err)
		}
	}

	for _, sub := range report.Pricing.TierSubtotals {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO quote_subtotals (quote_id, tier, pages, rate, subtotal)
			VALUES (?, ?, ?, ?, ?)
		`, quoteID, int(sub.Tier), sub.Pages, sub.Rate, sub.Subtotal)
		if err != nil {
			return fmt.Errorf("failed to insert subtotal for %s: %w", sub.Tier, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ReportExists reports whether a quote with the given ID is stored
func (s *SQLiteStore) ReportExists(ctx context.Context, quoteID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM quotes WHERE id = ?`, quoteID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query quote: %w", err)
	}
	return true, nil
}

// GetReport retrieves a stored quote by ID
func (s *SQLiteStore) GetReport(ctx context.Context, quoteID string) (*models.DocumentReport, error) {
	var report models.DocumentReport
	var tier1, tier2, tier3 int

	err := s.db.QueryRowContext(ctx, `
		SELECT filename, total_pages, is_tagged, tier1_pages, tier2_pages, tier3_pages,
			form_fields, images, dense_pages, rush_applied, minimum_applied, raw_total, estimated_cost
		FROM quotes
		WHERE id = ?
	`, quoteID).Scan(&report.Filename, &report.TotalPages, &report.IsTagged,
		&tier1, &tier2, &tier3,
		&report.ElementTotals.FormFields, &report.ElementTotals.Images, &report.ElementTotals.DensePages,
		&report.Pricing.RushApplied, &report.Pricing.MinimumApplied, &report.Pricing.RawTotal, &report.EstimatedCost)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("quote not found: %s", quoteID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query quote: %w", err)
	}

	report.TierCounts = map[models.Tier]int{
		models.Tier1: tier1,
		models.Tier2: tier2,
		models.Tier3: tier3,
	}
	report.Pricing.Total = report.EstimatedCost

	rows, err := s.db.QueryContext(ctx, `
		SELECT page_number, tier, form_fields, score FROM quote_pages
		WHERE quote_id = ?
		ORDER BY page_number
	`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote pages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var page models.PageAssessment
		var tier int
		if err := rows.Scan(&page.PageNumber, &tier, &page.FormFieldCount, &page.Score); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		page.Tier = models.Tier(tier)
		report.PerPage = append(report.PerPage, page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pages: %w", err)
	}

	subRows, err := s.db.QueryContext(ctx, `
		SELECT tier, pages, rate, subtotal FROM quote_subtotals
		WHERE quote_id = ?
		ORDER BY tier
	`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote subtotals: %w", err)
	}
	defer subRows.Close()

	for subRows.Next() {
		var sub models.TierSubtotal
		var tier int
		if err := subRows.Scan(&tier, &sub.Pages, &sub.Rate, &sub.Subtotal); err != nil {
			return nil, fmt.Errorf("failed to scan subtotal: %w", err)
		}
		sub.Tier = models.Tier(tier)
		report.Pricing.TierSubtotals = append(report.Pricing.TierSubtotals, sub)
	}
	if err := subRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subtotals: %w", err)
	}

	return &report, nil
}

// ListQuotes returns all stored quotes, newest first
func (s *SQLiteStore) ListQuotes(ctx context.Context) ([]models.QuoteInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, total_pages, estimated_cost, rush_applied, created_at
		FROM quotes
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	var quotes []models.QuoteInfo
	for rows.Next() {
		var info models.QuoteInfo
		if err := rows.Scan(&info.QuoteID, &info.Filename, &info.TotalPages,
			&info.EstimatedCost, &info.RushApplied, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quotes: %w", err)
	}

	return quotes, nil
}

// DeleteQuote removes a quote and all associated data
func (s *SQLiteStore) DeleteQuote(ctx context.Context, quoteID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, quoteID)
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("quote not found: %s", quoteID)
	}

	// ON DELETE CASCADE is not enforced unless foreign keys are enabled
	// on the connection, so clear child rows explicitly.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM quote_pages WHERE quote_id = ?`, quoteID); err != nil {
		return fmt.Errorf("failed to delete quote pages: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM quote_subtotals WHERE quote_id = ?`, quoteID); err != nil {
		return fmt.Errorf("failed to delete quote subtotals: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
