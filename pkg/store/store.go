// Package store persists research reports, user feedback, and model usage
// records in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/finsight-ai/finsight/pkg/models"
)

// Store is a SQLite-backed persistence layer with auto-migration on open.
type Store struct {
	db *sql.DB
}

const createReportsTable = `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	query TEXT NOT NULL,
	analysis TEXT NOT NULL,
	confidence TEXT NOT NULL,
	provider TEXT NOT NULL,
	model TEXT NOT NULL,
	data TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_reports_symbol ON reports(symbol, created_at);
`

const createFeedbackTable = `
CREATE TABLE IF NOT EXISTS feedback (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	report_id TEXT NOT NULL,
	rating INTEGER NOT NULL,
	helpful_aspects TEXT NOT NULL DEFAULT '[]',
	missing_aspects TEXT NOT NULL DEFAULT '[]',
	comments TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const createUsageTable = `
CREATE TABLE IF NOT EXISTS usage_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	provider TEXT NOT NULL,
	model TEXT NOT NULL,
	symbol TEXT NOT NULL,
	total_tokens INTEGER NOT NULL,
	latency_ms INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_usage_provider ON usage_records(provider, created_at);
`

// New opens the database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	for _, stmt := range []string{createReportsTable, createFeedbackTable, createUsageTable} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate store db: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// SaveReport persists a research report. An empty ID is assigned.
func (s *Store) SaveReport(ctx context.Context, r *models.Report) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	confJSON, err := json.Marshal(r.Confidence)
	if err != nil {
		return fmt.Errorf("encode confidence: %w", err)
	}
	dataJSON, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Errorf("encode data: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, symbol, query, analysis, confidence, provider, model, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Symbol, r.Query, r.Analysis, string(confJSON), r.Provider, r.Model, string(dataJSON), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// GetReport returns one report by ID.
func (s *Store) GetReport(ctx context.Context, id string) (*models.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, symbol, query, analysis, confidence, provider, model, data, created_at
		 FROM reports WHERE id = ?`, id)
	return scanReport(row)
}

// ListReports returns recent reports, optionally filtered by symbol.
func (s *Store) ListReports(ctx context.Context, symbol string, limit int) ([]models.Report, error) {
	query := `SELECT id, symbol, query, analysis, confidence, provider, model, data, created_at FROM reports`
	var args []any
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*models.Report, error) {
	var r models.Report
	var confJSON, dataJSON string
	if err := row.Scan(&r.ID, &r.Symbol, &r.Query, &r.Analysis, &confJSON, &r.Provider, &r.Model, &dataJSON, &r.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}
	if err := json.Unmarshal([]byte(confJSON), &r.Confidence); err != nil {
		return nil, fmt.Errorf("decode confidence: %w", err)
	}
	if err := json.Unmarshal([]byte(dataJSON), &r.Data); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return &r, nil
}

// SubmitFeedback stores a rating for a report. Ratings are 1 through 5.
func (s *Store) SubmitFeedback(ctx context.Context, f models.FeedbackEntry) error {
	if f.Rating < 1 || f.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", f.Rating)
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	helpful, _ := json.Marshal(f.HelpfulAspects)
	missing, _ := json.Marshal(f.MissingAspects)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (report_id, rating, helpful_aspects, missing_aspects, comments, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.ReportID, f.Rating, string(helpful), string(missing), f.Comments, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("submit feedback: %w", err)
	}
	return nil
}

// FeedbackSummary aggregates ratings and aspect counts across all feedback.
func (s *Store) FeedbackSummary(ctx context.Context) (models.FeedbackSummary, error) {
	summary := models.FeedbackSummary{
		HelpfulAspects: make(map[string]int),
		MissingAspects: make(map[string]int),
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM feedback`,
	).Scan(&summary.TotalFeedback, &summary.AverageRating)
	if err != nil {
		return summary, fmt.Errorf("feedback summary: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT helpful_aspects, missing_aspects FROM feedback`)
	if err != nil {
		return summary, fmt.Errorf("feedback aspects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var helpfulJSON, missingJSON string
		if err := rows.Scan(&helpfulJSON, &missingJSON); err != nil {
			return summary, fmt.Errorf("scan feedback: %w", err)
		}
		var helpful, missing []string
		_ = json.Unmarshal([]byte(helpfulJSON), &helpful)
		_ = json.Unmarshal([]byte(missingJSON), &missing)
		for _, a := range helpful {
			summary.HelpfulAspects[a]++
		}
		for _, a := range missing {
			summary.MissingAspects[a]++
		}
	}
	return summary, rows.Err()
}

// RecordUsage stores one model-call usage record.
func (s *Store) RecordUsage(ctx context.Context, rec models.UsageRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_records (provider, model, symbol, total_tokens, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Provider, rec.Model, rec.Symbol, rec.TotalTokens, rec.LatencyMs, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// UsageSummary aggregates usage grouped by provider and model.
func (s *Store) UsageSummary(ctx context.Context) ([]models.UsageSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT provider, model, COUNT(*), COALESCE(SUM(total_tokens), 0)
		 FROM usage_records GROUP BY provider, model ORDER BY provider, model`)
	if err != nil {
		return nil, fmt.Errorf("usage summary: %w", err)
	}
	defer rows.Close()

	var summaries []models.UsageSummary
	for rows.Next() {
		var s models.UsageSummary
		if err := rows.Scan(&s.Provider, &s.Model, &s.RequestCount, &s.TotalTokens); err != nil {
			return nil, fmt.Errorf("scan usage summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
