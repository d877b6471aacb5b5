// Package logging persists a provenance row per inference run, so results
// can be traced back to the corpus, configuration, and prior that
// produced them.
package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS inference_runs (
	run_id           TEXT PRIMARY KEY,
	corpus_signature TEXT NOT NULL,
	test_sequence_id TEXT NOT NULL,
	prior_mode       TEXT NOT NULL,
	categories_json  TEXT NOT NULL,
	positions        INTEGER NOT NULL,
	mean_ic          REAL NOT NULL,
	map_category     TEXT,
	summary_json     TEXT,
	created_at       TEXT NOT NULL
);
`
// #endregion schema

// #region entry

// RunEntry is a single row in the inference_runs table.
type RunEntry struct {
	RunID           string
	CorpusSignature string
	TestSequenceID  string
	PriorMode       string
	CategoriesJSON  string
	Positions       int
	MeanIC          float64
	MAPCategory     string
	SummaryJSON     string
	CreatedAt       time.Time
}

// #endregion entry

// #region migrate
// Migrate creates the provenance table.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate inference_runs: %w", err)
	}
	return nil
}
// #endregion migrate

// #region log-run
// LogRun writes a provenance entry to the inference_runs table.
func LogRun(db *sql.DB, entry RunEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO inference_runs (run_id, corpus_signature, test_sequence_id, prior_mode, categories_json, positions, mean_ic, map_category, summary_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.CorpusSignature,
		entry.TestSequenceID,
		entry.PriorMode,
		entry.CategoriesJSON,
		entry.Positions,
		entry.MeanIC,
		nullIfEmpty(entry.MAPCategory),
		nullIfEmpty(entry.SummaryJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log run: %w", err)
	}
	return nil
}
// #endregion log-run

// #region list-runs
// ListRuns returns the most recent provenance entries.
func ListRuns(db *sql.DB, limit int) ([]RunEntry, error) {
	rows, err := db.Query(
		`SELECT run_id, corpus_signature, test_sequence_id, prior_mode, categories_json, positions, mean_ic, map_category, summary_json, created_at
		 FROM inference_runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunEntry
	for rows.Next() {
		var e RunEntry
		var mapCat, summary sql.NullString
		var createdStr string
		if err := rows.Scan(&e.RunID, &e.CorpusSignature, &e.TestSequenceID, &e.PriorMode, &e.CategoriesJSON, &e.Positions, &e.MeanIC, &mapCat, &summary, &createdStr); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if mapCat.Valid {
			e.MAPCategory = mapCat.String
		}
		if summary.Valid {
			e.SummaryJSON = summary.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}
// #endregion list-runs

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
