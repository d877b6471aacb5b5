package corpus

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS datasets (
	dataset_id   TEXT PRIMARY KEY,
	description  TEXT,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sequences (
	sequence_id  TEXT PRIMARY KEY,
	dataset_id   TEXT NOT NULL,
	position     INTEGER NOT NULL,
	FOREIGN KEY (dataset_id) REFERENCES datasets(dataset_id)
);

CREATE TABLE IF NOT EXISTS events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	sequence_id  TEXT NOT NULL,
	position     INTEGER NOT NULL,
	attrs_json   TEXT NOT NULL,
	FOREIGN KEY (sequence_id) REFERENCES sequences(sequence_id)
);

CREATE INDEX IF NOT EXISTS idx_sequences_dataset ON sequences(dataset_id, position);
CREATE INDEX IF NOT EXISTS idx_events_sequence ON events(sequence_id, position);
`
// #endregion schema

// #region store-struct
// Store persists datasets of event sequences in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages
// (memoization, run provenance).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region save-dataset
// SaveDataset inserts a dataset and its sequences in one transaction.
// An existing dataset with the same ID is an error; re-imports must go
// through a fresh ID or an explicit delete.
func (s *Store) SaveDataset(datasetID, description string, seqs []Sequence) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO datasets (dataset_id, description, created_at) VALUES (?, ?, ?)`,
		datasetID, description, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert dataset %s: %w", datasetID, err)
	}

	for si, seq := range seqs {
		_, err = tx.Exec(
			`INSERT INTO sequences (sequence_id, dataset_id, position) VALUES (?, ?, ?)`,
			seq.ID, datasetID, si,
		)
		if err != nil {
			return fmt.Errorf("insert sequence %s: %w", seq.ID, err)
		}
		for ei, ev := range seq.Events {
			attrsJSON, err := json.Marshal(ev.Attrs())
			if err != nil {
				return fmt.Errorf("marshal event %s[%d]: %w", seq.ID, ei, err)
			}
			_, err = tx.Exec(
				`INSERT INTO events (sequence_id, position, attrs_json) VALUES (?, ?, ?)`,
				seq.ID, ei, string(attrsJSON),
			)
			if err != nil {
				return fmt.Errorf("insert event %s[%d]: %w", seq.ID, ei, err)
			}
		}
	}

	return tx.Commit()
}
// #endregion save-dataset

// #region get-sequences
// GetSequences loads every sequence of the named datasets in stored
// order.
func (s *Store) GetSequences(datasetIDs []string) ([]Sequence, error) {
	var out []Sequence
	for _, dataset := range datasetIDs {
		rows, err := s.db.Query(
			`SELECT sequence_id FROM sequences WHERE dataset_id = ? ORDER BY position`, dataset,
		)
		if err != nil {
			return nil, fmt.Errorf("list sequences %s: %w", dataset, err)
		}
		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan sequence row: %w", err)
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterate sequences %s: %w", dataset, err)
		}
		rows.Close()

		for _, id := range ids {
			seq, err := s.getSequence(id)
			if err != nil {
				return nil, err
			}
			out = append(out, seq)
		}
	}
	return out, nil
}

func (s *Store) getSequence(sequenceID string) (Sequence, error) {
	rows, err := s.db.Query(
		`SELECT attrs_json FROM events WHERE sequence_id = ? ORDER BY position`, sequenceID,
	)
	if err != nil {
		return Sequence{}, fmt.Errorf("load events %s: %w", sequenceID, err)
	}
	defer rows.Close()

	seq := Sequence{ID: sequenceID}
	for rows.Next() {
		var attrsJSON string
		if err := rows.Scan(&attrsJSON); err != nil {
			return Sequence{}, fmt.Errorf("scan event row: %w", err)
		}
		var attrs map[string]any
		if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
			return Sequence{}, fmt.Errorf("unmarshal event in %s: %w", sequenceID, err)
		}
		seq.Events = append(seq.Events, NewEvent(attrs))
	}
	return seq, rows.Err()
}
// #endregion get-sequences

// #region list-datasets
// ListDatasets returns dataset IDs with their sequence counts.
func (s *Store) ListDatasets() (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT d.dataset_id, COUNT(s.sequence_id)
		 FROM datasets d LEFT JOIN sequences s ON s.dataset_id = d.dataset_id
		 GROUP BY d.dataset_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan dataset row: %w", err)
		}
		out[id] = n
	}
	return out, rows.Err()
}
// #endregion list-datasets
