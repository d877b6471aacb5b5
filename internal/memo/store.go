package memo

import (
	"database/sql"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS memo_entries (
	memo_key    TEXT PRIMARY KEY,
	value_json  TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
`
// #endregion schema

// #region store-struct

// Store is a SQLite-backed Provider with an in-memory LRU front, so
// repeated reads within one process skip the database.
type Store struct {
	db  *sql.DB
	mem *lru.Cache[string, []byte]
}

// #endregion store-struct

// #region constructor

// DefaultMemEntries bounds the in-memory front of the cache.
const DefaultMemEntries = 256

// NewStore opens (or creates) the memo table on the given database path.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open memo db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	return newStoreOn(db)
}

// NewStoreOn attaches the memo table to an already open database, so the
// cache can share the corpus store's file.
func NewStoreOn(db *sql.DB) (*Store, error) {
	return newStoreOn(db)
}

func newStoreOn(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate memo table: %w", err)
	}
	mem, err := lru.New[string, []byte](DefaultMemEntries)
	if err != nil {
		return nil, fmt.Errorf("memo lru: %w", err)
	}
	return &Store{db: db, mem: mem}, nil
}

// #endregion constructor

// #region provider-impl

// Exists reports whether an entry is cached.
func (s *Store) Exists(key string) (bool, error) {
	if _, ok := s.mem.Get(key); ok {
		return true, nil
	}
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM memo_entries WHERE memo_key = ?`, key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("memo exists %s: %w", key, err)
	}
	return n > 0, nil
}

// Read returns the cached value for key.
func (s *Store) Read(key string) ([]byte, error) {
	if v, ok := s.mem.Get(key); ok {
		return v, nil
	}
	var value string
	err := s.db.QueryRow(`SELECT value_json FROM memo_entries WHERE memo_key = ?`, key).Scan(&value)
	if err != nil {
		return nil, fmt.Errorf("memo read %s: %w", key, err)
	}
	b := []byte(value)
	s.mem.Add(key, b)
	return b, nil
}

// Write upserts the value for key. Overwriting is how corrupt entries get
// repaired after a recompute.
func (s *Store) Write(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO memo_entries (memo_key, value_json, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(memo_key) DO UPDATE SET value_json = excluded.value_json, created_at = excluded.created_at`,
		key, string(value), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("memo write %s: %w", key, err)
	}
	s.mem.Add(key, append([]byte(nil), value...))
	return nil
}

// #endregion provider-impl

// #region maintenance

// Flush removes every cached entry. Needed after re-importing a dataset
// under an existing ID, since signatures do not hash attribute payloads.
func (s *Store) Flush() error {
	if _, err := s.db.Exec(`DELETE FROM memo_entries`); err != nil {
		return fmt.Errorf("memo flush: %w", err)
	}
	s.mem.Purge()
	return nil
}

// Len returns the number of persisted entries.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM memo_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("memo len: %w", err)
	}
	return n, nil
}

// #endregion maintenance
