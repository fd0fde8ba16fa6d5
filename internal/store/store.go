package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	if dbPath == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	query := `
CREATE TABLE IF NOT EXISTS CatalogID (
  resolver TEXT NOT NULL,
  kind TEXT NOT NULL,
  name TEXT NOT NULL,
  artist TEXT NOT NULL DEFAULT '',
  catalog_id TEXT NOT NULL DEFAULT '',
  found INTEGER NOT NULL,
  updated DATETIME NOT NULL,
  PRIMARY KEY (resolver, kind, name, artist)
);
`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("creating CatalogID table: %w", err)
	}
	return nil
}
