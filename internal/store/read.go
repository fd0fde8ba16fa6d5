package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Lookup identifies one catalog query. Artist is empty for artist lookups.
type Lookup struct {
	Resolver string
	Kind     string
	Name     string
	Artist   string
}

// CatalogID is a remembered lookup result. Found is false for a confirmed
// miss, in which case ID is empty.
type CatalogID struct {
	ID      string
	Found   bool
	Updated time.Time
}

// GetCatalogID returns the remembered result for l. ok is false if l was never
// recorded.
func (s *Store) GetCatalogID(l Lookup) (id CatalogID, ok bool, err error) {
	row := s.db.QueryRow(
		"SELECT catalog_id, found, updated FROM CatalogID WHERE resolver = ? AND kind = ? AND name = ? AND artist = ?",
		l.Resolver, l.Kind, l.Name, l.Artist)
	err = row.Scan(&id.ID, &id.Found, &id.Updated)
	if err == sql.ErrNoRows {
		return CatalogID{}, false, nil
	}
	if err != nil {
		return CatalogID{}, false, fmt.Errorf("getting catalog id for %s %q: %w", l.Kind, l.Name, err)
	}
	return id, true, nil
}

// CountCatalogIDs returns how many lookups are remembered for resolver.
func (s *Store) CountCatalogIDs(resolver string) (int, error) {
	row := s.db.QueryRow("SELECT COUNT(*) FROM CatalogID WHERE resolver = ?", resolver)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting catalog ids: %w", err)
	}
	return count, nil
}
