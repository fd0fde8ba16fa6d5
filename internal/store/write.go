package store

import (
	"fmt"
	"time"
)

// SetCatalogID records the result of a lookup, replacing any earlier one.
func (s *Store) SetCatalogID(l Lookup, id CatalogID) error {
	if id.Updated.IsZero() {
		id.Updated = time.Now().UTC()
	}
	_, err := s.db.Exec(`
INSERT INTO CatalogID (resolver, kind, name, artist, catalog_id, found, updated)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (resolver, kind, name, artist) DO UPDATE SET
  catalog_id = excluded.catalog_id,
  found = excluded.found,
  updated = excluded.updated`,
		l.Resolver, l.Kind, l.Name, l.Artist, id.ID, id.Found, id.Updated)
	if err != nil {
		return fmt.Errorf("setting catalog id for %s %q: %w", l.Kind, l.Name, err)
	}
	return nil
}

// DeleteMissesBefore forgets confirmed misses recorded before cutoff, so they
// are looked up again.
func (s *Store) DeleteMissesBefore(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM CatalogID WHERE found = 0 AND updated < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting stale misses: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted misses: %w", err)
	}
	return n, nil
}
