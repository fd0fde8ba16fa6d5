package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ademuri/streaming-history-tools/internal/logging"
	"github.com/ademuri/streaming-history-tools/internal/store"
)

// DefaultMissTTL is how long a confirmed miss is remembered.
const DefaultMissTTL = 24 * time.Hour

// Memo remembers resolved identifiers and confirmed misses of another
// resolver. Transport failures are not remembered.
type Memo struct {
	next    Resolver
	db      *store.Store
	missTTL time.Duration

	mu        sync.Mutex
	lastPurge time.Time
	now       func() time.Time
}

func NewMemo(next Resolver, db *store.Store, missTTL time.Duration) *Memo {
	if missTTL <= 0 {
		missTTL = DefaultMissTTL
	}
	return &Memo{next: next, db: db, missTTL: missTTL, now: time.Now}
}

func (m *Memo) Name() string {
	return m.next.Name()
}

func (m *Memo) ResolveArtist(ctx context.Context, name string) (string, error) {
	l := store.Lookup{Resolver: m.next.Name(), Kind: KindArtist, Name: name}
	return m.resolve(l, func() (string, error) {
		return m.next.ResolveArtist(ctx, name)
	})
}

func (m *Memo) ResolveAlbum(ctx context.Context, album, artist string) (string, error) {
	l := store.Lookup{Resolver: m.next.Name(), Kind: KindAlbum, Name: album, Artist: artist}
	return m.resolve(l, func() (string, error) {
		return m.next.ResolveAlbum(ctx, album, artist)
	})
}

func (m *Memo) resolve(l store.Lookup, lookup func() (string, error)) (string, error) {
	m.purgeStaleMisses()

	remembered, ok, err := m.db.GetCatalogID(l)
	if err != nil {
		logging.Warn().Err(err).Msg("reading catalog memo")
	} else if ok {
		if !remembered.Found {
			return "", ErrNotFound
		}
		return remembered.ID, nil
	}

	id, err := lookup()
	switch {
	case err == nil:
		m.remember(l, store.CatalogID{ID: id, Found: true})
	case errors.Is(err, ErrNotFound):
		m.remember(l, store.CatalogID{Found: false})
	}
	return id, err
}

func (m *Memo) remember(l store.Lookup, id store.CatalogID) {
	id.Updated = m.now().UTC()
	if err := m.db.SetCatalogID(l, id); err != nil {
		logging.Warn().Err(err).Msg("writing catalog memo")
	}
}

// purgeStaleMisses forgets expired misses, at most once per TTL.
func (m *Memo) purgeStaleMisses() {
	m.mu.Lock()
	now := m.now()
	if now.Sub(m.lastPurge) < m.missTTL {
		m.mu.Unlock()
		return
	}
	m.lastPurge = now
	m.mu.Unlock()

	if _, err := m.db.DeleteMissesBefore(now.Add(-m.missTTL).UTC()); err != nil {
		logging.Warn().Err(err).Msg("purging catalog memo")
	}
}
