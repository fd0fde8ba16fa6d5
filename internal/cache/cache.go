// Package cache keeps parsed listening histories keyed by the digest of the
// uploaded bytes, so re-uploading the same file skips parsing.
package cache

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"hash"
	"io"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/ademuri/streaming-history-tools/internal/history"
	"github.com/ademuri/streaming-history-tools/internal/metrics"
)

// DefaultCapacity is used when a non-positive capacity is configured.
const DefaultCapacity = 16

// Cache is a bounded, least-recently-used map from upload digest to parsed
// history. It is safe for concurrent use. Sequences handed out are shared and
// must be treated as read-only.
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache
}

// New returns a cache holding at most capacity histories.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{lru: lru.New(capacity)}
	c.lru.OnEvicted = func(lru.Key, interface{}) {
		metrics.HistoryCacheEvictions.Inc()
	}
	return c
}

// Get returns the history cached under digest.
func (c *Cache) Get(digest string) (history.Sequence, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lru.Get(digest)
	if !ok {
		metrics.HistoryCacheMisses.Inc()
		return nil, false
	}
	metrics.HistoryCacheHits.Inc()
	return v.(history.Sequence), true
}

// Put stores a fully parsed history under digest, replacing any previous
// value.
func (c *Cache) Put(digest string, entries history.Sequence) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(digest, entries)
	metrics.HistoryCacheSize.Set(float64(c.lru.Len()))
}

// Len is the number of cached histories.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Clear drops every cached history.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Clear()
	metrics.HistoryCacheSize.Set(0)
}

// Digester accumulates a SHA-256 over everything written to it.
type Digester struct {
	h hash.Hash
}

func NewDigester() *Digester {
	return &Digester{h: sha256.New()}
}

func (d *Digester) Write(p []byte) (int, error) {
	return d.h.Write(p)
}

// Sum returns the standard base64 encoding of the digest so far.
func (d *Digester) Sum() string {
	return base64.StdEncoding.EncodeToString(d.h.Sum(nil))
}

// Digest consumes r and returns its digest.
func Digest(r io.Reader) (string, error) {
	d := NewDigester()
	if _, err := io.Copy(d, r); err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	return d.Sum(), nil
}
