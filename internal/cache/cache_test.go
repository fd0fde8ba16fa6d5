package cache

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ademuri/streaming-history-tools/internal/history"
)

func sequence(uris ...string) history.Sequence {
	entries := history.Sequence{}
	for _, uri := range uris {
		entries = append(entries, history.Entry{
			Timestamp: time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
			Minutes:   1,
			TrackURI:  uri,
		})
	}
	return entries
}

func TestGetPut(t *testing.T) {
	c := New(4)

	if _, ok := c.Get("missing"); ok {
		t.Fatalf("Get() on empty cache returned ok")
	}

	want := sequence("a", "b")
	c.Put("d1", want)
	got, ok := c.Get("d1")
	if !ok {
		t.Fatalf("Get(d1) not found after Put")
	}
	if len(got) != 2 || got[0].TrackURI != "a" || got[1].TrackURI != "b" {
		t.Errorf("Get(d1) = %v, want %v", got, want)
	}
}

func TestPut_emptySequence(t *testing.T) {
	c := New(4)
	c.Put("empty", history.Sequence{})

	got, ok := c.Get("empty")
	if !ok {
		t.Fatalf("header-only history should be cached")
	}
	if len(got) != 0 {
		t.Errorf("Get(empty) = %v, want no entries", got)
	}
}

func TestEviction(t *testing.T) {
	c := New(2)
	c.Put("a", sequence("a"))
	c.Put("b", sequence("b"))

	// Touch a so b is least recently used.
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("Get(a) missing")
	}
	c.Put("c", sequence("c"))

	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.Get("b"); ok {
		t.Errorf("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Errorf("expected a to survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Errorf("expected c to be cached")
	}
}

func TestNew_defaultCapacity(t *testing.T) {
	c := New(0)
	for i := 0; i < DefaultCapacity+3; i++ {
		c.Put(fmt.Sprint(i), sequence("x"))
	}
	if c.Len() != DefaultCapacity {
		t.Errorf("Len() = %d, want %d", c.Len(), DefaultCapacity)
	}
}

func TestClear(t *testing.T) {
	c := New(4)
	c.Put("a", sequence("a"))
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(8)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprint(i % 4)
			c.Put(key, sequence(key))
			if got, ok := c.Get(key); ok && len(got) != 1 {
				t.Errorf("Get(%s) returned partial history %v", key, got)
			}
		}(i)
	}
	wg.Wait()
}

func TestDigest(t *testing.T) {
	// echo -n "abc" | sha256sum | xxd -r -p | base64
	const want = "ungWv48Bz+pBQUDeXa4iI7ADYaOWF3qctBD/YfIAFa0="

	got, err := Digest(strings.NewReader("abc"))
	if err != nil {
		t.Fatalf("Digest() error: %v", err)
	}
	if got != want {
		t.Errorf("Digest(abc) = %q, want %q", got, want)
	}

	other, err := Digest(strings.NewReader("abd"))
	if err != nil {
		t.Fatalf("Digest() error: %v", err)
	}
	if other == got {
		t.Errorf("different content produced the same digest")
	}
}
