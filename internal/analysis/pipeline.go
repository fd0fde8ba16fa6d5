// Package analysis answers listening questions over a parsed history. Every
// ranked query is a configuration of Pipeline: filter by time, group by a key,
// sum minutes, rank.
package analysis

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/ademuri/streaming-history-tools/internal/history"
)

// ErrInvalidLimit is returned when a ranked query is asked for fewer than one
// result.
var ErrInvalidLimit = errors.New("limit must be a positive integer")

// Aggregate is one group of a ranked result.
type Aggregate[K any] struct {
	Key     K
	Minutes int64
}

// Ordering decides how groups are ranked.
type Ordering int

const (
	// ByMinutes ranks by summed minutes, descending. Equal sums are ordered by
	// ascending key so results are deterministic.
	ByMinutes Ordering = iota

	// ByFirstPlay keeps groups in the order their first entry appears.
	ByFirstPlay
)

// Pipeline is a filter -> group -> sum -> rank computation.
type Pipeline[K comparable] struct {
	Filter Filter
	Key    func(history.Entry) K

	// Metric defaults to the entry's minutes.
	Metric func(history.Entry) int64

	// Compare orders keys with equal sums.
	Compare func(a, b K) int

	Order Ordering
}

// Run executes the pipeline and returns at most limit groups.
func (p Pipeline[K]) Run(entries history.Sequence, limit int) ([]Aggregate[K], error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}

	groups := p.group(entries)

	if p.Order == ByMinutes {
		// Stable, so a nil Compare still ranks equal sums by first play.
		slices.SortStableFunc(groups, func(a, b Aggregate[K]) int {
			if c := cmp.Compare(b.Minutes, a.Minutes); c != 0 {
				return c
			}
			if p.Compare == nil {
				return 0
			}
			return p.Compare(a.Key, b.Key)
		})
	}

	if len(groups) > limit {
		groups = groups[:limit]
	}
	return groups, nil
}

// group sums the metric per key, keeping groups in first-seen order.
func (p Pipeline[K]) group(entries history.Sequence) []Aggregate[K] {
	metric := p.Metric
	if metric == nil {
		metric = minutes
	}

	index := make(map[K]int)
	groups := []Aggregate[K]{}
	for _, e := range entries {
		if !p.Filter.Match(e) {
			continue
		}
		key := p.Key(e)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Aggregate[K]{Key: key})
		}
		groups[i].Minutes += metric(e)
	}
	return groups
}

// Keys drops the sums from a ranked result.
func Keys[K any](ranked []Aggregate[K]) []K {
	return lo.Map(ranked, func(a Aggregate[K], _ int) K {
		return a.Key
	})
}

func minutes(e history.Entry) int64 {
	return e.Minutes
}

// AlbumKey identifies an album by title and album artist. Two albums with the
// same title by different artists are different groups.
type AlbumKey struct {
	Album  string
	Artist string
}

func (k AlbumKey) String() string {
	return k.Album + " - " + k.Artist
}

// CompareAlbumKeys orders by album title, then artist.
func CompareAlbumKeys(a, b AlbumKey) int {
	if c := cmp.Compare(a.Album, b.Album); c != 0 {
		return c
	}
	return cmp.Compare(a.Artist, b.Artist)
}

func byTrackURI(e history.Entry) string {
	return e.TrackURI
}

func byArtist(e history.Entry) string {
	return e.ArtistName
}

func byAlbum(e history.Entry) AlbumKey {
	return AlbumKey{Album: e.AlbumName, Artist: e.ArtistName}
}
