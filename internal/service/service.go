// Package service ties parsing, caching, analysis and catalog enrichment
// together for the HTTP server and the command line.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ademuri/streaming-history-tools/internal/analysis"
	"github.com/ademuri/streaming-history-tools/internal/cache"
	"github.com/ademuri/streaming-history-tools/internal/catalog"
	"github.com/ademuri/streaming-history-tools/internal/history"
	"github.com/ademuri/streaming-history-tools/internal/logging"
	"github.com/ademuri/streaming-history-tools/internal/metrics"
)

var (
	// ErrNoUpload means no history file was supplied.
	ErrNoUpload = errors.New("no listening history uploaded")

	// ErrTooLarge means the upload exceeded the configured size limit.
	ErrTooLarge = errors.New("upload too large")
)

type Config struct {
	// CacheSize is the number of parsed histories kept.
	CacheSize int

	// MaxUploadBytes bounds a single upload. Zero means unbounded.
	MaxUploadBytes int64

	// Resolver enriches artist and album queries. Nil disables enrichment.
	Resolver catalog.Resolver

	LookupParallelism int
	LookupTimeout     time.Duration
}

type Service struct {
	cache     *cache.Cache
	parses    singleflight.Group
	enricher  *catalog.Enricher
	maxUpload int64
}

func New(cfg Config) *Service {
	s := &Service{
		cache:     cache.New(cfg.CacheSize),
		maxUpload: cfg.MaxUploadBytes,
	}
	if cfg.Resolver != nil {
		s.enricher = &catalog.Enricher{
			Resolver:    cfg.Resolver,
			Parallelism: cfg.LookupParallelism,
			Timeout:     cfg.LookupTimeout,
		}
	}
	return s
}

// Load reads an upload and returns its parsed history along with its digest.
// Identical uploads are parsed once; concurrent first uploads share a single
// parse. Failed parses are not cached.
func (s *Service) Load(ctx context.Context, r io.Reader) (history.Sequence, string, error) {
	if r == nil {
		return nil, "", ErrNoUpload
	}

	data, digest, err := s.read(r)
	if err != nil {
		return nil, "", err
	}

	if entries, ok := s.cache.Get(digest); ok {
		return entries, digest, nil
	}

	result := s.parses.DoChan(digest, func() (interface{}, error) {
		entries, err := history.Parse(bytes.NewReader(data))
		metrics.RecordParse(len(entries), err)
		if err != nil {
			return nil, err
		}
		s.cache.Put(digest, entries)
		logging.Info().Str("digest", digest).Int("entries", len(entries)).Msg("parsed listening history")
		return entries, nil
	})

	select {
	case <-ctx.Done():
		return nil, "", ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return nil, "", res.Err
		}
		return res.Val.(history.Sequence), digest, nil
	}
}

func (s *Service) read(r io.Reader) ([]byte, string, error) {
	if s.maxUpload > 0 {
		r = io.LimitReader(r, s.maxUpload+1)
	}

	var buf bytes.Buffer
	digester := cache.NewDigester()
	if _, err := io.Copy(io.MultiWriter(&buf, digester), r); err != nil {
		return nil, "", fmt.Errorf("reading upload: %w", err)
	}
	if s.maxUpload > 0 && int64(buf.Len()) > s.maxUpload {
		return nil, "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxUpload)
	}
	return buf.Bytes(), digester.Sum(), nil
}

// Enriches reports whether artist and album queries return catalog
// identifiers rather than names.
func (s *Service) Enriches() bool {
	return s.enricher != nil
}

// TopSongs returns ranked track URIs.
func (s *Service) TopSongs(entries history.Sequence, f analysis.Filter, limit int) ([]string, error) {
	ranked, err := analysis.TopSongs(entries, f, limit)
	if err != nil {
		return nil, err
	}
	return analysis.Keys(ranked), nil
}

// TopArtists returns ranked artists as catalog identifiers, or as names when
// enrichment is disabled.
func (s *Service) TopArtists(ctx context.Context, entries history.Sequence, f analysis.Filter, limit int) ([]string, error) {
	ranked, err := analysis.TopArtists(entries, f, limit)
	if err != nil {
		return nil, err
	}
	names := analysis.Keys(ranked)
	if s.enricher == nil {
		return names, nil
	}
	return s.enricher.Artists(ctx, names), nil
}

// TopAlbums returns ranked albums as catalog identifiers, or as
// "album - artist" when enrichment is disabled.
func (s *Service) TopAlbums(ctx context.Context, entries history.Sequence, f analysis.Filter, limit int) ([]string, error) {
	ranked, err := analysis.TopAlbums(entries, f, limit)
	if err != nil {
		return nil, err
	}
	keys := analysis.Keys(ranked)
	if s.enricher == nil {
		names := make([]string, 0, len(keys))
		for _, k := range keys {
			names = append(names, k.String())
		}
		return names, nil
	}
	return s.enricher.Albums(ctx, keys), nil
}

func (s *Service) PlayedOn(entries history.Sequence, date time.Time, limit int) ([]string, error) {
	return analysis.PlayedOn(entries, date, limit)
}

func (s *Service) Explore(entries history.Sequence) analysis.Stats {
	return analysis.Explore(entries)
}

func (s *Service) Summary(entries history.Sequence, limit int) (analysis.Summary, error) {
	return analysis.Summarize(entries, limit)
}

// Weekdays returns minutes per weekday keyed by upper-case day name.
func (s *Service) Weekdays(entries history.Sequence, f analysis.Filter) map[string]int64 {
	days := analysis.Weekdays(entries, f)
	totals := make(map[string]int64, len(days))
	for _, d := range days {
		totals[analysis.WeekdayName(d.Key)] = d.Minutes
	}
	return totals
}
