package catalog

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ademuri/streaming-history-tools/internal/analysis"
	"github.com/ademuri/streaming-history-tools/internal/logging"
	"github.com/ademuri/streaming-history-tools/internal/metrics"
)

const (
	DefaultParallelism = 4
	DefaultTimeout     = 10 * time.Second
)

// Enricher maps ranked results to catalog identifiers. Items that miss or
// fail are logged and dropped; the rest keep their ranked order.
type Enricher struct {
	Resolver Resolver

	// Parallelism bounds concurrent lookups.
	Parallelism int

	// Timeout applies to each lookup.
	Timeout time.Duration
}

// Artists resolves artist names.
func (e *Enricher) Artists(ctx context.Context, names []string) []string {
	return e.resolve(ctx, KindArtist, len(names),
		func(ctx context.Context, i int) (string, error) {
			return e.Resolver.ResolveArtist(ctx, names[i])
		},
		func(i int) string { return names[i] })
}

// Albums resolves album keys.
func (e *Enricher) Albums(ctx context.Context, keys []analysis.AlbumKey) []string {
	return e.resolve(ctx, KindAlbum, len(keys),
		func(ctx context.Context, i int) (string, error) {
			return e.Resolver.ResolveAlbum(ctx, keys[i].Album, keys[i].Artist)
		},
		func(i int) string { return keys[i].String() })
}

func (e *Enricher) resolve(ctx context.Context, kind string, n int, lookup func(context.Context, int) (string, error), label func(int) string) []string {
	log := logging.With("catalog")
	resolver := e.Resolver.Name()

	parallelism := e.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ids := make([]string, n)
	found := make([]bool, n)

	var g errgroup.Group
	g.SetLimit(parallelism)
	for i := range n {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			id, err := lookup(callCtx, i)
			switch {
			case err == nil:
				ids[i], found[i] = id, true
				metrics.CatalogLookups.WithLabelValues(resolver, kind, "found").Inc()
			case errors.Is(err, ErrNotFound):
				metrics.CatalogLookups.WithLabelValues(resolver, kind, "not_found").Inc()
				log.Info().Str("kind", kind).Str("name", label(i)).Msg("not found in catalog")
			default:
				metrics.CatalogLookups.WithLabelValues(resolver, kind, "error").Inc()
				log.Warn().Err(err).Str("kind", kind).Str("name", label(i)).Msg("catalog lookup failed")
			}
			return nil
		})
	}
	// Lookups never return errors.
	_ = g.Wait()

	resolved := make([]string, 0, n)
	for i, id := range ids {
		if found[i] {
			resolved = append(resolved, id)
		}
	}
	return resolved
}
