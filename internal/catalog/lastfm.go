package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ademuri/lastfm-go/lastfm"
	"github.com/avast/retry-go"
	"golang.org/x/time/rate"

	"github.com/ademuri/streaming-history-tools/internal/logging"
)

// last.fm answers "artist/album not found" with error 6, invalid parameters.
const lastfmErrInvalidParameters = 6

type LastFMConfig struct {
	APIKey string
	Secret string

	// Rate is the maximum calls per second.
	Rate float64

	Attempts   uint
	RetryDelay time.Duration
}

// LastFM resolves through artist.getInfo and album.getInfo. The identifier is
// the MusicBrainz ID when last.fm has one, and the last.fm page URL otherwise.
type LastFM struct {
	artistInfo func(lastfm.P) (lastfm.ArtistGetInfo, error)
	albumInfo  func(lastfm.P) (lastfm.AlbumGetInfo, error)
	limiter    *rate.Limiter
	attempts   uint
	delay      time.Duration
}

func NewLastFM(cfg LastFMConfig) *LastFM {
	if cfg.Rate <= 0 {
		cfg.Rate = defaultRate
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = defaultAttempts
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}

	client := lastfm.New(cfg.APIKey, cfg.Secret)
	return &LastFM{
		artistInfo: func(p lastfm.P) (lastfm.ArtistGetInfo, error) {
			return client.Artist.GetInfo(p)
		},
		albumInfo: func(p lastfm.P) (lastfm.AlbumGetInfo, error) {
			return client.Album.GetInfo(p)
		},
		limiter:  rate.NewLimiter(rate.Limit(cfg.Rate), 1),
		attempts: cfg.Attempts,
		delay:    cfg.RetryDelay,
	}
}

func (l *LastFM) Name() string {
	return "lastfm"
}

func (l *LastFM) ResolveArtist(ctx context.Context, name string) (string, error) {
	info, err := call(ctx, l, func() (lastfm.ArtistGetInfo, error) {
		return l.artistInfo(lastfm.P{
			"artist":      name,
			"autocorrect": 1,
		})
	})
	if err != nil {
		return "", fmt.Errorf("getting last.fm artist %q: %w", name, err)
	}
	return identifier(info.Mbid, info.Url)
}

func (l *LastFM) ResolveAlbum(ctx context.Context, album, artist string) (string, error) {
	info, err := call(ctx, l, func() (lastfm.AlbumGetInfo, error) {
		return l.albumInfo(lastfm.P{
			"artist":      artist,
			"album":       album,
			"autocorrect": 1,
		})
	})
	if err != nil {
		return "", fmt.Errorf("getting last.fm album %q by %q: %w", album, artist, err)
	}
	return identifier(info.Mbid, info.Url)
}

// call runs fn with pacing and retries. lastfm-go takes no context, so each
// attempt is abandoned, not canceled, once ctx is done.
func call[T any](ctx context.Context, l *LastFM, fn func() (T, error)) (T, error) {
	var result T
	if err := l.limiter.Wait(ctx); err != nil {
		return result, fmt.Errorf("waiting for last.fm rate limit: %w", err)
	}

	err := retry.Do(
		func() error {
			var err error
			result, err = attempt(ctx, fn)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(l.attempts),
		retry.Delay(l.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var lerr *lastfm.LastfmError
			if errors.As(err, &lerr) && lerr.Code/100 == 5 {
				logging.Debug().Err(lerr).Msg("last.fm errored, retrying")
				return true
			}
			return false
		}),
	)

	var lerr *lastfm.LastfmError
	if errors.As(err, &lerr) && lerr.Code == lastfmErrInvalidParameters {
		return result, ErrNotFound
	}
	return result, err
}

type outcome[T any] struct {
	value T
	err   error
}

// attempt returns fn's result, or ctx's error if ctx ends first.
func attempt[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	done := make(chan outcome[T], 1)
	go func() {
		v, err := fn()
		done <- outcome[T]{v, err}
	}()

	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func identifier(mbid, url string) (string, error) {
	if mbid != "" {
		return mbid, nil
	}
	if url != "" {
		return url, nil
	}
	return "", ErrNotFound
}
