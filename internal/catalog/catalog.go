// Package catalog resolves ranked artist names and album keys to identifiers
// in an external music catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound means the catalog has no match for the lookup.
var ErrNotFound = errors.New("not found in catalog")

const (
	KindArtist = "artist"
	KindAlbum  = "album"
)

// Resolver looks names up in a catalog. Any error other than ErrNotFound is a
// transport failure.
type Resolver interface {
	// Name identifies the catalog in logs, metrics and memo keys.
	Name() string
	ResolveArtist(ctx context.Context, name string) (string, error)
	ResolveAlbum(ctx context.Context, album, artist string) (string, error)
}

// Config selects and configures a resolver.
type Config struct {
	// Catalog is none, spotify or lastfm.
	Catalog string

	Spotify SpotifyConfig
	LastFM  LastFMConfig

	// Rate is the maximum lookups per second.
	Rate float64
}

// New builds the resolver named by cfg.Catalog. It returns a nil Resolver for
// "none" or an empty name.
func New(ctx context.Context, cfg Config) (Resolver, error) {
	switch cfg.Catalog {
	case "", "none":
		return nil, nil
	case "spotify":
		if cfg.Spotify.ClientID == "" || cfg.Spotify.ClientSecret == "" {
			return nil, errors.New("spotify catalog requires spotify_client_id and spotify_client_secret")
		}
		if cfg.Spotify.Rate == 0 {
			cfg.Spotify.Rate = cfg.Rate
		}
		return NewSpotify(ctx, cfg.Spotify), nil
	case "lastfm":
		if cfg.LastFM.APIKey == "" || cfg.LastFM.Secret == "" {
			return nil, errors.New("lastfm catalog requires api_key and secret")
		}
		if cfg.LastFM.Rate == 0 {
			cfg.LastFM.Rate = cfg.Rate
		}
		return NewLastFM(cfg.LastFM), nil
	}
	return nil, fmt.Errorf("unknown catalog %q, want none, spotify or lastfm", cfg.Catalog)
}

const (
	defaultAttempts   = 3
	defaultRetryDelay = 500 * time.Millisecond
	defaultRate       = 5
)
