package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/ademuri/streaming-history-tools/internal/logging"
	"github.com/ademuri/streaming-history-tools/internal/metrics"
)

const (
	SpotifyAPIURL   = "https://api.spotify.com"
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"
)

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string

	// APIURL and TokenURL default to Spotify's public endpoints.
	APIURL   string
	TokenURL string

	// Rate is the maximum searches per second.
	Rate float64

	Attempts   uint
	RetryDelay time.Duration

	// BreakerTimeout is how long the breaker stays open before letting a
	// probe through.
	BreakerTimeout time.Duration
}

// Spotify resolves through the Spotify Web API search endpoint.
type Spotify struct {
	client   *http.Client
	apiURL   string
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[string]
	attempts uint
	delay    time.Duration
}

// StatusError is a non-2xx response from a catalog API.
type StatusError struct {
	Service string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Service, e.Code)
}

func (e *StatusError) retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// NewSpotify returns a resolver that authenticates with the client-credentials
// flow. ctx is used for token requests.
func NewSpotify(ctx context.Context, cfg SpotifyConfig) *Spotify {
	if cfg.APIURL == "" {
		cfg.APIURL = SpotifyAPIURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = SpotifyTokenURL
	}
	if cfg.Rate <= 0 {
		cfg.Rate = defaultRate
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = defaultAttempts
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = time.Minute
	}

	oauth := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	const name = "spotify"
	metrics.CatalogCircuitState.WithLabelValues(name).Set(0)
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CatalogCircuitState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &Spotify{
		client:   oauth.Client(ctx),
		apiURL:   strings.TrimSuffix(cfg.APIURL, "/"),
		limiter:  rate.NewLimiter(rate.Limit(cfg.Rate), 1),
		breaker:  breaker,
		attempts: cfg.Attempts,
		delay:    cfg.RetryDelay,
	}
}

func (s *Spotify) Name() string {
	return "spotify"
}

func (s *Spotify) ResolveArtist(ctx context.Context, name string) (string, error) {
	return s.search(ctx, KindArtist, name)
}

func (s *Spotify) ResolveAlbum(ctx context.Context, album, artist string) (string, error) {
	return s.search(ctx, KindAlbum, "album:"+album+" artist:"+artist)
}

type spotifySearch struct {
	Artists *spotifyPage `json:"artists"`
	Albums  *spotifyPage `json:"albums"`
}

type spotifyPage struct {
	Items []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"items"`
	Total int `json:"total"`
}

func (s *Spotify) search(ctx context.Context, kind, query string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for spotify rate limit: %w", err)
	}

	id, err := s.breaker.Execute(func() (string, error) {
		var id string
		err := retry.Do(
			func() error {
				var err error
				id, err = s.get(ctx, kind, query)
				return err
			},
			retry.Context(ctx),
			retry.Attempts(s.attempts),
			retry.Delay(s.delay),
			retry.LastErrorOnly(true),
			retry.RetryIf(func(err error) bool {
				var serr *StatusError
				if errors.As(err, &serr) && serr.retryable() {
					logging.Debug().Err(serr).Str("query", query).Msg("spotify errored, retrying")
					return true
				}
				return false
			}),
		)
		return id, err
	})
	if err != nil {
		return "", fmt.Errorf("searching spotify for %s %q: %w", kind, query, err)
	}
	return id, nil
}

func (s *Spotify) get(ctx context.Context, kind, query string) (string, error) {
	params := url.Values{
		"q":     {query},
		"type":  {kind},
		"limit": {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/v1/search?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &StatusError{Service: "spotify", Code: resp.StatusCode}
	}

	var result spotifySearch
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding search response: %w", err)
	}

	page := result.Artists
	if kind == KindAlbum {
		page = result.Albums
	}
	if page == nil || page.Total == 0 || len(page.Items) == 0 {
		return "", ErrNotFound
	}
	return page.Items[0].ID, nil
}
