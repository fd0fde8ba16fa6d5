package server

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"golang.org/x/text/language"

	"github.com/ademuri/streaming-history-tools/internal/analysis"
	"github.com/ademuri/streaming-history-tools/internal/history"
	"github.com/ademuri/streaming-history-tools/internal/service"
)

const uploadField = "file"

// The summary lists fewer items than the ranked routes unless asked.
const summaryLimit = 10

// Multipart bodies beyond this are spooled to disk.
const maxUploadMemory = 8 << 20

var locales = language.NewMatcher([]language.Tag{
	language.English,
	language.German,
	language.French,
	language.Spanish,
	language.Italian,
	language.Dutch,
	language.Swedish,
})

// periodQuery answers one ranked question over an optional year/month.
type periodQuery func(ctx context.Context, entries history.Sequence, f analysis.Filter, limit int) (interface{}, error)

// load reads and parses the upload.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (history.Sequence, error) {
	if r.ContentLength > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", service.ErrTooLarge, s.cfg.MaxUploadBytes)
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	err := r.ParseMultipartForm(maxUploadMemory)
	var file multipart.File
	if err == nil {
		file, _, err = r.FormFile(uploadField)
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, service.ErrNoUpload
		}
		return nil, &paramError{fmt.Sprintf("reading upload: %v", err)}
	}
	defer file.Close()

	entries, _, err := s.svc.Load(r.Context(), file)
	return entries, err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	limit, err := limitOr(r, summaryLimit)
	if err != nil {
		fail(w, r, err)
		return
	}
	entries, err := s.load(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	summary, err := s.svc.Summary(entries, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handlePeriod(q periodQuery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.parsePeriod(r)
		if err != nil {
			fail(w, r, err)
			return
		}
		entries, err := s.load(w, r)
		if err != nil {
			fail(w, r, err)
			return
		}
		result, err := q(r.Context(), entries, p.filter(), p.Limit)
		if err != nil {
			fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func (s *Server) topSongs(_ context.Context, entries history.Sequence, f analysis.Filter, limit int) (interface{}, error) {
	return s.svc.TopSongs(entries, f, limit)
}

func (s *Server) topArtists(ctx context.Context, entries history.Sequence, f analysis.Filter, limit int) (interface{}, error) {
	return s.svc.TopArtists(ctx, entries, f, limit)
}

func (s *Server) topAlbums(ctx context.Context, entries history.Sequence, f analysis.Filter, limit int) (interface{}, error) {
	return s.svc.TopAlbums(ctx, entries, f, limit)
}

// weekdays ignores the limit; every day is always returned.
func (s *Server) weekdays(_ context.Context, entries history.Sequence, f analysis.Filter, _ int) (interface{}, error) {
	return s.svc.Weekdays(entries, f), nil
}

func (s *Server) handlePlayedSongs(w http.ResponseWriter, r *http.Request) {
	date, limit, err := s.parseDate(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	entries, err := s.load(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	played, err := s.svc.PlayedOn(entries, date, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, played)
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	entries, err := s.load(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	tag, _ := language.MatchStrings(locales, r.Header.Get("Accept-Language"))
	respondJSON(w, http.StatusOK, s.svc.Explore(entries).Formatted(tag))
}
