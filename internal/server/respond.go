package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/ademuri/streaming-history-tools/internal/analysis"
	"github.com/ademuri/streaming-history-tools/internal/history"
	"github.com/ademuri/streaming-history-tools/internal/logging"
	"github.com/ademuri/streaming-history-tools/internal/service"
)

// apiError is the body of every error response.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("marshaling response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("writing response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, apiError{Code: code, Message: message})
}

// fail maps err to a status and error code. Client mistakes get 4xx and their
// message; parse failures get 500 naming the cause; anything else is logged
// and hidden.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		perr     *paramError
		parseErr *history.ParseError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.Is(err, service.ErrNoUpload):
		respondError(w, http.StatusBadRequest, "NO_UPLOAD", "a listening history must be uploaded in the \"file\" field")
	case errors.Is(err, service.ErrTooLarge), errors.As(err, &tooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", err.Error())
	case errors.As(err, &perr):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", perr.Error())
	case errors.Is(err, analysis.ErrInvalidLimit):
		respondError(w, http.StatusBadRequest, "INVALID_LIMIT", err.Error())
	case errors.As(err, &parseErr):
		logging.Warn().Err(err).Msg("rejected upload")
		respondError(w, http.StatusInternalServerError, "PARSE_ERROR", "could not parse listening history: "+parseErr.Error())
	case errors.Is(err, context.Canceled):
		logging.Debug().Err(err).Msg("request canceled")
	default:
		logging.Error().Err(err).Str("path", r.URL.Path).Msg("unexpected error")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
