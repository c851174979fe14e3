package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/unalkalkan/NovelReader/internal/library"
	"github.com/unalkalkan/NovelReader/internal/online"
	"github.com/unalkalkan/NovelReader/internal/parser"
)

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// statusFor maps service errors to HTTP status codes. Errors that are not
// recognized get fallback.
func statusFor(err error, fallback int) int {
	switch {
	case errors.Is(err, online.ErrBlankKeyword),
		errors.Is(err, online.ErrNoSources),
		errors.Is(err, parser.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, online.ErrSourceNotFound),
		errors.Is(err, online.ErrNoResults),
		errors.Is(err, online.ErrChapterNotFound),
		library.IsNotFound(err):
		return http.StatusNotFound
	}
	return fallback
}

// respondServiceError writes err with the mapped status and logs server side failures
func respondServiceError(w http.ResponseWriter, logger zerolog.Logger, err error, fallback int) {
	status := statusFor(err, fallback)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	}
	respondError(w, err.Error(), status)
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
