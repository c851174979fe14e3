package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// NewRouter registers every API route on a new mux
func NewRouter(books *BookHandler, sources *SourceHandler, onlineBooks *OnlineHandler) *http.ServeMux {
	mux := http.NewServeMux()
	books.Register(mux)
	sources.Register(mux)
	onlineBooks.Register(mux)
	return mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LogRequests logs one line per request at debug level
func LogRequests(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
