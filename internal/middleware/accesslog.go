package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type statsWriter struct {
	http.ResponseWriter
	status      int
	bytesOut    int
	wroteHeader bool
}

func (sw *statsWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statsWriter) Write(b []byte) (int, error) {
	sw.wroteHeader = true
	n, err := sw.ResponseWriter.Write(b)
	sw.bytesOut += n
	return n, err
}

// AccessLog writes one line per request once the response is done. Server
// errors are logged at warn level.
func AccessLog(fallback zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statsWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			log := Logger(r.Context(), fallback)
			ev := log.Info()
			if sw.status >= http.StatusInternalServerError {
				ev = log.Warn()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.status).
				Int64("bytes_in", r.ContentLength).
				Int("bytes_out", sw.bytesOut).
				Str("content_type", sw.Header().Get("Content-Type")).
				Dur("elapsed", time.Since(start)).
				Msg("request served")
		})
	}
}
