package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// RecoverPanics turns a panicking handler into a 500 with the same error body
// the order handlers use. http.ErrAbortHandler is passed on to net/http.
func RecoverPanics(fallback zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				Logger(r.Context(), fallback).Error().
					Str("path", r.URL.Path).
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("order handler panicked")

				// a UGL download may already be streaming
				if sw, ok := w.(*statsWriter); ok && sw.wroteHeader {
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal"}` + "\n"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
