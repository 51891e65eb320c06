package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const HeaderRequestID = "X-Request-ID"

type orderCtxKey struct{}

// OrderContext tags each order request with an id, taken from the caller
// when present, and stores a logger carrying that id in the request context.
func OrderContext(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, id)

			reqLog := base.With().Str("request_id", id).Logger()
			ctx := context.WithValue(r.Context(), orderCtxKey{}, id)
			ctx = reqLog.WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(orderCtxKey{}).(string)
	return id
}

// Logger returns the request logger, or fallback outside OrderContext.
func Logger(ctx context.Context, fallback zerolog.Logger) *zerolog.Logger {
	if RequestID(ctx) == "" {
		return &fallback
	}
	return zerolog.Ctx(ctx)
}
