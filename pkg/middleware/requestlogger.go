package middleware

import (
	"log/slog"
	"net/http"

	"github.com/giovannicg/INMEDT/pkg/logger"
)

// RequestLogger puts a request-scoped logger into the context, tagged with
// correlation_id, user_id, trace_id, and span_id. Handlers pull it back out
// with logger.FromContext.
//
// Mount it after RequestLogging, which sets the correlation id, and after
// Tracing, which opens the span those ids come from.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// The auth middleware puts the user id in the context; the
			// X-User-ID header covers routes that skip auth.
			userID := UserIDFromContext(ctx)
			if userID == "" {
				userID = r.Header.Get("X-User-ID")
			}
			if userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
