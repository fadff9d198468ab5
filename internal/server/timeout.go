package server

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware puts a deadline on each conversation turn. A scripted
// exchange answers in well under the window; anything still running when it
// closes sees its request context cancelled. Cancellation is cooperative:
// handlers observe ctx.Done(), nothing is forcibly stopped.
func TimeoutMiddleware(limit time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), limit)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
