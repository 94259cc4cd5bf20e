// Package requesttime pins one "now" per HTTP request. Everything downstream
// reads the same timestamp, so audit events and domain writes from one
// request never disagree about when it happened.
package requesttime

import (
	"net/http"
	"time"

	"taxsync/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and
// stores it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
