// Package middleware authenticates requests from the Authorization header
// and stamps the accountant identity into the request context.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"taxsync/internal/auth/token"
	dErrors "taxsync/pkg/domain-errors"
	"taxsync/pkg/platform/httputil"
	"taxsync/pkg/requestcontext"
)

// Authenticator verifies a raw bearer token. Implemented by the auth
// service, which also consults the revocation list.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*token.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// accountant ID, role, and token claims for handlers downstream.
func RequireAuth(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}

			claims, err := authenticator.Authenticate(r.Context(), raw)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}

			ctx := requestcontext.WithAccountantID(r.Context(), claims.AccountantID)
			ctx = requestcontext.WithRole(ctx, claims.Role)
			ctx = withClaims(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type claimsKey struct{}

func withClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// Claims returns the verified token claims, or nil outside an
// authenticated request.
func Claims(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*token.Claims)
	return claims
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
