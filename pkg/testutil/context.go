package testutil

import (
	"net/http"

	id "taxsync/pkg/domain"
	"taxsync/pkg/requestcontext"
)

// WithClientAuth adds an authenticated client to the request context.
// This simulates what the auth middleware would do for client requests.
// If the clientID is not a valid UUID, it will not be added to the context.
func WithClientAuth(req *http.Request, clientID string) *http.Request {
	parsed, err := id.ParseClientID(clientID)
	if err != nil {
		return req
	}
	ctx := requestcontext.WithClientID(req.Context(), parsed)
	ctx = requestcontext.WithRole(ctx, "client")
	return req.WithContext(ctx)
}

// WithAccountantAuth adds an authenticated accountant to the request context.
// Invalid IDs are silently ignored.
func WithAccountantAuth(req *http.Request, accountantID string) *http.Request {
	parsed, err := id.ParseAccountantID(accountantID)
	if err != nil {
		return req
	}
	ctx := requestcontext.WithAccountantID(req.Context(), parsed)
	ctx = requestcontext.WithRole(ctx, "accountant")
	return req.WithContext(ctx)
}

// WithRequestID stamps a correlation ID on the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
