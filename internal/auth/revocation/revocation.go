// Package revocation tracks logged-out tokens until they would have expired
// anyway. Keys carry a TTL matching the token lifetime, so the list never
// grows beyond the set of live-but-revoked tokens.
package revocation

import (
	"context"
	"time"
)

// List is the token revocation port. Implementations must treat a missing
// key as "not revoked".
type List interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
