// Package token issues and verifies the signed access tokens that carry the
// accountant identity between requests.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"taxsync/internal/auth/models"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
)

const issuerName = "taxsync"

// Claims is the decoded content of a verified access token.
type Claims struct {
	AccountantID id.AccountantID
	Role         string
	JTI          string
	ExpiresAt    time.Time
}

// Issuer signs and verifies HS256 access tokens.
type Issuer struct {
	signingKey []byte
	ttl        time.Duration
}

// NewIssuer constructs an Issuer. The TTL bounds how long issued tokens
// stay valid and doubles as the revocation-list entry TTL.
func NewIssuer(signingKey string, ttl time.Duration) *Issuer {
	return &Issuer{signingKey: []byte(signingKey), ttl: ttl}
}

// TTL reports the configured token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs an access token for the accountant. now comes from the
// request context so the expiry lines up with the rest of the request.
func (i *Issuer) Issue(accountant *models.Accountant, now time.Time) (string, *Claims, error) {
	claims := &Claims{
		AccountantID: accountant.ID,
		Role:         models.RoleAccountant,
		JTI:          uuid.NewString(),
		ExpiresAt:    now.Add(i.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuerName,
		Subject:   accountant.ID.String(),
		ID:        claims.JTI,
		Audience:  jwt.ClaimStrings{claims.Role},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
	})

	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "signing token")
	}
	return signed, claims, nil
}

// Verify parses and validates a raw token string. Expired, malformed, and
// wrongly signed tokens all surface as unauthorized.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.signingKey, nil
	}, jwt.WithIssuer(issuerName), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token")
	}

	registered, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token")
	}

	accountantID, err := id.ParseAccountantID(registered.Subject)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token")
	}

	role := models.RoleAccountant
	if len(registered.Audience) > 0 {
		role = registered.Audience[0]
	}

	claims := &Claims{
		AccountantID: accountantID,
		Role:         role,
		JTI:          registered.ID,
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}
