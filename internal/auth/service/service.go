// Package service implements accountant registration and login. Passwords
// are bcrypt hashed, sessions are stateless signed tokens, and logout is a
// revocation-list entry so a stolen token dies with the session.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taxsync/internal/auth/lockout"
	"taxsync/internal/auth/metrics"
	"taxsync/internal/auth/models"
	"taxsync/internal/auth/revocation"
	"taxsync/internal/auth/token"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
	"taxsync/pkg/platform/audit"
	"taxsync/pkg/requestcontext"
)

const minPasswordLength = 10

// errBadCredentials is the single answer for a wrong email or a wrong
// password, so responses do not reveal which one it was.
var errBadCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")

// AccountantStore is the persistence port for accountants.
type AccountantStore interface {
	Create(ctx context.Context, accountant *models.Accountant) error
	FindByID(ctx context.Context, accountantID id.AccountantID) (*models.Accountant, error)
	FindByEmail(ctx context.Context, email string) (*models.Accountant, error)
}

// Service implements registration, login, logout, and token verification.
type Service struct {
	accountants AccountantStore
	issuer      *token.Issuer
	revocations revocation.List
	lockouts    lockout.Store
	logger      *slog.Logger
	auditor     audit.Emitter
	metrics     *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditor(auditor audit.Emitter) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(accountants AccountantStore, issuer *token.Issuer, revocations revocation.List, lockouts lockout.Store, opts ...Option) *Service {
	s := &Service{
		accountants: accountants,
		issuer:      issuer,
		revocations: revocations,
		lockouts:    lockouts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRequest carries the fields for a new accountant account.
type RegisterRequest struct {
	Email    string
	Name     string
	Password string
}

// Session is a freshly issued login session.
type Session struct {
	Accountant *models.Accountant
	Token      string
	Claims     *token.Claims
}

// Register creates an accountant account and logs it in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	if len(req.Password) < minPasswordLength {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 10 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hashing password")
	}

	now := requestcontext.Now(ctx)
	accountant, err := models.NewAccountant(id.NewAccountantID(), req.Email, req.Name, string(hash), now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid registration")
		}
		return nil, err
	}

	if err := s.accountants.Create(ctx, accountant); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "accountant registered",
			"accountant_id", accountant.ID,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return s.issue(ctx, accountant)
}

// Login verifies credentials and issues a token. Repeated failures for one
// email trigger a temporary lock regardless of whether the account exists.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := requestcontext.Now(ctx)

	record, err := s.lockouts.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if record != nil && record.LockedAt(now) {
		return nil, dErrors.New(dErrors.CodeForbidden, "account temporarily locked, try again later")
	}

	accountant, err := s.accountants.FindByEmail(ctx, email)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			// Burn a bcrypt comparison anyway so a missing account is
			// not distinguishable by response time.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, s.failLogin(ctx, email, now)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(accountant.PasswordHash), []byte(password)); err != nil {
		return nil, s.failLogin(ctx, email, now)
	}

	if err := s.lockouts.Clear(ctx, email); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "lockout clear failed", "error", err)
	}

	s.metrics.RecordLogin("success")
	s.emitAudit(ctx, audit.Event{
		AccountantID: accountant.ID,
		Subject:      accountant.ID.String(),
		Action:       string(audit.EventLoginSucceeded),
		Email:        email,
	})
	return s.issue(ctx, accountant)
}

// Logout revokes the presented token for the remainder of its lifetime.
func (s *Service) Logout(ctx context.Context, claims *token.Claims) error {
	ttl := claims.ExpiresAt.Sub(requestcontext.Now(ctx))
	if ttl <= 0 {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.JTI, ttl); err != nil {
		return err
	}
	s.emitAudit(ctx, audit.Event{
		AccountantID: claims.AccountantID,
		Subject:      claims.JTI,
		Action:       string(audit.EventTokenRevoked),
	})
	return nil
}

// Authenticate verifies a raw token and checks the revocation list. Used by
// the HTTP middleware on every authenticated request.
func (s *Service) Authenticate(ctx context.Context, raw string) (*token.Claims, error) {
	claims, err := s.issuer.Verify(raw)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.JTI)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// Get returns the accountant's own profile.
func (s *Service) Get(ctx context.Context, accountantID id.AccountantID) (*models.Accountant, error) {
	return s.accountants.FindByID(ctx, accountantID)
}

func (s *Service) issue(ctx context.Context, accountant *models.Accountant) (*Session, error) {
	signed, claims, err := s.issuer.Issue(accountant, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	return &Session{Accountant: accountant, Token: signed, Claims: claims}, nil
}

// failLogin records the failure, triggers a lock at the threshold, and
// always returns the generic credentials error.
func (s *Service) failLogin(ctx context.Context, email string, now time.Time) error {
	s.metrics.RecordLogin("failure")
	s.emitAudit(ctx, audit.Event{
		Action: string(audit.EventLoginFailed),
		Email:  email,
	})

	record, err := s.lockouts.RecordFailure(ctx, email, now)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "recording login failure failed", "error", err)
		}
		return errBadCredentials
	}

	if record.FailureCount >= lockout.MaxFailures && !record.LockedAt(now) {
		until := now.Add(lockout.LockDuration)
		if err := s.lockouts.Lock(ctx, email, until); err != nil {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "applying lockout failed", "error", err)
			}
			return errBadCredentials
		}
		s.metrics.RecordLockout()
		s.emitAudit(ctx, audit.Event{
			Action: string(audit.EventLockoutTriggered),
			Email:  email,
			Reason: "too many failed login attempts",
		})
		if s.logger != nil {
			s.logger.WarnContext(ctx, "account locked after repeated failures",
				"failure_count", record.FailureCount,
				"locked_until", until,
			)
		}
	}
	return errBadCredentials
}

// dummyHash keeps the failed-lookup path doing the same bcrypt work as the
// found-account path.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", event.Action,
			"error", err,
		)
	}
}
