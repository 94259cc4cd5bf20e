// Package lockout throttles brute-force login attempts per email. After
// MaxFailures consecutive failures the account is locked for LockDuration;
// a successful login clears the record.
package lockout

import (
	"context"
	"time"
)

const (
	// MaxFailures is the consecutive-failure threshold that triggers a
	// lock.
	MaxFailures = 5
	// LockDuration is how long a triggered lock holds.
	LockDuration = 15 * time.Minute
)

// Record is the failure state for one email.
type Record struct {
	Email        string
	FailureCount int
	LockedUntil  *time.Time
	UpdatedAt    time.Time
}

// LockedAt reports whether the record holds an active lock at the given
// time.
func (r *Record) LockedAt(now time.Time) bool {
	return r.LockedUntil != nil && now.Before(*r.LockedUntil)
}

// Store persists lockout records. RecordFailure must be atomic under
// concurrent logins for the same email.
type Store interface {
	Get(ctx context.Context, email string) (*Record, error)
	RecordFailure(ctx context.Context, email string, now time.Time) (*Record, error)
	Lock(ctx context.Context, email string, until time.Time) error
	Clear(ctx context.Context, email string) error
}
