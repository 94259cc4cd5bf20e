package revocation

import (
	"context"
	"log/slog"
	"time"

	"taxsync/pkg/platform/circuit"
)

// Failover wraps a primary list (Redis) with an in-process fallback so a
// cache outage degrades logout instead of breaking every authenticated
// request. Every call still probes the primary, which lets the circuit
// close again once it recovers.
//
// While the circuit is open, revocations are mirrored into the fallback and
// revocation checks consult it. Tokens revoked on another instance during
// the outage are not visible locally until the primary is back; they stay
// bounded by the token TTL either way.
type Failover struct {
	primary  List
	fallback List
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFailover(primary, fallback List, logger *slog.Logger) *Failover {
	if logger == nil {
		logger = slog.Default()
	}
	return &Failover{
		primary:  primary,
		fallback: fallback,
		breaker:  circuit.New("revocation"),
		logger:   logger,
	}
}

func (f *Failover) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	err := f.primary.Revoke(ctx, jti, ttl)
	if err == nil {
		usePrimary, change := f.breaker.RecordSuccess()
		f.logChange(change)
		if usePrimary {
			return nil
		}
		// Still open: mirror so local checks see it.
		return f.fallback.Revoke(ctx, jti, ttl)
	}

	_, change := f.breaker.RecordFailure()
	f.logChange(change)
	f.logger.WarnContext(ctx, "primary revocation list unavailable, recording locally", "error", err)
	return f.fallback.Revoke(ctx, jti, ttl)
}

func (f *Failover) IsRevoked(ctx context.Context, jti string) (bool, error) {
	revoked, err := f.primary.IsRevoked(ctx, jti)
	if err == nil {
		usePrimary, change := f.breaker.RecordSuccess()
		f.logChange(change)
		if usePrimary || revoked {
			return revoked, nil
		}
		// Open circuit: the primary may have missed writes, so a negative
		// answer is only trusted once the local list agrees.
		return f.fallback.IsRevoked(ctx, jti)
	}

	_, change := f.breaker.RecordFailure()
	f.logChange(change)
	f.logger.WarnContext(ctx, "primary revocation list unavailable, checking locally", "error", err)
	return f.fallback.IsRevoked(ctx, jti)
}

func (f *Failover) logChange(change circuit.Change) {
	switch {
	case change.Opened:
		f.logger.Warn("revocation circuit opened, using in-memory fallback", "breaker", f.breaker.Name())
	case change.Closed:
		f.logger.Info("revocation circuit closed, primary recovered", "breaker", f.breaker.Name())
	}
}
