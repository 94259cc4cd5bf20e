package audit

import (
	"context"

	"github.com/google/uuid"

	id "taxsync/pkg/domain"
)

// Store persists audit events. Implementations: the Postgres outbox (the
// production path) and an in-memory store for tests.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Reader lists persisted events. Only the in-memory store implements this
// directly; in production the Kafka consumer materializes events elsewhere.
type Reader interface {
	ListByClient(ctx context.Context, clientID id.ClientID) ([]Event, error)
}

// Emitter is the port domain services depend on to record audit events.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// OutboxEntry is one outbox row awaiting publication. Key is the Kafka
// record key (the aggregate ID) so events for one aggregate stay ordered.
type OutboxEntry struct {
	ID      uuid.UUID
	Key     string
	Payload []byte
}
