// Package publisher adapts an audit.Store into the Emitter port, optionally
// buffering emits so hot request paths never block on the store.
package publisher

import (
	"context"
	"sync"
	"time"

	id "taxsync/pkg/domain"
	audit "taxsync/pkg/platform/audit"
)

// Publisher emits audit events to a backing store. In sync mode (the
// default) Emit writes through immediately; with an async buffer, Emit
// enqueues and a background goroutine drains. Close flushes the buffer.
type Publisher struct {
	store audit.Store

	inbox  chan audit.Event
	done   chan struct{}
	closed sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given buffer size.
// When the buffer is full, Emit falls back to a synchronous write rather
// than dropping the event.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// NewPublisher constructs a Publisher over the given store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit records an audit event. A zero timestamp is stamped with the current
// time; the category is derived from the action when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	default:
		// Buffer full: degrade to a synchronous write instead of losing
		// the event.
		return p.store.Append(ctx, event)
	}
}

// List returns the stored events for a client when the backing store
// supports reads (the in-memory store does; the outbox does not).
func (p *Publisher) List(ctx context.Context, clientID id.ClientID) ([]audit.Event, error) {
	reader, ok := p.store.(audit.Reader)
	if !ok {
		return nil, nil
	}
	return reader.ListByClient(ctx, clientID)
}

// Close stops the background drain after flushing buffered events.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			<-p.done
		}
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		// Background writes get their own context; the emitting request
		// may be long gone.
		_ = p.store.Append(context.Background(), event)
	}
}
