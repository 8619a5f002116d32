package audit

import (
	"context"
	"errors"
	"time"
)

// ErrQueueFull is returned by an async publisher whose inbox is saturated.
var ErrQueueFull = errors.New("audit queue full")

// Publisher captures structured audit events. It is append-only; events go
// straight to the store, or through an inbox drained by a Worker.
type Publisher struct {
	store Store
	inbox chan<- Event
	now   func() time.Time
}

// NewPublisher writes events synchronously to store.
func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store, now: time.Now}
}

// NewAsyncPublisher enqueues events on inbox without blocking. Reads go to
// store, which the draining Worker fills.
func NewAsyncPublisher(store Store, inbox chan<- Event) *Publisher {
	return &Publisher{store: store, inbox: inbox, now: time.Now}
}

func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = p.now()
	}
	if p.inbox == nil {
		return p.store.Append(ctx, base)
	}
	select {
	case p.inbox <- base:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// ListBySession returns the events recorded for one registration session.
func (p *Publisher) ListBySession(ctx context.Context, sessionID string) ([]Event, error) {
	return p.store.ListBySession(ctx, sessionID)
}
