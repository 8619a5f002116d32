package audit

import (
	"context"
	"errors"
)

// Worker moves queued events from an async Publisher's inbox into the store.
type Worker struct {
	store Store
	inbox <-chan Event
}

func NewWorker(store Store, inbox <-chan Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

// Run appends events until the inbox is closed or ctx is cancelled. On
// cancellation, events already queued are flushed before returning.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return errors.Join(ctx.Err(), w.flush())
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) flush() error {
	for {
		select {
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.store.Append(context.Background(), event); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}
