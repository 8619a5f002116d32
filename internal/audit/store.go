package audit

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultRetention is how long a session's trail is kept after its last
	// event.
	DefaultRetention = 24 * time.Hour
	// DefaultMaxEventsPerSession caps one trail; the oldest events go first.
	DefaultMaxEventsPerSession = 256
)

type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySession(ctx context.Context, sessionID string) ([]Event, error)
}

type trail struct {
	events   []Event
	lastSeen time.Time
}

// InMemoryStore keeps a bounded trail per session. Trails idle for longer
// than the retention are dropped by RemoveExpiredAt.
type InMemoryStore struct {
	mu        sync.RWMutex
	trails    map[string]*trail
	retention time.Duration
	maxEvents int
	now       func() time.Time
}

type StoreOption func(*InMemoryStore)

func WithRetention(d time.Duration) StoreOption {
	return func(s *InMemoryStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

func WithMaxEventsPerSession(n int) StoreOption {
	return func(s *InMemoryStore) {
		if n > 0 {
			s.maxEvents = n
		}
	}
}

func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewInMemoryStore(opts ...StoreOption) *InMemoryStore {
	s := &InMemoryStore{
		trails:    make(map[string]*trail),
		retention: DefaultRetention,
		maxEvents: DefaultMaxEventsPerSession,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trails[event.SessionID]
	if !ok {
		t = &trail{}
		s.trails[event.SessionID] = t
	}
	t.events = append(t.events, event)
	if over := len(t.events) - s.maxEvents; over > 0 {
		t.events = append([]Event(nil), t.events[over:]...)
	}
	t.lastSeen = s.now()
	return nil
}

func (s *InMemoryStore) ListBySession(_ context.Context, sessionID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trails[sessionID]
	if !ok {
		return []Event{}, nil
	}
	return append([]Event{}, t.events...), nil
}

// RemoveExpiredAt drops every trail whose last event is older than the
// retention and reports how many were dropped.
func (s *InMemoryStore) RemoveExpiredAt(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for sid, t := range s.trails {
		if now.Sub(t.lastSeen) > s.retention {
			delete(s.trails, sid)
			removed++
		}
	}
	return removed
}

// StartCleanup runs periodic pruning until ctx is cancelled.
func (s *InMemoryStore) StartCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RemoveExpiredAt(s.now())
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
