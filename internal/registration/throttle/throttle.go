// Package throttle limits how often OTP codes can be requested for one user
// using a fixed window counter.
package throttle

import (
	"context"
	"sync"
	"time"
)

// Defaults for the OTP request window.
const (
	DefaultLimit  = 5
	DefaultWindow = 15 * time.Minute
)

// Policy is the number of requests allowed per window.
type Policy struct {
	Limit  int
	Window time.Duration
}

func (p Policy) normalized() Policy {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Window <= 0 {
		p.Window = DefaultWindow
	}
	return p
}

type window struct {
	count   int
	resetAt time.Time
}

// InMemory is a process-local fixed window throttle.
type InMemory struct {
	mu      sync.Mutex
	policy  Policy
	windows map[string]*window
	now     func() time.Time
}

func NewInMemory(policy Policy) *InMemory {
	return &InMemory{
		policy:  policy.normalized(),
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow counts one request for key and reports whether it fits the window.
func (t *InMemory) Allow(_ context.Context, key string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	w, ok := t.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(t.policy.Window)}
		t.windows[key] = w
	}
	w.count++
	return w.count <= t.policy.Limit, nil
}

// RemoveExpiredAt drops windows that have closed as of now.
func (t *InMemory) RemoveExpiredAt(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for key, w := range t.windows {
		if !now.Before(w.resetAt) {
			delete(t.windows, key)
			removed++
		}
	}
	return removed
}

// StartCleanup drops closed windows every interval until ctx is cancelled.
func (t *InMemory) StartCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.RemoveExpiredAt(t.now())
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
