// Package store keeps live registration sessions in process memory. Sessions
// are never persisted; a restart drops them.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"enroll/internal/registration/metrics"
	"enroll/internal/registration/models"
	id "enroll/pkg/domain"
	"enroll/pkg/platform/sentinel"
)

// DefaultTTL is how long an untouched session is kept.
const DefaultTTL = 30 * time.Minute

// entry guards one session. The semaphore is held for the whole of an
// Execute call, including any backend round trip made inside it.
type entry struct {
	sem        chan struct{}
	session    *models.Session
	lastAccess time.Time
	closed     bool
}

func newEntry(s *models.Session, now time.Time) *entry {
	return &entry{sem: make(chan struct{}, 1), session: s, lastAccess: now}
}

func (e *entry) lock(ctx context.Context) error {
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *entry) tryLock() bool {
	select {
	case e.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

func (e *entry) unlock() { <-e.sem }

// InMemoryStore serializes work per session and evicts idle sessions.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[id.SessionID]*entry
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Metrics
}

type Option func(*InMemoryStore)

func WithTTL(ttl time.Duration) Option {
	return func(s *InMemoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *InMemoryStore) {
		s.metrics = m
	}
}

func NewInMemory(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		entries: make(map[id.SessionID]*entry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[session.ID]; ok {
		return fmt.Errorf("session %s: %w", session.ID, sentinel.ErrInvalidState)
	}
	s.entries[session.ID] = newEntry(session, s.now())
	s.metrics.SetActiveSessions(len(s.entries))
	return nil
}

// Execute runs fn with exclusive access to the session. Waiting for the
// session honours ctx; fn itself is not interrupted.
func (s *InMemoryStore) Execute(ctx context.Context, sessionID id.SessionID, fn func(*models.Session) error) error {
	s.mu.RLock()
	e, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok {
		return sentinel.ErrNotFound
	}

	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.unlock()

	if e.closed {
		return sentinel.ErrNotFound
	}
	now := s.now()
	if now.Sub(e.lastAccess) > s.ttl {
		s.evictLocked(sessionID, e)
		return sentinel.ErrExpired
	}
	err := fn(e.session)
	e.lastAccess = s.now()
	return err
}

// Delete tears the session down, waiting for any running Execute to finish.
func (s *InMemoryStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	s.mu.RLock()
	e, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok {
		return sentinel.ErrNotFound
	}
	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.unlock()
	if e.closed {
		return sentinel.ErrNotFound
	}
	s.evictLocked(sessionID, e)
	return nil
}

// evictLocked removes a session whose entry lock the caller holds.
func (s *InMemoryStore) evictLocked(sessionID id.SessionID, e *entry) {
	e.closed = true
	e.session.Teardown()
	s.mu.Lock()
	if s.entries[sessionID] == e {
		delete(s.entries, sessionID)
	}
	s.metrics.SetActiveSessions(len(s.entries))
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// RemoveExpiredAt evicts sessions idle past the TTL as of now and returns how
// many were removed. Sessions busy in Execute are left for the next pass.
func (s *InMemoryStore) RemoveExpiredAt(now time.Time) int {
	s.mu.RLock()
	candidates := make(map[id.SessionID]*entry)
	for sid, e := range s.entries {
		candidates[sid] = e
	}
	s.mu.RUnlock()

	removed := 0
	for sid, e := range candidates {
		if !e.tryLock() {
			continue
		}
		if !e.closed && now.Sub(e.lastAccess) > s.ttl {
			s.evictLocked(sid, e)
			removed++
		}
		e.unlock()
	}
	s.metrics.AddEvicted(removed)
	return removed
}

// StartCleanup runs periodic eviction until ctx is cancelled.
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

// Close tears down every session.
func (s *InMemoryStore) Close() {
	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[id.SessionID]*entry)
	s.metrics.SetActiveSessions(0)
	s.mu.Unlock()
	for _, e := range entries {
		e.session.Teardown()
	}
}
