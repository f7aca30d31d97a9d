package service

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/guttosm/compliance-track/internal/metrics"
	"github.com/guttosm/compliance-track/internal/service/cache"
)

const sessionCacheName = "sessions"

// SessionStore keeps calculation sessions in memory. Sessions are never persisted; they expire
// after the configured TTL of inactivity or are evicted least-recently-used first.
type SessionStore interface {
	Create() (*CalculationSession, error)
	Get(id string) (*CalculationSession, error)
	Delete(id string)
	Len() int
	Stop()
}

// MemorySessionStore implements SessionStore on top of a sliding expiry cache.
type MemorySessionStore struct {
	sessions  *cache.Store[*CalculationSession]
	estimator MigrationEstimator
}

// NewMemorySessionStore creates a session store holding up to maxSessions for ttl each.
func NewMemorySessionStore(maxSessions int, ttl time.Duration, estimator MigrationEstimator) *MemorySessionStore {
	if maxSessions <= 0 {
		maxSessions = 10000
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &MemorySessionStore{
		sessions: cache.New[*CalculationSession](cache.Options{
			Name:     sessionCacheName,
			Capacity: maxSessions,
			TTL:      ttl,
			Sliding:  true,
		}),
		estimator: estimator,
	}
}

// Create starts a new session with a ULID identifier.
func (s *MemorySessionStore) Create() (*CalculationSession, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	session := NewCalculationSession(id, s.estimator)
	s.sessions.Set(id, session)
	metrics.SetActiveSessions(s.sessions.Len())
	return session, nil
}

// Get returns the session and refreshes its expiry.
func (s *MemorySessionStore) Get(id string) (*CalculationSession, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// Delete discards a session.
func (s *MemorySessionStore) Delete(id string) {
	s.sessions.Invalidate(id)
	metrics.SetActiveSessions(s.sessions.Len())
}

// Len returns the number of sessions currently held.
func (s *MemorySessionStore) Len() int {
	return s.sessions.Len()
}

// Stop ends the expiry sweeper.
func (s *MemorySessionStore) Stop() {
	s.sessions.Stop()
}

func newSessionID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
