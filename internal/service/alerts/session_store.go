package alerts

import (
	"sync"
	"time"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
	"github.com/mamadbah2/harvestguard/internal/service/advisory"
)

// SessionStore keeps one suppression session per farmer.
type SessionStore struct {
	sessions map[string]advisory.Session
	mu       sync.RWMutex
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]advisory.Session),
	}
}

// Get returns the farmer's session, or a fresh one if none was started.
func (s *SessionStore) Get(farmerID string, now time.Time) advisory.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[farmerID]; ok {
		return sess
	}
	return advisory.NewSession(farmerID, now)
}

// Start replaces any existing session, clearing suppression.
func (s *SessionStore) Start(farmerID string, now time.Time) advisory.Session {
	sess := advisory.NewSession(farmerID, now)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[farmerID] = sess
	return sess
}

// Observe applies an advisory to the farmer's session atomically.
func (s *SessionStore) Observe(farmerID string, adv models.Advisory, now time.Time) *models.AlertEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[farmerID]
	if !ok {
		sess = advisory.NewSession(farmerID, now)
	}
	next, event := advisory.Decide(sess, adv, now)
	s.sessions[farmerID] = next
	return event
}

// Clear removes a farmer's session.
func (s *SessionStore) Clear(farmerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, farmerID)
}
