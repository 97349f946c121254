package persistence

import (
	"sync"

	"github.com/rpatil/bankflow/pkg/api"
)

// InMemoryStore is a simple, goroutine-safe SessionStore backed by a map.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*api.Session
}

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*api.Session),
	}
}

// Ensure InMemoryStore implements the interface.
var _ SessionStore = (*InMemoryStore)(nil)

func (s *InMemoryStore) SaveSession(sess *api.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *InMemoryStore) UpdateSession(sess *api.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; !ok {
		return ErrSessionNotFound
	}

	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *InMemoryStore) GetSession(id string) (*api.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return sess.Clone(), nil
}

func (s *InMemoryStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}

	delete(s.sessions, id)
	return nil
}

func (s *InMemoryStore) ListSessions(filter SessionFilter) ([]*api.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*api.Session

	for _, sess := range s.sessions {
		if filter.Step != "" && sess.Step != filter.Step {
			continue
		}
		result = append(result, sess.Clone())
	}

	return result, nil
}
