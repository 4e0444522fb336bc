package middleware

import (
	"sync"

	"github.com/google/uuid"
)

// MemorySessionStore keeps session tokens in memory. Good enough for
// development and tests; production sessions belong to the auth service.
type MemorySessionStore struct {
	mu     sync.RWMutex
	tokens map[string]int64
}

// NewMemorySessionStore creates an empty session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{tokens: make(map[string]int64)}
}

// Issue creates a new session token for the given user
func (s *MemorySessionStore) Issue(userID int64) string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID

	return token
}

// UserID resolves a token to its user
func (s *MemorySessionStore) UserID(token string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.tokens[token]
	return userID, ok
}

// Revoke invalidates a session token
func (s *MemorySessionStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}
