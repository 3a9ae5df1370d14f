// Package session holds the in-memory table of client detection sessions.
package session

import (
	"sync"

	"github.com/docpulse/docpulse/internal/domain"
)

// Store maps client IDs to their detection session. The map itself is safe
// for concurrent use; each session is mutated only by the single job runner
// active for its client. Sessions live for the process lifetime.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]domain.ClientSession
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]domain.ClientSession)}
}

// Create records a new session for the client with status uploaded. Any
// prior session for the same client is overwritten, last writer wins.
func (s *Store) Create(clientID, sourcePath, filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[clientID] = domain.ClientSession{
		ClientID:   clientID,
		SourcePath: sourcePath,
		Filename:   filename,
		Status:     domain.SessionUploaded,
	}
}

// SetStatus updates the session status. Unknown client IDs are a no-op.
func (s *Store) SetStatus(clientID string, status domain.SessionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[clientID]
	if !ok {
		return
	}
	sess.Status = status
	s.sessions[clientID] = sess
}

// Get returns the session for a client, if one exists.
func (s *Store) Get(clientID string) (domain.ClientSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[clientID]
	return sess, ok
}
