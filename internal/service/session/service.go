// Package session tracks per-browser negotiation sessions. The server
// itself stays stateless per turn; the session ID only gives the
// negotiation provider continuity across requests.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session identifies one visitor's negotiation.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	LastSeen  time.Time `json:"lastSeen"`
}

// Service manages sessions in memory; a demo deployment has no reason to
// persist them.
type Service struct {
	mu       sync.Mutex
	sessions map[string]Session
}

// NewService bootstraps the in-memory session service.
func NewService() *Service {
	return &Service{sessions: make(map[string]Session)}
}

// Ensure returns the session for id, creating a fresh one when the id is
// empty or unknown (expired server restart, cleared cookie).
func (s *Service) Ensure(id string) Session {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if session, ok := s.sessions[id]; ok {
			session.LastSeen = now
			s.sessions[id] = session
			return session
		}
	}

	session := Session{ID: uuid.NewString(), CreatedAt: now, LastSeen: now}
	s.sessions[session.ID] = session
	return session
}

// Count reports the number of live sessions, for the health endpoint.
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
