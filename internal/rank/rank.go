// Package rank answers permission and chat-prefix questions for player
// identities. The host normally backs this with its own rank system; the
// static implementation covers standalone runs and tests.
package rank

import (
	"sync"

	"github.com/google/uuid"
)

// PermAdmin gates every arena mutation and match control command.
const PermAdmin = "paintball.admin"

// Service resolves permissions and display prefixes for players.
type Service interface {
	HasPermission(id uuid.UUID, perm string) bool
	Prefix(id uuid.UUID) string
}

// StaticService is a fixed in-memory rank table.
type StaticService struct {
	mu       sync.RWMutex
	admins   map[uuid.UUID]bool
	prefixes map[uuid.UUID]string
}

// NewStaticService creates an empty rank table.
func NewStaticService() *StaticService {
	return &StaticService{
		admins:   make(map[uuid.UUID]bool),
		prefixes: make(map[uuid.UUID]string),
	}
}

// Grant marks the player as admin.
func (s *StaticService) Grant(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[id] = true
}

// Revoke strips the player's admin rank.
func (s *StaticService) Revoke(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.admins, id)
}

// SetPrefix sets the player's chat prefix.
func (s *StaticService) SetPrefix(id uuid.UUID, prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefixes[id] = prefix
}

// HasPermission reports whether the player holds the permission. Admins
// hold everything.
func (s *StaticService) HasPermission(id uuid.UUID, perm string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admins[id]
}

// Prefix returns the player's chat prefix, empty when none is set.
func (s *StaticService) Prefix(id uuid.UUID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefixes[id]
}
