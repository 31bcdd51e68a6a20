package session

import (
	"sync"

	"voice-console/internal/optimistic"
	"voice-console/pkg/models"
)

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Session is one browser's (or CLI's) authenticated console context. It
// satisfies gateway.Credentials.
type Session struct {
	ID string

	mu      sync.RWMutex
	state   State
	token   string
	profile *models.UserProfile
	scope   string

	users *optimistic.Mutator[models.UserProfile]
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Profile returns a copy of the stored profile, or nil.
func (s *Session) Profile() *models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

func (s *Session) TenantScope() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scope
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Authenticated() bool {
	return s.State() == Authenticated
}

// Users is the session's local copy of the administered user list.
func (s *Session) Users() *optimistic.Mutator[models.UserProfile] {
	return s.users
}

func (s *Session) setScope(tenantID string) {
	s.mu.Lock()
	s.scope = tenantID
	s.mu.Unlock()
}

func (s *Session) setProfile(p *models.UserProfile) {
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
}

// teardown reports whether this call moved the session out of Authenticated.
func (s *Session) teardown() bool {
	s.mu.Lock()
	was := s.state
	s.state = Unauthenticated
	s.token = ""
	s.profile = nil
	s.scope = ""
	s.mu.Unlock()

	s.users.Dispose()
	return was == Authenticated
}
