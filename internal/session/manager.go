package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"voice-console/internal/database"
	"voice-console/internal/gateway"
	"voice-console/internal/models"
	"voice-console/internal/optimistic"
	wire "voice-console/pkg/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoSession means the console session id carries no stored token.
var ErrNoSession = errors.New("session: not authenticated")

// Event types published on the console event stream.
const (
	EventSessionInvalidated = "session_invalidated"
	EventMutation           = "mutation"
)

// Publisher delivers an event to the clients of one console session.
type Publisher interface {
	Publish(sessionID, eventType string, data interface{})
}

// Manager owns every live console session and their durable keys.
type Manager struct {
	store     *database.Store
	publisher Publisher
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(store *database.Store, publisher Publisher, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:     store,
		publisher: publisher,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Create persists a freshly logged-in session and returns it.
func (m *Manager) Create(ctx context.Context, token string, profile *wire.UserProfile) (*Session, error) {
	if token == "" || profile == nil {
		return nil, ErrNoSession
	}
	id := uuid.NewString()

	user, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	if err := m.store.Set(ctx, id, models.SettingToken, token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	if err := m.store.Set(ctx, id, models.SettingUser, string(user)); err != nil {
		return nil, fmt.Errorf("persist profile: %w", err)
	}

	s := m.newSession(id, token, profile, "")
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.logger.Info("session created", zap.String("session_id", id), zap.String("user_id", profile.ID), zap.String("role", string(profile.Role)))
	return s, nil
}

// Load returns the live session for id, restoring it from the store when this
// process has not seen it yet.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNoSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		if !s.Authenticated() {
			return nil, ErrNoSession
		}
		return s, nil
	}

	kv, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	var profile *wire.UserProfile
	if raw := kv[models.SettingUser]; raw != "" {
		var p wire.UserProfile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			m.logger.Warn("stored profile unreadable", zap.String("session_id", id), zap.Error(err))
		} else {
			profile = &p
		}
	}
	token := kv[models.SettingToken]
	if token == "" && (profile == nil || profile.Token == "") {
		return nil, ErrNoSession
	}

	s := m.newSession(id, token, profile, kv[models.SettingSelectedTenant])
	m.sessions[id] = s
	return s, nil
}

// SelectTenant sets the tenant scope; an empty id clears it.
func (m *Manager) SelectTenant(ctx context.Context, s *Session, tenantID string) error {
	var err error
	if tenantID == "" {
		err = m.store.Delete(ctx, s.ID, models.SettingSelectedTenant)
	} else {
		err = m.store.Set(ctx, s.ID, models.SettingSelectedTenant, tenantID)
	}
	if err != nil {
		return fmt.Errorf("persist tenant scope: %w", err)
	}
	s.setScope(tenantID)
	return nil
}

// RefreshProfile stores a profile fetched from the backend, keeping any
// token embedded in the old one.
func (m *Manager) RefreshProfile(ctx context.Context, s *Session, profile *wire.UserProfile) error {
	if profile == nil {
		return nil
	}
	p := *profile
	if old := s.Profile(); old != nil && p.Token == "" {
		p.Token = old.Token
	}
	raw, err := json.Marshal(&p)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, s.ID, models.SettingUser, string(raw)); err != nil {
		return fmt.Errorf("persist profile: %w", err)
	}
	s.setProfile(&p)
	return nil
}

// Logout clears the session's durable keys and tears it down.
func (m *Manager) Logout(ctx context.Context, s *Session) error {
	err := m.store.Clear(ctx, s.ID)
	m.forget(s)
	if s.teardown() {
		m.logger.Info("session logged out", zap.String("session_id", s.ID))
	}
	return err
}

// Invalidate is Logout for a session the backend rejected; the session's
// clients are told to go to the sign-in page.
func (m *Manager) Invalidate(ctx context.Context, s *Session, reason string) {
	if err := m.store.Clear(ctx, s.ID); err != nil {
		m.logger.Error("clearing invalidated session", zap.String("session_id", s.ID), zap.Error(err))
	}
	m.forget(s)
	if !s.teardown() {
		return
	}
	m.logger.Warn("session invalidated", zap.String("session_id", s.ID), zap.String("reason", reason))
	if m.publisher != nil {
		m.publisher.Publish(s.ID, EventSessionInvalidated, map[string]string{"redirect": "/sign-in", "reason": reason})
	}
}

// ObserveResponse implements gateway.Observer: any 401 ends the session that
// made the request.
func (m *Manager) ObserveResponse(creds gateway.Credentials, method, path string, status int) {
	if status != http.StatusUnauthorized {
		return
	}
	s, ok := creds.(*Session)
	if !ok || s == nil {
		return
	}
	m.Invalidate(context.Background(), s, fmt.Sprintf("%s %s returned 401", method, path))
}

// Mutations returns the session's most recent journal entries, newest first.
func (m *Manager) Mutations(ctx context.Context, s *Session, limit int) ([]models.MutationLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return m.store.Mutations(ctx, s.ID, limit)
}

// Active reports the number of live sessions held in memory.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) forget(s *Session) {
	m.mu.Lock()
	if cur, ok := m.sessions[s.ID]; ok && cur == s {
		delete(m.sessions, s.ID)
	}
	m.mu.Unlock()
}

func (m *Manager) newSession(id, token string, profile *wire.UserProfile, scope string) *Session {
	s := &Session{ID: id, state: Authenticated, token: token, profile: profile, scope: scope}
	store := optimistic.NewStore(func(u wire.UserProfile) string { return u.ID })
	s.users = optimistic.NewMutator[wire.UserProfile](store, m.journal(id))
	return s
}

// journal records every settlement of a user mutation and mirrors it to the
// session's event stream.
func (m *Manager) journal(sessionID string) optimistic.Observer[wire.UserProfile] {
	return optimistic.ObserverFunc[wire.UserProfile](func(e optimistic.Event[wire.UserProfile]) {
		entry := models.MutationLog{
			SessionID: sessionID,
			Entity:    "user",
			EntityID:  e.Key,
			Field:     e.Label,
			Outcome:   string(e.Outcome),
		}
		if e.Err != nil {
			entry.Error = e.Err.Error()
		}
		if err := m.store.Journal(context.Background(), entry); err != nil {
			m.logger.Error("journal mutation", zap.String("session_id", sessionID), zap.Error(err))
		}
		if e.Outcome == optimistic.Dropped || m.publisher == nil {
			return
		}
		payload := map[string]interface{}{"entity": "user", "id": e.Key, "field": e.Label, "outcome": e.Outcome, "value": e.Value}
		if e.Err != nil {
			payload["error"] = e.Err.Error()
		}
		m.publisher.Publish(sessionID, EventMutation, payload)
	})
}
