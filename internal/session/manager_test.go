package session

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"voice-console/internal/database"
	"voice-console/internal/gateway"
	"voice-console/internal/models"
	wire "voice-console/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	sessionID string
	eventType string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (f *fakePublisher) Publish(sessionID, eventType string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{sessionID, eventType})
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.eventType)
	}
	return out
}

func newTestManager(t *testing.T) (*Manager, *database.Store, *fakePublisher) {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	store := database.NewStore(db)
	pub := &fakePublisher{}
	return NewManager(store, pub, nil), store, pub
}

func superAdmin() *wire.UserProfile {
	return &wire.UserProfile{ID: "u1", Name: "Ana", Role: wire.RoleSuperAdmin}
}

func TestCreateAndRestore(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()

	s, err := m.Create(ctx, "tok", superAdmin())
	require.NoError(t, err)
	assert.True(t, s.Authenticated())
	require.NoError(t, m.SelectTenant(ctx, s, "T1"))

	fresh := NewManager(store, nil, nil)
	restored, err := fresh.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok", restored.Token())
	assert.Equal(t, "T1", restored.TenantScope())
	assert.Equal(t, wire.RoleSuperAdmin, restored.Profile().Role)
}

func TestLoadUnknownSession(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := m.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.Load(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCreateRequiresTokenAndProfile(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := m.Create(context.Background(), "", superAdmin())
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = m.Create(context.Background(), "tok", nil)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestClearingScopeRemovesKey(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()
	s, err := m.Create(ctx, "tok", superAdmin())
	require.NoError(t, err)

	require.NoError(t, m.SelectTenant(ctx, s, "T1"))
	require.NoError(t, m.SelectTenant(ctx, s, ""))

	_, ok, err := store.Get(ctx, s.ID, models.SettingSelectedTenant)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, s.TenantScope())

	req, _ := http.NewRequest(http.MethodGet, "http://backend/tenants", nil)
	gateway.Sign(req, s)
	_, present := req.Header["X-Tenant-Id"]
	assert.False(t, present)
}

func TestUnauthorizedResponseTearsDownSession(t *testing.T) {
	m, store, pub := newTestManager(t)
	ctx := context.Background()
	s, err := m.Create(ctx, "tok", superAdmin())
	require.NoError(t, err)
	require.NoError(t, m.SelectTenant(ctx, s, "T1"))
	s.Users().Replace([]wire.UserProfile{{ID: "x"}})

	m.ObserveResponse(s, http.MethodGet, "/admin/sub-users", http.StatusForbidden)
	assert.True(t, s.Authenticated(), "403 keeps the session")

	m.ObserveResponse(s, http.MethodGet, "/admin/sub-users", http.StatusUnauthorized)
	assert.Equal(t, Unauthenticated, s.State())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.Profile())
	assert.True(t, s.Users().Store().Disposed())

	kv, err := store.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, kv)

	_, err = m.Load(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNoSession)

	// A second 401 from a request already in flight publishes nothing new.
	m.ObserveResponse(s, http.MethodGet, "/tenants", http.StatusUnauthorized)
	assert.Equal(t, []string{EventSessionInvalidated}, pub.types())
}

func TestLogout(t *testing.T) {
	m, store, pub := newTestManager(t)
	ctx := context.Background()
	s, err := m.Create(ctx, "tok", superAdmin())
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx, s))
	assert.False(t, s.Authenticated())
	assert.Zero(t, m.Active())
	kv, err := store.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, kv)
	assert.Empty(t, pub.types())
}

func TestUserMutationsAreJournaled(t *testing.T) {
	m, store, pub := newTestManager(t)
	ctx := context.Background()
	s, err := m.Create(ctx, "tok", superAdmin())
	require.NoError(t, err)
	s.Users().Replace([]wire.UserProfile{{ID: "sub1", IsActive: true}})

	res, err := s.Users().Apply(ctx, "sub1", "isActive", func(u wire.UserProfile) wire.UserProfile {
		u.IsActive = !u.IsActive
		return u
	}, func(context.Context) error { return errors.New("nope") })
	require.NoError(t, err)
	require.Error(t, <-res)

	logs, err := store.Mutations(ctx, s.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.OutcomeReverted, logs[0].Outcome)
	assert.Equal(t, "nope", logs[0].Error)
	assert.Equal(t, models.OutcomeApplied, logs[1].Outcome)
	assert.Equal(t, []string{EventMutation, EventMutation}, pub.types())

	recent, err := m.Mutations(ctx, s, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, models.OutcomeReverted, recent[0].Outcome)
}

func TestRefreshProfileKeepsEmbeddedToken(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()
	p := superAdmin()
	p.Token = "embedded"
	s, err := m.Create(ctx, "tok", p)
	require.NoError(t, err)

	require.NoError(t, m.RefreshProfile(ctx, s, &wire.UserProfile{ID: "u1", Name: "Ana B", Role: wire.RoleSuperAdmin}))
	assert.Equal(t, "Ana B", s.Profile().Name)
	assert.Equal(t, "embedded", s.Profile().Token)

	fresh := NewManager(store, nil, nil)
	restored, err := fresh.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "embedded", restored.Profile().Token)
}
