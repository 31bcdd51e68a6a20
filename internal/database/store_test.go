package database

import (
	"context"
	"path/filepath"
	"testing"

	"voice-console/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewStore(db)
}

func TestStoreSetGetDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "sess-1", models.SettingToken, "abc"))
	require.NoError(t, s.Set(ctx, "sess-1", models.SettingToken, "def"))
	require.NoError(t, s.Set(ctx, "sess-2", models.SettingToken, "other"))

	v, ok, err := s.Get(ctx, "sess-1", models.SettingToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "def", v)

	require.NoError(t, s.Delete(ctx, "sess-1", models.SettingToken))
	_, ok, err = s.Get(ctx, "sess-1", models.SettingToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, "sess-1", "never-set"))

	v, ok, err = s.Get(ctx, "sess-2", models.SettingToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "other", v)
}

func TestStoreClearAndSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", models.SettingToken, "1"))
	require.NoError(t, s.Set(ctx, "a", models.SettingSelectedTenant, "t1"))
	require.NoError(t, s.Set(ctx, "b", models.SettingToken, "2"))

	ids, err := s.Sessions(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, s.Clear(ctx, "a"))
	all, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, all)

	ids, err = s.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}

func TestStoreJournal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Journal(ctx, models.MutationLog{SessionID: "a", Entity: "user", EntityID: "u1", Field: "isActive", Outcome: models.OutcomeApplied}))
	require.NoError(t, s.Journal(ctx, models.MutationLog{SessionID: "a", Entity: "user", EntityID: "u1", Field: "isActive", Outcome: models.OutcomeReverted, Error: "boom"}))

	logs, err := s.Mutations(ctx, "a", 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.OutcomeReverted, logs[0].Outcome)
	assert.Equal(t, "boom", logs[0].Error)
}
