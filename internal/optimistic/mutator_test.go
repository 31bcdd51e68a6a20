package optimistic

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type account struct {
	ID      string
	Active  bool
	Balance int
}

func toggle(a account) account { a.Active = !a.Active; return a }

func setBalance(n int) func(account) account {
	return func(a account) account { a.Balance = n; return a }
}

type eventLog struct {
	mu     sync.Mutex
	events []Outcome
}

func (l *eventLog) Observe(e Event[account]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e.Outcome)
}

func (l *eventLog) outcomes() []Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Outcome(nil), l.events...)
}

func newAccounts(t *testing.T, obs Observer[account]) *Mutator[account] {
	t.Helper()
	store := NewStore(func(a account) string { return a.ID })
	store.Replace([]account{{ID: "a", Active: true, Balance: 10}, {ID: "b", Active: false, Balance: 5}})
	return NewMutator(store, obs)
}

func get(t *testing.T, m *Mutator[account], key string) account {
	t.Helper()
	v, ok := m.Store().Get(key)
	require.True(t, ok)
	return v
}

func TestFailedCommitRestoresExactly(t *testing.T) {
	log := &eventLog{}
	m := newAccounts(t, log)
	release := make(chan struct{})

	res, err := m.Apply(context.Background(), "a", "isActive", toggle, func(context.Context) error {
		<-release
		return errors.New("backend said no")
	})
	require.NoError(t, err)
	assert.False(t, get(t, m, "a").Active, "update is visible before the commit settles")

	close(release)
	assert.EqualError(t, <-res, "backend said no")
	assert.Equal(t, account{ID: "a", Active: true, Balance: 10}, get(t, m, "a"))
	assert.Equal(t, []Outcome{Applied, Reverted}, log.outcomes())
	assert.Zero(t, m.Pending("a"))
}

func TestSuccessfulCommitKeepsUpdate(t *testing.T) {
	log := &eventLog{}
	m := newAccounts(t, log)

	res, err := m.Apply(context.Background(), "b", "balance", setBalance(42), func(context.Context) error { return nil })
	require.NoError(t, err)
	require.NoError(t, <-res)

	assert.Equal(t, account{ID: "b", Active: false, Balance: 42}, get(t, m, "b"))
	assert.Equal(t, []Outcome{Applied, Confirmed}, log.outcomes())
}

func TestSameKeyCommitsSerializeAndRebase(t *testing.T) {
	m := newAccounts(t, nil)

	var mu sync.Mutex
	var started []string
	record := func(name string) {
		mu.Lock()
		started = append(started, name)
		mu.Unlock()
	}

	firstRelease := make(chan struct{})
	firstStarted := make(chan struct{})
	res1, err := m.Apply(context.Background(), "a", "isActive", toggle, func(context.Context) error {
		record("first")
		close(firstStarted)
		<-firstRelease
		return errors.New("rejected")
	})
	require.NoError(t, err)

	res2, err := m.Apply(context.Background(), "a", "isActive", toggle, func(context.Context) error {
		record("second")
		return nil
	})
	require.NoError(t, err)

	<-firstStarted
	assert.True(t, get(t, m, "a").Active, "two pending toggles cancel out on display")
	assert.Equal(t, 2, m.Pending("a"))

	mu.Lock()
	assert.Equal(t, []string{"first"}, started, "second commit waits for the first")
	mu.Unlock()

	close(firstRelease)
	require.Error(t, <-res1)
	require.NoError(t, <-res2)

	if diff := cmp.Diff([]string{"first", "second"}, started); diff != "" {
		t.Errorf("commit order mismatch (-want +got):\n%s", diff)
	}
	// Only the second toggle survives, applied to the confirmed value.
	assert.False(t, get(t, m, "a").Active)
	assert.Zero(t, m.Pending("a"))
}

func TestDifferentKeysCommitIndependently(t *testing.T) {
	m := newAccounts(t, nil)
	block := make(chan struct{})

	resA, err := m.Apply(context.Background(), "a", "isActive", toggle, func(context.Context) error {
		<-block
		return nil
	})
	require.NoError(t, err)

	resB, err := m.Apply(context.Background(), "b", "isActive", toggle, func(context.Context) error { return nil })
	require.NoError(t, err)
	require.NoError(t, <-resB)
	assert.True(t, get(t, m, "b").Active)

	close(block)
	require.NoError(t, <-resA)
	assert.False(t, get(t, m, "a").Active)
}

func TestCommitSurvivesCallerCancellation(t *testing.T) {
	m := newAccounts(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})

	res, err := m.Apply(ctx, "a", "isActive", toggle, func(ctx context.Context) error {
		<-release
		return ctx.Err()
	})
	require.NoError(t, err)
	cancel()
	close(release)

	require.NoError(t, <-res)
	assert.False(t, get(t, m, "a").Active)
}

func TestSettlementAfterDisposeIsDropped(t *testing.T) {
	log := &eventLog{}
	m := newAccounts(t, log)
	release := make(chan struct{})

	res, err := m.Apply(context.Background(), "a", "isActive", toggle, func(context.Context) error {
		<-release
		return errors.New("late")
	})
	require.NoError(t, err)

	m.Dispose()
	close(release)
	<-res
	m.Wait()

	assert.Empty(t, m.Store().Snapshot())
	assert.Equal(t, []Outcome{Applied, Dropped}, log.outcomes())

	_, err = m.Apply(context.Background(), "a", "isActive", toggle, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrDisposed)
}

func TestReplaceKeepsInFlightKeys(t *testing.T) {
	m := newAccounts(t, nil)
	release := make(chan struct{})

	res, err := m.Apply(context.Background(), "a", "balance", setBalance(99), func(context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, err)

	m.Replace([]account{{ID: "a", Active: true, Balance: 10}, {ID: "b", Active: true, Balance: 7}, {ID: "c"}})
	assert.Equal(t, 99, get(t, m, "a").Balance)
	assert.Equal(t, 7, get(t, m, "b").Balance)
	assert.Equal(t, 3, m.Store().Len())

	close(release)
	require.NoError(t, <-res)
	assert.Equal(t, 99, get(t, m, "a").Balance)
}

func TestSlowObserverDoesNotBlockOtherCalls(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	obs := ObserverFunc[account](func(e Event[account]) {
		if e.Key == "a" && e.Outcome == Confirmed {
			close(entered)
			<-release
		}
	})
	m := newAccounts(t, obs)

	resA, err := m.Apply(context.Background(), "a", "isActive", toggle, func(context.Context) error { return nil })
	require.NoError(t, err)
	<-entered

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Replace([]account{{ID: "a", Active: false, Balance: 10}, {ID: "b", Balance: 6}})
		_ = m.Pending("a")
		res, err := m.Apply(context.Background(), "b", "balance", setBalance(8), func(context.Context) error { return nil })
		if err == nil {
			<-res
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("mutator calls blocked behind a running observer")
	}
	assert.Equal(t, 8, get(t, m, "b").Balance)

	close(release)
	require.NoError(t, <-resA)
}

func TestSameKeyEventsKeepOrderWithSlowObserver(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	obs := ObserverFunc[account](func(e Event[account]) {
		if e.Outcome == Applied {
			return
		}
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		seen = append(seen, e.Label)
		mu.Unlock()
	})
	m := newAccounts(t, obs)

	r1, err := m.Apply(context.Background(), "a", "first", setBalance(1), func(context.Context) error { return nil })
	require.NoError(t, err)
	r2, err := m.Apply(context.Background(), "a", "second", setBalance(2), func(context.Context) error { return nil })
	require.NoError(t, err)
	require.NoError(t, <-r1)
	require.NoError(t, <-r2)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestApplyUnknownKey(t *testing.T) {
	m := newAccounts(t, nil)
	_, err := m.Apply(context.Background(), "zzz", "isActive", toggle, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestStoreKeepsLoadOrder(t *testing.T) {
	s := NewStore(func(a account) string { return a.ID })
	s.Replace([]account{{ID: "z"}, {ID: "a"}, {ID: ""}, {ID: "m"}})

	var ids []string
	for _, a := range s.Snapshot() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"z", "a", "", "m"}, ids)
	assert.False(t, s.Set("nope", account{}))
}
