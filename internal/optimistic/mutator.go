package optimistic

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrDisposed   = errors.New("optimistic: store disposed")
	ErrUnknownKey = errors.New("optimistic: unknown key")
)

type Outcome string

const (
	Applied   Outcome = "applied"
	Confirmed Outcome = "confirmed"
	Reverted  Outcome = "reverted"
	Dropped   Outcome = "dropped"
)

// Event reports one step in the life of a mutation. Value is what the store
// displays for Key after the step.
type Event[V any] struct {
	Key     string
	Label   string
	Outcome Outcome
	Value   V
	Err     error
}

type Observer[V any] interface {
	Observe(Event[V])
}

type ObserverFunc[V any] func(Event[V])

func (f ObserverFunc[V]) Observe(e Event[V]) { f(e) }

// Commit sends a mutation upstream.
type Commit func(ctx context.Context) error

// Mutator applies updates to a Store immediately and commits them upstream in
// the background. Commits for one key run one at a time in submission order.
// Each key keeps its last confirmed value; the displayed value is always the
// confirmed value with the still pending updates folded over it, so a failed
// commit removes only its own update.
type Mutator[V any] struct {
	store    *Store[V]
	observer Observer[V]

	mu    sync.Mutex
	lanes map[string]*lane[V]
	wg    sync.WaitGroup
}

type lane[V any] struct {
	confirmed V
	pending   []*op[V]
	tail      chan struct{}
}

type op[V any] struct {
	label  string
	update func(V) V
	done   chan struct{}
}

func NewMutator[V any](store *Store[V], observer Observer[V]) *Mutator[V] {
	if observer == nil {
		observer = ObserverFunc[V](func(Event[V]) {})
	}
	return &Mutator[V]{store: store, observer: observer, lanes: make(map[string]*lane[V])}
}

func (m *Mutator[V]) Store() *Store[V] { return m.store }

// Apply updates key in the store now and commits it in the background. The
// returned channel yields the commit's error (nil on success) once the
// mutation has settled. Commits run detached from ctx's cancellation.
func (m *Mutator[V]) Apply(ctx context.Context, key, label string, update func(V) V, commit Commit) (<-chan error, error) {
	m.mu.Lock()
	if m.store.Disposed() {
		m.mu.Unlock()
		return nil, ErrDisposed
	}
	cur, ok := m.store.Get(key)
	if !ok {
		m.mu.Unlock()
		return nil, ErrUnknownKey
	}

	ln, ok := m.lanes[key]
	if !ok {
		ln = &lane[V]{confirmed: cur}
		m.lanes[key] = ln
	}
	o := &op[V]{label: label, update: update, done: make(chan struct{})}
	prev := ln.tail
	ln.tail = o.done
	ln.pending = append(ln.pending, o)

	shown := ln.fold()
	m.store.Set(key, shown)
	m.mu.Unlock()
	m.observer.Observe(Event[V]{Key: key, Label: label, Outcome: Applied, Value: shown})

	result := make(chan error, 1)
	commitCtx := context.WithoutCancel(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if prev != nil {
			<-prev
		}
		err := commit(commitCtx)
		m.settle(key, ln, o, err)
		result <- err
		close(result)
	}()
	return result, nil
}

// settle records a finished commit. The observer runs outside the lock but
// before o.done is closed, so events for one key keep their order.
func (m *Mutator[V]) settle(key string, ln *lane[V], o *op[V], err error) {
	defer close(o.done)
	m.observer.Observe(m.resolve(key, ln, o, err))
}

func (m *Mutator[V]) resolve(key string, ln *lane[V], o *op[V], err error) Event[V] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store.Disposed() || m.lanes[key] != ln {
		var zero V
		return Event[V]{Key: key, Label: o.label, Outcome: Dropped, Value: zero, Err: err}
	}

	ln.remove(o)
	outcome := Reverted
	if err == nil {
		ln.confirmed = o.update(ln.confirmed)
		outcome = Confirmed
	}
	shown := ln.fold()
	m.store.Set(key, shown)
	if len(ln.pending) == 0 {
		delete(m.lanes, key)
	}
	return Event[V]{Key: key, Label: o.label, Outcome: outcome, Value: shown, Err: err}
}

// Replace loads fresh server state. Keys with mutations still in flight keep
// their displayed value until those mutations settle.
func (m *Mutator[V]) Replace(items []V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Replace(items)
	for key, ln := range m.lanes {
		m.store.Set(key, ln.fold())
	}
}

// Pending reports how many mutations on key have not settled.
func (m *Mutator[V]) Pending(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ln, ok := m.lanes[key]; ok {
		return len(ln.pending)
	}
	return 0
}

// Dispose tears down the store. Mutations still in flight finish but their
// results are dropped.
func (m *Mutator[V]) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Dispose()
	m.lanes = make(map[string]*lane[V])
}

// Wait blocks until every started commit has settled.
func (m *Mutator[V]) Wait() {
	m.wg.Wait()
}

func (l *lane[V]) fold() V {
	v := l.confirmed
	for _, o := range l.pending {
		v = o.update(v)
	}
	return v
}

func (l *lane[V]) remove(o *op[V]) {
	for i, p := range l.pending {
		if p == o {
			l.pending = append(l.pending[:i], l.pending[i+1:]...)
			return
		}
	}
}
