// Package session keeps per-visitor dashboard state between requests.
//
// A session holds only what must survive an interaction: the uploaded
// table and the selected sentiment. Everything else is recomputed on each
// render. Sessions expire after an idle TTL and are swept by a janitor.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seenimoa/sentidash/internal/dataset"
	"github.com/seenimoa/sentidash/internal/infra"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session: not found")

// State is the persisted part of a session.
type State struct {
	Table     *dataset.Table
	FileName  string
	Selection string
	UpdatedAt time.Time
}

// HasData reports whether a table has been uploaded.
func (s State) HasData() bool { return s.Table != nil }

// Store maps session ids to state.
type Store struct {
	cache  *infra.Cache[string, State]
	sweep  time.Duration
	stop   chan struct{}
	done   sync.WaitGroup
	once   sync.Once
	onDrop func(id string)
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	clock  func() time.Time
	onDrop func(id string)
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) { o.clock = now }
}

// WithExpiryHook registers a callback for sessions removed by the janitor.
func WithExpiryHook(fn func(id string)) Option {
	return func(o *storeOptions) { o.onDrop = fn }
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
// A sweep interval of zero disables the background janitor.
func NewStore(ttl, sweep time.Duration, opts ...Option) *Store {
	var o storeOptions
	for _, fn := range opts {
		fn(&o)
	}

	s := &Store{sweep: sweep, stop: make(chan struct{}), onDrop: o.onDrop}
	cacheOpts := []infra.CacheOption[string, State]{
		infra.WithSliding[string, State](),
		infra.WithEvictHook(func(id string, _ State) {
			if s.onDrop != nil {
				s.onDrop(id)
			}
		}),
	}
	if o.clock != nil {
		cacheOpts = append(cacheOpts, infra.WithClock[string, State](o.clock))
	}
	s.cache = infra.NewCache(ttl, cacheOpts...)

	if sweep > 0 {
		s.done.Add(1)
		go s.janitor()
	}
	return s
}

// Close stops the janitor. It is safe to call more than once.
func (s *Store) Close() {
	s.once.Do(func() { close(s.stop) })
	s.done.Wait()
}

// Create starts an empty session and returns its id.
func (s *Store) Create() string {
	id := uuid.NewString()
	s.cache.Set(id, State{UpdatedAt: time.Now()})
	return id
}

// Get returns the session state and refreshes its idle timer.
func (s *Store) Get(id string) (State, error) {
	st, ok := s.cache.Get(id)
	if !ok {
		return State{}, ErrNotFound
	}
	return st, nil
}

// Load replaces the session's table and resets the selection, since the
// previous label may not exist in the new data.
func (s *Store) Load(id string, table *dataset.Table, fileName string) error {
	return s.update(id, func(st State) State {
		st.Table = table
		st.FileName = fileName
		st.Selection = ""
		return st
	})
}

// Select stores the chosen sentiment label. check, when set, runs against
// the table held at the moment of the write; an error from it leaves the
// session unchanged and is returned.
func (s *Store) Select(id, label string, check func(*dataset.Table) error) error {
	return s.apply(id, func(st State) (State, error) {
		if check != nil {
			if err := check(st.Table); err != nil {
				return st, err
			}
		}
		st.Selection = label
		return st, nil
	})
}

// Reset clears the session back to the no-upload state.
func (s *Store) Reset(id string) error {
	return s.update(id, func(State) State { return State{} })
}

// Delete drops a session.
func (s *Store) Delete(id string) { s.cache.Invalidate(id) }

// Len returns the number of tracked sessions.
func (s *Store) Len() int { return s.cache.Len() }

// Sweep removes expired sessions and returns how many were dropped.
func (s *Store) Sweep() int { return s.cache.Cleanup() }

func (s *Store) update(id string, fn func(State) State) error {
	return s.apply(id, func(st State) (State, error) { return fn(st), nil })
}

// apply runs fn under the cache lock. On error the previous state is kept.
func (s *Store) apply(id string, fn func(State) (State, error)) error {
	var fnErr error
	ok := s.cache.Update(id, func(st State) State {
		next, err := fn(st)
		if err != nil {
			fnErr = err
			return st
		}
		next.UpdatedAt = time.Now()
		return next
	})
	if !ok {
		return ErrNotFound
	}
	return fnErr
}

func (s *Store) janitor() {
	defer s.done.Done()
	ticker := time.NewTicker(s.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
