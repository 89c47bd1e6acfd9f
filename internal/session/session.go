package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nonncal/ono-tebe-nado/internal/events"
	"github.com/nonncal/ono-tebe-nado/internal/state"
)

// Session is one visitor's slice of the storefront: an emitter and the
// AppState bound to it. The state core is single-threaded, so concurrent
// handlers serialize every read and mutation through the session lock.
type Session struct {
	ID     string
	Events *events.Emitter
	State  *state.AppState

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) Lock() {
	s.mu.Lock()
}

func (s *Session) Unlock() {
	s.mu.Unlock()
}

// Store keeps live sessions keyed by cookie value and expires the idle ones.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a fresh session with its own emitter and AppState.
func (st *Store) Create() *Session {
	em := events.New()
	sess := &Session{
		ID:       uuid.NewString(),
		Events:   em,
		State:    state.New(em),
		lastSeen: st.now(),
	}

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	return sess
}

// Get returns the live session for the id and marks it as seen.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = st.now()
	return sess, true
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops sessions idle for longer than the store TTL, then sleeps until
// the next tick. Run it on its own goroutine; it stops with the context.
func (st *Store) Sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.expire()
		}
	}
}

func (st *Store) expire() {
	st.mu.Lock()
	defer st.mu.Unlock()

	deadline := st.now().Add(-st.ttl)
	for id, sess := range st.sessions {
		if sess.lastSeen.Before(deadline) {
			delete(st.sessions, id)
		}
	}
}
