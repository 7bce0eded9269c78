package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/intent"
	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
)

// StorageFactory returns the durable intent storage of a session.
type StorageFactory func(sessionID string) intent.Storage

// Manager owns the live sessions of this process. Guest carts exist only
// here; pending intents live in the storage the factory hands out, so they
// outlive an evicted or restarted session.
type Manager struct {
	deps        Deps
	storage     StorageFactory
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	draining sync.WaitGroup
}

func NewManager(deps Deps, storage StorageFactory, idleTimeout time.Duration) *Manager {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if storage == nil {
		shared := intent.NewMemoryStorage()
		storage = func(id string) intent.Storage { return prefixed{id: id, storage: shared} }
	}
	return &Manager{
		deps:        deps,
		storage:     storage,
		idleTimeout: idleTimeout,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
}

// Create starts a new session with a fresh ID.
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	s := newSession(id, m.deps, m.storage(id), m.now())

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns a live session and marks it as used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "Session not found", nil)
	}
	s.touch(m.now())
	return s, nil
}

// Resume returns the session with id, recreating it when it is no longer
// live. A recreated session starts with an empty guest cart but sees any
// intent recorded under the same ID.
func (m *Manager) Resume(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.OnField(apperrors.ErrValidation, "session_id", "Invalid session id")
	}
	if s, err := m.Get(id); err == nil {
		return s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	s := newSession(id, m.deps, m.storage(id), m.now())
	m.sessions[id] = s
	return s, nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Evict drops sessions idle for longer than the idle timeout and returns
// how many were dropped.
func (m *Manager) Evict() int {
	if m.idleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			m.draining.Add(1)
			go func() {
				defer m.draining.Done()
				s.Wait()
			}()
			n++
		}
	}
	return n
}

// Run evicts idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Evict(); n > 0 {
				m.deps.Logger.Info("evicted idle sessions", zap.Int("count", n), zap.Int("live", m.Len()))
			}
		}
	}
}

// Wait blocks until every session's background work has finished,
// including sessions already evicted.
func (m *Manager) Wait() {
	defer m.draining.Wait()
	m.mu.RLock()
	live := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		live = append(live, s)
	}
	m.mu.RUnlock()
	for _, s := range live {
		s.Wait()
	}
}

// prefixed scopes a shared in-memory storage to one session.
type prefixed struct {
	id      string
	storage intent.Storage
}

func (p prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.storage.Get(ctx, p.id+":"+key)
}

func (p prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.storage.Set(ctx, p.id+":"+key, value)
}

func (p prefixed) Delete(ctx context.Context, key string) error {
	return p.storage.Delete(ctx, p.id+":"+key)
}

func (p prefixed) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	return p.storage.CompareAndDelete(ctx, p.id+":"+key, expected)
}
