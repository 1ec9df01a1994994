package cache

import (
	"context"
	"sync"
	"time"

	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/internal/utils"
)

type memoryEntry struct {
	session   models.Session
	expiresAt time.Time
}

type memoryLock struct {
	token     string
	expiresAt time.Time
}

// MemorySessionStore is the single-process SessionStore used when Redis is not configured.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	locks    map[string]memoryLock
	ttl      time.Duration
	lockTTL  time.Duration
	now      func() time.Time
}

// NewMemorySessionStore creates a MemorySessionStore.
func NewMemorySessionStore(ttl, lockTTL time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memoryEntry),
		locks:    make(map[string]memoryLock),
		ttl:      ttl,
		lockTTL:  lockTTL,
		now:      time.Now,
	}
}

// Save stores a copy of the session.
func (m *MemorySessionStore) Save(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	cp.Request.ClearSecrets()
	cp.Errors = copyErrors(s.Errors)
	m.sessions[s.ID] = memoryEntry{session: cp, expiresAt: m.now().Add(m.ttl)}
	return nil
}

// Get returns a copy of the session, or utils.ErrSessionNotFound.
func (m *MemorySessionStore) Get(_ context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, utils.ErrSessionNotFound
	}
	if m.now().After(e.expiresAt) {
		delete(m.sessions, id)
		return nil, utils.ErrSessionNotFound
	}
	cp := e.session
	cp.Errors = copyErrors(e.session.Errors)
	return &cp, nil
}

// Delete removes a session and its lock.
func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	delete(m.locks, id)
	return nil
}

// AcquireSubmitLock takes the lock for token unless an unexpired one exists.
func (m *MemorySessionStore) AcquireSubmitLock(_ context.Context, id, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if l, ok := m.locks[id]; ok && now.Before(l.expiresAt) {
		return false, nil
	}
	m.locks[id] = memoryLock{token: token, expiresAt: now.Add(m.lockTTL)}
	return true, nil
}

// ExtendSubmitLock renews an unexpired lock held by token.
func (m *MemorySessionStore) ExtendSubmitLock(_ context.Context, id, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	l, ok := m.locks[id]
	if !ok || l.token != token || !now.Before(l.expiresAt) {
		return false, nil
	}
	l.expiresAt = now.Add(m.lockTTL)
	m.locks[id] = l
	return true, nil
}

// ReleaseSubmitLock drops the lock if token holds it.
func (m *MemorySessionStore) ReleaseSubmitLock(_ context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.locks[id]; ok && l.token == token {
		delete(m.locks, id)
	}
	return nil
}

// SubmitLockTTL returns the configured lock TTL.
func (m *MemorySessionStore) SubmitLockTTL() time.Duration {
	return m.lockTTL
}

// Sweep drops expired sessions and locks. It returns how many sessions were removed.
func (m *MemorySessionStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, e := range m.sessions {
		if now.After(e.expiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}
	for id, l := range m.locks {
		if !now.Before(l.expiresAt) {
			delete(m.locks, id)
		}
	}
	return removed
}

func copyErrors(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
