package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/internal/utils"
)

// ErrCacheMiss is returned when a key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// SessionStore keeps form sessions and the per-session submit lock.
// Sessions are stored without credentials.
type SessionStore interface {
	Save(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error

	// AcquireSubmitLock takes the lock for token. It reports false when
	// another submission holds it.
	AcquireSubmitLock(ctx context.Context, id, token string) (bool, error)
	// ExtendSubmitLock renews the lock TTL. It reports false when token no
	// longer holds the lock.
	ExtendSubmitLock(ctx context.Context, id, token string) (bool, error)
	// ReleaseSubmitLock drops the lock if token still holds it.
	ReleaseSubmitLock(ctx context.Context, id, token string) error
	// SubmitLockTTL is how long a lock lives without being extended.
	SubmitLockTTL() time.Duration
}

// RedisSessionStore stores sessions as JSON in Redis.
// Keys: session:{id} with the session TTL, order:lock:{id} with the lock TTL.
type RedisSessionStore struct {
	redis   *RedisClient
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisSessionStore creates a RedisSessionStore.
func NewRedisSessionStore(redis *RedisClient, ttl, lockTTL time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		redis:   redis,
		ttl:     ttl,
		lockTTL: lockTTL,
	}
}

func (s *RedisSessionStore) keySession(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *RedisSessionStore) keyLock(id string) string {
	return fmt.Sprintf("order:lock:%s", id)
}

// Save writes the session and refreshes its TTL.
func (s *RedisSessionStore) Save(ctx context.Context, sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, s.keySession(sess.ID), string(data), s.ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get loads a session. Expired or unknown ids return utils.ErrSessionNotFound.
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := s.redis.Get(ctx, s.keySession(id))
	if errors.Is(err, ErrCacheMiss) {
		return nil, utils.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete removes a session and any lock it holds.
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.redis.Delete(ctx, s.keySession(id), s.keyLock(id))
}

// AcquireSubmitLock sets order:lock:{id} to token if absent.
func (s *RedisSessionStore) AcquireSubmitLock(ctx context.Context, id, token string) (bool, error) {
	ok, err := s.redis.SetNX(ctx, s.keyLock(id), token, s.lockTTL)
	if err != nil {
		return false, fmt.Errorf("failed to acquire submit lock: %w", err)
	}
	return ok, nil
}

// ExtendSubmitLock resets the lock TTL while it still holds token.
func (s *RedisSessionStore) ExtendSubmitLock(ctx context.Context, id, token string) (bool, error) {
	ok, err := s.redis.CompareAndExpire(ctx, s.keyLock(id), token, s.lockTTL)
	if err != nil {
		return false, fmt.Errorf("failed to extend submit lock: %w", err)
	}
	return ok, nil
}

// ReleaseSubmitLock removes order:lock:{id} if it still holds token.
func (s *RedisSessionStore) ReleaseSubmitLock(ctx context.Context, id, token string) error {
	if _, err := s.redis.CompareAndDelete(ctx, s.keyLock(id), token); err != nil {
		return fmt.Errorf("failed to release submit lock: %w", err)
	}
	return nil
}

// SubmitLockTTL returns the configured lock TTL.
func (s *RedisSessionStore) SubmitLockTTL() time.Duration {
	return s.lockTTL
}
