package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/internal/utils"
)

func newTestRedisStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := WrapRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionStore(client, 30*time.Minute, 2*time.Minute), mr
}

func testSession() *models.Session {
	return &models.Session{
		ID:     "sess-1",
		Status: models.SessionEditing,
		Request: models.OrderRequest{
			Service:  models.ServiceAirtime,
			Provider: "mtn",
			Category: "regular",
			Amount:   "1000",
			Phone:    "08012345678",
			Credentials: models.Credentials{
				PIN:        "1234",
				CardNumber: "4111111111111111",
			},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestRedisSessionStore_SaveGet(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession()))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "1000", got.Request.Amount)
	assert.Equal(t, models.SessionEditing, got.Status)
	assert.Empty(t, got.Request.Credentials.PIN)

	raw, err := mr.Get("session:sess-1")
	require.NoError(t, err)
	assert.NotContains(t, raw, "1234")
	assert.NotContains(t, raw, "4111111111111111")
	assert.Greater(t, mr.TTL("session:sess-1"), time.Duration(0))
}

func TestRedisSessionStore_Expiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession()))
	mr.FastForward(31 * time.Minute)

	_, err := store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, utils.ErrSessionNotFound)
}

func TestRedisSessionStore_SubmitLock(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	ok, err := store.AcquireSubmitLock(ctx, "sess-1", "owner-a")
	require.NoError(t, err)
	assert.True(t, ok)
	raw, err := mr.Get("order:lock:sess-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-a", raw)

	ok, err = store.AcquireSubmitLock(ctx, "sess-1", "owner-b")
	require.NoError(t, err)
	assert.False(t, ok)

	// releasing with someone else's token leaves the lock in place
	require.NoError(t, store.ReleaseSubmitLock(ctx, "sess-1", "owner-b"))
	assert.True(t, mr.Exists("order:lock:sess-1"))

	require.NoError(t, store.ReleaseSubmitLock(ctx, "sess-1", "owner-a"))
	assert.False(t, mr.Exists("order:lock:sess-1"))

	ok, err = store.AcquireSubmitLock(ctx, "sess-1", "owner-b")
	require.NoError(t, err)
	assert.True(t, ok)

	// a crashed submitter's lock expires
	mr.FastForward(3 * time.Minute)
	ok, err = store.AcquireSubmitLock(ctx, "sess-1", "owner-c")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisSessionStore_ExtendSubmitLock(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()
	assert.Equal(t, 2*time.Minute, store.SubmitLockTTL())

	ok, err := store.AcquireSubmitLock(ctx, "sess-1", "owner-a")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(90 * time.Second)
	ok, err = store.ExtendSubmitLock(ctx, "sess-1", "owner-a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2*time.Minute, mr.TTL("order:lock:sess-1"))

	// past the original TTL, still held thanks to the extension
	mr.FastForward(90 * time.Second)
	ok, err = store.AcquireSubmitLock(ctx, "sess-1", "owner-b")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.ExtendSubmitLock(ctx, "sess-1", "owner-b")
	require.NoError(t, err)
	assert.False(t, ok, "only the owner extends")

	mr.FastForward(time.Minute)
	ok, err = store.ExtendSubmitLock(ctx, "sess-1", "owner-a")
	require.NoError(t, err)
	assert.False(t, ok, "an expired lock cannot be revived")
}

func TestRedisSessionStore_Delete(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession()))
	_, err := store.AcquireSubmitLock(ctx, "sess-1", "owner-a")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "sess-1"))
	assert.False(t, mr.Exists("session:sess-1"))
	assert.False(t, mr.Exists("order:lock:sess-1"))
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore(time.Minute, time.Second)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	s := testSession()
	s.Errors = map[string]string{"phoneNumber": "Phone number is required"}
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, got.Request.Credentials.PIN)
	assert.Equal(t, "1234", s.Request.Credentials.PIN, "caller's copy is untouched")

	// copies do not alias the stored session
	got.Errors["amount"] = "x"
	again, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.NotContains(t, again.Errors, "amount")

	ok, err := store.AcquireSubmitLock(ctx, "sess-1", "owner-a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.AcquireSubmitLock(ctx, "sess-1", "owner-b")
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(2 * time.Second)
	ok, err = store.AcquireSubmitLock(ctx, "sess-1", "owner-b")
	require.NoError(t, err)
	assert.True(t, ok)

	// the first holder's late release must not drop the new holder's lock
	require.NoError(t, store.ReleaseSubmitLock(ctx, "sess-1", "owner-a"))
	ok, err = store.AcquireSubmitLock(ctx, "sess-1", "owner-c")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, store.ReleaseSubmitLock(ctx, "sess-1", "owner-b"))

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, utils.ErrSessionNotFound)
}

func TestMemorySessionStore_ExtendSubmitLock(t *testing.T) {
	store := NewMemorySessionStore(time.Minute, time.Second)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := store.AcquireSubmitLock(ctx, "sess-1", "owner-a")
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(800 * time.Millisecond)
	ok, err = store.ExtendSubmitLock(ctx, "sess-1", "owner-a")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(800 * time.Millisecond)
	ok, err = store.AcquireSubmitLock(ctx, "sess-1", "owner-b")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.ExtendSubmitLock(ctx, "sess-1", "owner-b")
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(2 * time.Second)
	ok, err = store.ExtendSubmitLock(ctx, "sess-1", "owner-a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemorySessionStore_Sweep(t *testing.T) {
	store := NewMemorySessionStore(time.Minute, time.Second)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession()))
	other := testSession()
	other.ID = "sess-2"
	require.NoError(t, store.Save(ctx, other))

	assert.Equal(t, 0, store.Sweep())
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, store.Sweep())
}
