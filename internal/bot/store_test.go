package bot

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(time.Minute)
	t.Cleanup(store.Close)

	_, err := store.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNoSession)

	want := Session{State: StateAwaitingGoalTitle, CategoryID: 4}
	require.NoError(t, store.Save(ctx, 1, want))

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Save(ctx, 2, want))
	require.NoError(t, store.Delete(ctx, 2))
	require.NoError(t, store.Delete(ctx, 2))
	_, err = store.Get(ctx, 2)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(50 * time.Millisecond)
	t.Cleanup(store.Close)

	require.NoError(t, store.Save(ctx, 1, Session{State: StateAwaitingGoalTitle, CategoryID: 4}))
	time.Sleep(100 * time.Millisecond)

	_, err := store.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNoSession, "session expires after its TTL")
}

func TestMemorySessionStore_EvictsAbandonedChats(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(50 * time.Millisecond)
	t.Cleanup(store.Close)

	for chatID := int64(1); chatID <= 100; chatID++ {
		require.NoError(t, store.Save(ctx, chatID, Session{State: StateAwaitingCategorySelection}))
	}
	require.Equal(t, 100, store.Len())

	// No chat ever comes back, so only the background loop can free them.
	assert.Eventually(t, func() bool { return store.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func setupRedisStore(t *testing.T, ttl time.Duration) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSessionStore(client, ttl), mr
}

func TestRedisSessionStore(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedisStore(t, 30*time.Minute)

	_, err := store.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNoSession)

	want := Session{State: StateAwaitingCategorySelection}
	require.NoError(t, store.Save(ctx, 42, want))
	assert.Equal(t, 30*time.Minute, mr.TTL("bot:session:42"))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Delete(ctx, 42))
	_, err = store.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRedisSessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedisStore(t, time.Minute)

	require.NoError(t, store.Save(ctx, 7, Session{State: StateAwaitingGoalTitle, CategoryID: 3}))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, 7)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRedisSessionStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedisStore(t, time.Minute)
	mr.Close()

	_, err := store.Get(ctx, 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
	assert.Error(t, store.Save(ctx, 7, Session{State: StateAwaitingGoalTitle}))
}
