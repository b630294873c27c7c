package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestCreateAndVerify(t *testing.T) {
	store, _ := newTestStore(t, 30*time.Minute)
	ctx := context.Background()

	token, err := store.Create(ctx, 42, "10.0.0.1", "test-agent")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := store.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestVerifyUnknownToken(t *testing.T) {
	store, _ := newTestStore(t, 30*time.Minute)

	_, err := store.Verify(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = store.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSlidingExpiration(t *testing.T) {
	store, mr := newTestStore(t, 10*time.Minute)
	ctx := context.Background()

	token, err := store.Create(ctx, 7, "", "")
	require.NoError(t, err)

	// 在窗口内活动两次，每次都应把过期时间推回整个 TTL
	mr.FastForward(8 * time.Minute)
	_, err = store.Verify(ctx, token)
	require.NoError(t, err)

	mr.FastForward(8 * time.Minute)
	userID, err := store.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)

	// 超过窗口后会话失效
	mr.FastForward(11 * time.Minute)
	_, err = store.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestDestroy(t *testing.T) {
	store, _ := newTestStore(t, 30*time.Minute)
	ctx := context.Background()

	token, err := store.Create(ctx, 1, "", "")
	require.NoError(t, err)

	deleted, err := store.Destroy(ctx, token)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = store.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// 再次销毁同一令牌应报告不存在
	deleted, err = store.Destroy(ctx, token)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestTokensAreUnique(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := store.Create(ctx, uint(i), "", "")
		require.NoError(t, err)
		require.False(t, seen[token], "duplicate token issued")
		seen[token] = true
	}
}
