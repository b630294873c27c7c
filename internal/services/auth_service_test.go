package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"places-go/internal/session"
	"places-go/internal/storage"
)

func newAuthService(t *testing.T, db *gorm.DB) AuthService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := session.NewRedisStore(client, 30*time.Minute)
	return NewAuthService(storage.NewGormUserRepository(db), store)
}

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", "s3cret", "Alice", "Ahmed")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "s3cret", user.PasswordHash, "password must be hashed")

	// 邮箱唯一
	_, err = svc.Register(ctx, "alice@example.com", "other", "Alia", "Amrani")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "s3cret", "Alice", "Ahmed")
	require.NoError(t, err)

	sessionID, user, err := svc.Login(ctx, "alice@example.com", "s3cret", "10.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "s3cret", "", "")
	assert.ErrorIs(t, err, ErrEmailNotRegistered)
}

func TestLogout(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "s3cret", "Alice", "Ahmed")
	require.NoError(t, err)
	sessionID, _, err := svc.Login(ctx, "alice@example.com", "s3cret", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sessionID))

	// 已销毁的会话再登出报无效
	assert.ErrorIs(t, svc.Logout(ctx, sessionID), session.ErrInvalidSession)
}
