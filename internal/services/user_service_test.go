package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"places-go/internal/storage"
)

func TestUpdateUserProfilePartial(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(storage.NewGormUserRepository(db))
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com", "Alice", "Ahmed")

	bio := "mountains and coffee"
	user, err := svc.UpdateUserProfile(ctx, alice, storage.UserProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "mountains and coffee", user.Bio)
	assert.Equal(t, "Alice", user.FirstName, "absent fields stay untouched")

	// 空更新被拒绝
	_, err = svc.UpdateUserProfile(ctx, alice, storage.UserProfileUpdate{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)

	// 不存在的用户
	_, err = svc.UpdateUserProfile(ctx, 9999, storage.UserProfileUpdate{Bio: &bio})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(storage.NewGormUserRepository(db))
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com", "Alice", "Ahmed")

	user, err := svc.GetUserProfile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.GetUserProfile(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSearchUsersByName(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(storage.NewGormUserRepository(db))
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com", "Alice", "Ahmed")
	createTestUser(t, db, "bob@example.com", "Bob", "Brik")
	createTestUser(t, db, "ali@example.com", "Ali", "Cherif")

	// 大小写不敏感的子串匹配，排除检索者本人
	users, total, err := svc.SearchUsers(ctx, alice, "ali", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "Ali", users[0].FirstName)

	// 空查询返回除自己外的所有人
	users, total, err = svc.SearchUsers(ctx, alice, "", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)

	// 分页
	users, _, err = svc.SearchUsers(ctx, alice, "", 2, 1)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
