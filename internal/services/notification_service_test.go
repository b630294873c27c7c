package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"places-go/internal/models"
	"places-go/internal/storage"
)

func newNotificationService(db *gorm.DB) NotificationService {
	return NewNotificationService(
		db,
		storage.NewGormNotificationRepository(db),
		storage.NewGormUserRepository(db),
		storage.NewGormCategoryRepository(db),
		storage.NewGormPlaceRepository(db),
	)
}

func createTestCategory(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	category := &models.Category{Name: name}
	require.NoError(t, db.Create(category).Error)
	return category.ID
}

func TestSendContentNotificationFansOut(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotificationService(db)
	ctx := context.Background()

	admin := createTestUser(t, db, "admin@example.com", "Admin", "User")
	alice := createTestUser(t, db, "alice@example.com", "Alice", "Ahmed")
	bob := createTestUser(t, db, "bob@example.com", "Bob", "Brik")
	categoryID := createTestCategory(t, db, "Beaches")

	notification, err := svc.SendContentNotification(ctx, admin, ContentTypeCategory, categoryID)
	require.NoError(t, err)
	assert.Contains(t, notification.Message, "Beaches")
	assert.Equal(t, "category", notification.EntityType)

	// 每个用户（含发送者）各有一条未读扇出记录
	for _, userID := range []uint{admin, alice, bob} {
		list, err := svc.GetUserNotifications(ctx, userID, 20, false)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.False(t, list[0].IsRead)
	}
}

func TestSendContentNotificationSkipsDeletedUsers(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotificationService(db)
	ctx := context.Background()

	admin := createTestUser(t, db, "admin@example.com", "Admin", "User")
	ghost := createTestUser(t, db, "ghost@example.com", "Ghost", "Gone")
	require.NoError(t, db.Delete(&models.User{}, ghost).Error) // 软删除

	categoryID := createTestCategory(t, db, "Museums")
	_, err := svc.SendContentNotification(ctx, admin, ContentTypeCategory, categoryID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.UserNotification{}).Where("user_id = ?", ghost).Count(&count).Error)
	assert.Zero(t, count, "soft-deleted users must not receive notifications")
}

func TestSendContentNotificationValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotificationService(db)
	ctx := context.Background()

	admin := createTestUser(t, db, "admin@example.com", "Admin", "User")

	_, err := svc.SendContentNotification(ctx, admin, ContentType("wilaya"), 1)
	assert.ErrorIs(t, err, ErrUnknownContentType)

	_, err = svc.SendContentNotification(ctx, admin, ContentTypePlace, 4242)
	assert.ErrorIs(t, err, ErrContentNotFound)

	// 校验失败时不能留下任何通知行
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotificationService(db)
	ctx := context.Background()

	admin := createTestUser(t, db, "admin@example.com", "Admin", "User")
	categoryID := createTestCategory(t, db, "Parks")
	notification, err := svc.SendContentNotification(ctx, admin, ContentTypeCategory, categoryID)
	require.NoError(t, err)

	require.NoError(t, svc.MarkAsRead(ctx, admin, notification.ID))

	var row models.UserNotification
	require.NoError(t, db.Where("user_id = ? AND notification_id = ?", admin, notification.ID).First(&row).Error)
	require.True(t, row.IsRead)
	require.NotNil(t, row.ReadAt)
	firstReadAt := *row.ReadAt

	// 再次标记不改变 read_at
	require.NoError(t, svc.MarkAsRead(ctx, admin, notification.ID))
	require.NoError(t, db.Where("user_id = ? AND notification_id = ?", admin, notification.ID).First(&row).Error)
	assert.Equal(t, firstReadAt.Unix(), row.ReadAt.Unix())

	// 已读通知不出现在未读过滤里
	unread, err := svc.GetUserNotifications(ctx, admin, 20, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestMarkAllAsRead(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotificationService(db)
	ctx := context.Background()

	admin := createTestUser(t, db, "admin@example.com", "Admin", "User")
	for _, name := range []string{"One", "Two", "Three"} {
		_, err := svc.SendContentNotification(ctx, admin, ContentTypeCategory, createTestCategory(t, db, name))
		require.NoError(t, err)
	}

	require.NoError(t, svc.MarkAllAsRead(ctx, admin))

	unread, err := svc.GetUserNotifications(ctx, admin, 20, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	all, err := svc.GetUserNotifications(ctx, admin, 20, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDeleteUserNotification(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotificationService(db)
	ctx := context.Background()

	admin := createTestUser(t, db, "admin@example.com", "Admin", "User")
	alice := createTestUser(t, db, "alice@example.com", "Alice", "Ahmed")
	categoryID := createTestCategory(t, db, "Lakes")
	notification, err := svc.SendContentNotification(ctx, admin, ContentTypeCategory, categoryID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUserNotification(ctx, alice, notification.ID))

	// 只删除了 alice 的扇出记录，admin 的还在
	list, err := svc.GetUserNotifications(ctx, alice, 20, false)
	require.NoError(t, err)
	assert.Empty(t, list)
	list, err = svc.GetUserNotifications(ctx, admin, 20, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// 重复删除报 NotFound
	assert.ErrorIs(t, svc.DeleteUserNotification(ctx, alice, notification.ID), ErrNotificationNotFound)
}
