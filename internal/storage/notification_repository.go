package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"places-go/internal/models"
)

// NotificationRepository 定义了通知及其扇出记录的数据操作接口。
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	FanOut(ctx context.Context, notificationID uint, userIDs []uint) error
	GetUserNotifications(ctx context.Context, userID uint, limit int, unreadOnly bool) ([]models.UserNotificationInfo, error)
	MarkAsRead(ctx context.Context, userID, notificationID uint) error
	MarkAllAsRead(ctx context.Context, userID uint) error
	DeleteUserNotification(ctx context.Context, userID, notificationID uint) (int64, error)
}

// gormNotificationRepository 使用 GORM 实现 NotificationRepository。
type gormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GORM-based NotificationRepository.
func NewGormNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db}
}

// CreateNotification 写入一条通知事实。
func (r *gormNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// FanOut inserts one UserNotification row per recipient in a single
// batched insert so a failure leaves no partial fan-out behind.
func (r *gormNotificationRepository) FanOut(ctx context.Context, notificationID uint, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]models.UserNotification, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, models.UserNotification{
			NotificationID: notificationID,
			UserID:         id,
		})
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, 500).Error
}

// GetUserNotifications 返回某用户的通知，最新在前，最多 limit 条。
func (r *gormNotificationRepository) GetUserNotifications(ctx context.Context, userID uint, limit int, unreadOnly bool) ([]models.UserNotificationInfo, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{}).
		Select("notifications.id", "notifications.title", "notifications.message",
			"notifications.entity_type", "notifications.entity_id",
			"notifications.created_at", "user_notifications.is_read").
		Joins("JOIN user_notifications ON notifications.id = user_notifications.notification_id").
		Where("user_notifications.user_id = ?", userID)
	if unreadOnly {
		query = query.Where("user_notifications.is_read = ?", false)
	}

	var notifications []models.UserNotificationInfo
	err := query.Order("notifications.created_at DESC").Limit(limit).Scan(&notifications).Error
	return notifications, err
}

// MarkAsRead 将某条通知对某用户标记为已读。幂等：重复调用或
// 不存在的记录都不报错。
func (r *gormNotificationRepository) MarkAsRead(ctx context.Context, userID, notificationID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.UserNotification{}).
		Where("user_id = ? AND notification_id = ? AND is_read = ?", userID, notificationID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now}).Error
}

// MarkAllAsRead 将某用户的全部未读通知标记为已读。
func (r *gormNotificationRepository) MarkAllAsRead(ctx context.Context, userID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.UserNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now}).Error
}

// DeleteUserNotification 删除某用户的一条扇出记录（通知事实保留）。
func (r *gormNotificationRepository) DeleteUserNotification(ctx context.Context, userID, notificationID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND notification_id = ?", userID, notificationID).
		Delete(&models.UserNotification{})
	return res.RowsAffected, res.Error
}
