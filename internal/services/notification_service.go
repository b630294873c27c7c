package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"places-go/internal/logger"
	"places-go/internal/models"
	"places-go/internal/storage"
)

var (
	ErrUnknownContentType   = errors.New("unknown content type")
	ErrContentNotFound      = errors.New("referenced content not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

// ContentType 是广播通知可引用的内容种类，封闭集合。
type ContentType string

const (
	ContentTypeCategory ContentType = "category"
	ContentTypePlace    ContentType = "place"
)

// NotificationService 拥有广播通知与每用户扇出记录。
// 扇出与通知创建同一事务：要么全部活跃用户收到，要么无人收到。
type NotificationService interface {
	SendContentNotification(ctx context.Context, senderID uint, contentType ContentType, contentID uint) (*models.Notification, error)
	GetUserNotifications(ctx context.Context, userID uint, limit int, unreadOnly bool) ([]models.UserNotificationInfo, error)
	MarkAsRead(ctx context.Context, userID, notificationID uint) error
	MarkAllAsRead(ctx context.Context, userID uint) error
	DeleteUserNotification(ctx context.Context, userID, notificationID uint) error
}

// notificationService 是 NotificationService 的实现。
type notificationService struct {
	db               *gorm.DB
	notificationRepo storage.NotificationRepository
	userRepo         storage.UserRepository
	categoryRepo     storage.CategoryRepository
	placeRepo        storage.PlaceRepository
}

// NewNotificationService 创建一个新的 NotificationService 实例。
func NewNotificationService(
	db *gorm.DB,
	notificationRepo storage.NotificationRepository,
	userRepo storage.UserRepository,
	categoryRepo storage.CategoryRepository,
	placeRepo storage.PlaceRepository,
) NotificationService {
	return &notificationService{
		db:               db,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		categoryRepo:     categoryRepo,
		placeRepo:        placeRepo,
	}
}

// SendContentNotification announces new content to every active user.
// The content type is a closed set; anything else is rejected before
// any write. Notification insert and fan-out share one transaction.
func (s *notificationService) SendContentNotification(ctx context.Context, senderID uint, contentType ContentType, contentID uint) (*models.Notification, error) {
	var contentName string
	var err error
	switch contentType {
	case ContentTypeCategory:
		contentName, err = s.categoryRepo.GetName(ctx, contentID)
	case ContentTypePlace:
		contentName, err = s.placeRepo.GetName(ctx, contentID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, contentType)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s %d", ErrContentNotFound, contentType, contentID)
		}
		return nil, fmt.Errorf("resolve %s %d: %w", contentType, contentID, err)
	}

	var created *models.Notification
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txNotificationRepo := storage.NewGormNotificationRepository(tx)
		txUserRepo := storage.NewGormUserRepository(tx)

		notification := &models.Notification{
			Title:      fmt.Sprintf("New %s available", contentType),
			Message:    fmt.Sprintf("Check out %s", contentName),
			EntityType: string(contentType),
			EntityID:   contentID,
			CreatedBy:  senderID,
		}
		if err := txNotificationRepo.CreateNotification(ctx, notification); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}

		// 软删除用户不在收件人之列
		userIDs, err := txUserRepo.GetActiveUserIDs(ctx)
		if err != nil {
			return fmt.Errorf("list recipients: %w", err)
		}
		if err := txNotificationRepo.FanOut(ctx, notification.ID, userIDs); err != nil {
			return fmt.Errorf("fan out notification: %w", err)
		}

		created = notification
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	logger.L().Infow("notification sent", "notification", created.ID, "type", contentType, "content", contentID)
	return created, nil
}

// GetUserNotifications 返回该用户的通知列表（可仅未读，可限量）。
func (s *notificationService) GetUserNotifications(ctx context.Context, userID uint, limit int, unreadOnly bool) ([]models.UserNotificationInfo, error) {
	return s.notificationRepo.GetUserNotifications(ctx, userID, limit, unreadOnly)
}

// MarkAsRead 把单条通知标记为已读；重复调用是幂等的，read_at 不被覆盖。
func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID uint) error {
	return s.notificationRepo.MarkAsRead(ctx, userID, notificationID)
}

// MarkAllAsRead 把该用户全部未读通知标记为已读。
func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uint) error {
	return s.notificationRepo.MarkAllAsRead(ctx, userID)
}

// DeleteUserNotification 删除该用户的一条扇出记录（不影响其他接收者）。
func (s *notificationService) DeleteUserNotification(ctx context.Context, userID, notificationID uint) error {
	rows, err := s.notificationRepo.DeleteUserNotification(ctx, userID, notificationID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
