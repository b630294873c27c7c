package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"places-go/internal/models"
)

// FriendRequestRepository defines the interface for friend request data operations.
type FriendRequestRepository interface {
	Create(ctx context.Context, request *models.FriendRequest) error
	FindBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error)
	GetPendingByIDForReceiver(ctx context.Context, requestID, receiverID uint) (*models.FriendRequest, error)
	MarkStatus(ctx context.Context, requestID, receiverID uint, status models.FriendRequestStatus) (int64, error)
	DeletePendingBySender(ctx context.Context, requestID, senderID uint) (int64, error)
	DeleteBetweenUsers(ctx context.Context, userID1, userID2 uint) (int64, error)
	GetPendingForReceiver(ctx context.Context, receiverID uint) ([]models.FriendRequestInfo, error)
	GetPendingFromSender(ctx context.Context, senderID uint) ([]models.FriendRequestInfo, error)
}

// gormFriendRequestRepository 使用 GORM 实现 FriendRequestRepository。
type gormFriendRequestRepository struct {
	db *gorm.DB
}

func NewGormFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &gormFriendRequestRepository{db: db}
}

func (r *gormFriendRequestRepository) Create(ctx context.Context, request *models.FriendRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// FindBetweenUsers returns the request between two users in either
// direction and in any status, or nil when none exists. The unique
// index on the canonical pair guarantees at most one such row.
func (r *gormFriendRequestRepository) FindBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error) {
	minID, maxID := models.CanonicalPair(userID1, userID2)
	var request models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("pair_min_id = ? AND pair_max_id = ?", minID, maxID).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// GetPendingByIDForReceiver 查找指定接收者名下处于 pending 状态的请求。
func (r *gormFriendRequestRepository) GetPendingByIDForReceiver(ctx context.Context, requestID, receiverID uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("id = ? AND receiver_id = ? AND status = ?", requestID, receiverID, models.FriendRequestStatusPending).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// MarkStatus performs a conditional status transition guarded by
// id + receiver + pending, returning the number of affected rows.
func (r *gormFriendRequestRepository) MarkStatus(ctx context.Context, requestID, receiverID uint, status models.FriendRequestStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("id = ? AND receiver_id = ? AND status = ?", requestID, receiverID, models.FriendRequestStatusPending).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// DeletePendingBySender removes a pending request if the caller is its
// sender, returning the number of affected rows.
func (r *gormFriendRequestRepository) DeletePendingBySender(ctx context.Context, requestID, senderID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND sender_id = ? AND status = ?", requestID, senderID, models.FriendRequestStatusPending).
		Delete(&models.FriendRequest{})
	return res.RowsAffected, res.Error
}

// DeleteBetweenUsers 清除两个用户之间任意方向、任意状态的请求记录。
func (r *gormFriendRequestRepository) DeleteBetweenUsers(ctx context.Context, userID1, userID2 uint) (int64, error) {
	minID, maxID := models.CanonicalPair(userID1, userID2)
	res := r.db.WithContext(ctx).
		Where("pair_min_id = ? AND pair_max_id = ?", minID, maxID).
		Delete(&models.FriendRequest{})
	return res.RowsAffected, res.Error
}

// GetPendingForReceiver 列出发给某用户的待处理请求，带发送者信息，最新在前。
func (r *gormFriendRequestRepository) GetPendingForReceiver(ctx context.Context, receiverID uint) ([]models.FriendRequestInfo, error) {
	var requests []models.FriendRequestInfo
	err := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Select("friend_requests.id", "friend_requests.sender_id",
			"users.first_name", "users.last_name", "users.profile_picture",
			"friend_requests.created_at").
		Joins("JOIN users ON friend_requests.sender_id = users.id").
		Where("friend_requests.receiver_id = ? AND friend_requests.status = ?", receiverID, models.FriendRequestStatusPending).
		Order("friend_requests.created_at DESC").
		Scan(&requests).Error
	return requests, err
}

// GetPendingFromSender 列出某用户发出的待处理请求，带接收者信息，最新在前。
func (r *gormFriendRequestRepository) GetPendingFromSender(ctx context.Context, senderID uint) ([]models.FriendRequestInfo, error) {
	var requests []models.FriendRequestInfo
	err := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Select("friend_requests.id", "friend_requests.receiver_id",
			"users.first_name", "users.last_name", "users.profile_picture",
			"friend_requests.created_at").
		Joins("JOIN users ON friend_requests.receiver_id = users.id").
		Where("friend_requests.sender_id = ? AND friend_requests.status = ?", senderID, models.FriendRequestStatusPending).
		Order("friend_requests.created_at DESC").
		Scan(&requests).Error
	return requests, err
}
