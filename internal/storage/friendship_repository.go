package storage

import (
	"context"

	"gorm.io/gorm"

	"places-go/internal/models"
)

// FriendshipRepository defines the interface for friendship data operations.
type FriendshipRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	AreUsersFriends(ctx context.Context, userID1, userID2 uint) (bool, error)
	DeleteBetweenUsers(ctx context.Context, userID1, userID2 uint) (int64, error)
	GetFriendsOf(ctx context.Context, userID uint) ([]models.UserBasicInfo, error)
}

// gormFriendshipRepository 使用 GORM 实现 FriendshipRepository。
type gormFriendshipRepository struct {
	db *gorm.DB
}

// NewGormFriendshipRepository creates a new GORM-based FriendshipRepository.
func NewGormFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &gormFriendshipRepository{db: db}
}

// Create 写入一条好友关系，调用方须保证已做规范排序。
func (r *gormFriendshipRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	return r.db.WithContext(ctx).Create(friendship).Error
}

// AreUsersFriends checks whether a friendship exists for the unordered
// pair. Rows are canonical, so one equality check suffices.
func (r *gormFriendshipRepository) AreUsersFriends(ctx context.Context, userID1, userID2 uint) (bool, error) {
	u1, u2 := models.CanonicalPair(userID1, userID2)
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteBetweenUsers removes the friendship row for the pair, matching
// both orderings, and returns the affected row count.
func (r *gormFriendshipRepository) DeleteBetweenUsers(ctx context.Context, userID1, userID2 uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)",
			userID1, userID2, userID2, userID1).
		Delete(&models.Friendship{})
	return res.RowsAffected, res.Error
}

// GetFriendsOf 返回某用户所有好友的公开信息。
func (r *gormFriendshipRepository) GetFriendsOf(ctx context.Context, userID uint) ([]models.UserBasicInfo, error) {
	var friends []models.UserBasicInfo
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Select("users.id", "users.first_name", "users.last_name", "users.profile_picture").
		Joins("JOIN users ON (friendships.user1_id = users.id OR friendships.user2_id = users.id) AND users.id != ?", userID).
		Where("friendships.user1_id = ? OR friendships.user2_id = ?", userID, userID).
		Scan(&friends).Error
	return friends, err
}
