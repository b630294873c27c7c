package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"places-go/internal/models"
	"places-go/internal/storage"
)

// ErrNoFieldsToUpdate 表示资料更新请求没有携带任何可更新字段。
var ErrNoFieldsToUpdate = errors.New("no updatable fields provided")

// UserService 定义了用户资料相关服务的接口。
type UserService interface {
	GetUserProfile(ctx context.Context, userID uint) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID uint, update storage.UserProfileUpdate) (*models.User, error)
	SearchUsers(ctx context.Context, currentUserID uint, query string, page, limit int) ([]models.UserBasicInfo, int64, error)
}

// userService 是 UserService 的实现。
type userService struct {
	userRepo storage.UserRepository
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo storage.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetUserProfile 获取用户公开的个人资料。
func (s *userService) GetUserProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateUserProfile applies a partial update. Only fields present in
// the update struct are written; everything else stays untouched. An
// empty update is rejected before hitting the database.
func (s *userService) UpdateUserProfile(ctx context.Context, userID uint, update storage.UserProfileUpdate) (*models.User, error) {
	if update.FirstName == nil && update.LastName == nil && update.Bio == nil && update.ProfilePicture == nil {
		return nil, ErrNoFieldsToUpdate
	}

	rows, err := s.userRepo.UpdateProfile(ctx, userID, update)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if rows == 0 {
		return nil, ErrUserNotFound
	}

	return s.GetUserProfile(ctx, userID)
}

// SearchUsers 按姓名模糊检索用户（排除检索者本人），返回分页结果与总数。
func (s *userService) SearchUsers(ctx context.Context, currentUserID uint, query string, page, limit int) ([]models.UserBasicInfo, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.userRepo.SearchUsers(ctx, currentUserID, query, limit, offset)
}
