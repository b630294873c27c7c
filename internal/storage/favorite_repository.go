package storage

import (
	"context"

	"gorm.io/gorm"

	"places-go/internal/models"
)

// FavoriteRepository 定义了收藏数据操作的接口。
type FavoriteRepository interface {
	Exists(ctx context.Context, userID, placeID uint) (bool, error)
	Create(ctx context.Context, favorite *models.Favorite) error
	Delete(ctx context.Context, userID, placeID uint) (int64, error)
	GetUserFavorites(ctx context.Context, userID uint) ([]models.FavoritePlace, error)
}

// gormFavoriteRepository 使用 GORM 实现 FavoriteRepository。
type gormFavoriteRepository struct {
	db *gorm.DB
}

// NewGormFavoriteRepository creates a new GORM-based FavoriteRepository.
func NewGormFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &gormFavoriteRepository{db: db}
}

// Exists 检查是否已收藏。
func (r *gormFavoriteRepository) Exists(ctx context.Context, userID, placeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND place_id = ?", userID, placeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create 写入一条收藏记录。
func (r *gormFavoriteRepository) Create(ctx context.Context, favorite *models.Favorite) error {
	return r.db.WithContext(ctx).Create(favorite).Error
}

// Delete 删除收藏，返回受影响的行数。
func (r *gormFavoriteRepository) Delete(ctx context.Context, userID, placeID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND place_id = ?", userID, placeID).
		Delete(&models.Favorite{})
	return res.RowsAffected, res.Error
}

// GetUserFavorites 返回某用户的收藏及地点展示信息。
func (r *gormFavoriteRepository) GetUserFavorites(ctx context.Context, userID uint) ([]models.FavoritePlace, error) {
	var favorites []models.FavoritePlace
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).
		Select("favorites.id", "favorites.user_id", "favorites.place_id",
			"places.name", "places.description", "places.image_picture",
			"places.province", "places.municipality", "places.rate").
		Joins("JOIN places ON favorites.place_id = places.id").
		Where("favorites.user_id = ?", userID).
		Scan(&favorites).Error
	return favorites, err
}
