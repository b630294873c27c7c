package storage

import (
	"context"

	"gorm.io/gorm"

	"places-go/internal/models"
)

// PlaceRepository 定义了地点数据的读取接口。
type PlaceRepository interface {
	GetAll(ctx context.Context) ([]models.Place, error)
	GetByCategory(ctx context.Context, categoryID uint) ([]models.Place, error)
	GetName(ctx context.Context, id uint) (string, error)
}

// gormPlaceRepository 使用 GORM 实现 PlaceRepository。
type gormPlaceRepository struct {
	db *gorm.DB
}

// NewGormPlaceRepository creates a new GORM-based PlaceRepository.
func NewGormPlaceRepository(db *gorm.DB) PlaceRepository {
	return &gormPlaceRepository{db: db}
}

// GetAll 返回全部地点。
func (r *gormPlaceRepository) GetAll(ctx context.Context) ([]models.Place, error) {
	var places []models.Place
	err := r.db.WithContext(ctx).Find(&places).Error
	return places, err
}

// GetByCategory 返回某分类下的全部地点。
func (r *gormPlaceRepository) GetByCategory(ctx context.Context, categoryID uint) ([]models.Place, error) {
	var places []models.Place
	err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Find(&places).Error
	return places, err
}

// GetName 只取地点名，供通知扇出等轻量场景使用。
func (r *gormPlaceRepository) GetName(ctx context.Context, id uint) (string, error) {
	var place models.Place
	err := r.db.WithContext(ctx).Select("name").First(&place, id).Error
	if err != nil {
		return "", err
	}
	return place.Name, nil
}
