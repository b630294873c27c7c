package storage

import (
	"context"

	"gorm.io/gorm"

	"places-go/internal/models"
)

// CategoryRepository 定义了分类数据的读取接口。
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetName(ctx context.Context, id uint) (string, error)
}

// gormCategoryRepository 使用 GORM 实现 CategoryRepository。
type gormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GORM-based CategoryRepository.
func NewGormCategoryRepository(db *gorm.DB) CategoryRepository {
	return &gormCategoryRepository{db: db}
}

// GetAll 返回全部分类，不含二进制列（列表场景）。
func (r *gormCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Select("id", "name", "description").
		Find(&categories).Error
	return categories, err
}

// GetByID 返回完整的分类记录，含图标与图片字节。
func (r *gormCategoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetName 只取分类名，供通知扇出等轻量场景使用。
func (r *gormCategoryRepository) GetName(ctx context.Context, id uint) (string, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Select("name").First(&category, id).Error
	if err != nil {
		return "", err
	}
	return category.Name, nil
}
