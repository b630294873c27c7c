package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"places-go/internal/models"
	"places-go/internal/storage"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrPlaceNotFound    = errors.New("no places found")
)

// CatalogService 提供只读的分类与地点目录。
type CatalogService interface {
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, id uint) (*models.Category, error)
	GetCategoryIcon(ctx context.Context, id uint) ([]byte, error)
	GetCategoryImage(ctx context.Context, id uint) ([]byte, error)
	GetPlaces(ctx context.Context) ([]models.Place, error)
	GetPlacesByCategory(ctx context.Context, categoryID uint) ([]models.Place, error)
}

// catalogService 是 CatalogService 的实现。
type catalogService struct {
	categoryRepo storage.CategoryRepository
	placeRepo    storage.PlaceRepository
}

// NewCatalogService 创建一个新的 CatalogService 实例。
func NewCatalogService(categoryRepo storage.CategoryRepository, placeRepo storage.PlaceRepository) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		placeRepo:    placeRepo,
	}
}

// GetCategories 返回全部分类（不含二进制图标数据）。
func (s *catalogService) GetCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.GetAll(ctx)
}

// GetCategoryByID 返回单个分类。
func (s *catalogService) GetCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return category, nil
}

// GetCategoryIcon 返回分类图标的原始字节。
func (s *catalogService) GetCategoryIcon(ctx context.Context, id uint) ([]byte, error) {
	category, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(category.Icon) == 0 {
		return nil, ErrCategoryNotFound
	}
	return category.Icon, nil
}

// GetCategoryImage 返回分类配图的原始字节。
func (s *catalogService) GetCategoryImage(ctx context.Context, id uint) ([]byte, error) {
	category, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(category.Image) == 0 {
		return nil, ErrCategoryNotFound
	}
	return category.Image, nil
}

// GetPlaces 返回全部地点；目录为空时视为未找到。
func (s *catalogService) GetPlaces(ctx context.Context) ([]models.Place, error) {
	places, err := s.placeRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	if len(places) == 0 {
		return nil, ErrPlaceNotFound
	}
	return places, nil
}

// GetPlacesByCategory 返回某分类下的全部地点；为空时视为未找到。
func (s *catalogService) GetPlacesByCategory(ctx context.Context, categoryID uint) ([]models.Place, error) {
	places, err := s.placeRepo.GetByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list places for category %d: %w", categoryID, err)
	}
	if len(places) == 0 {
		return nil, ErrPlaceNotFound
	}
	return places, nil
}
