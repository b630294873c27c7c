package services

import (
	"context"
	"errors"
	"fmt"

	"places-go/internal/models"
	"places-go/internal/storage"
)

var (
	ErrAlreadyFavorite = errors.New("place is already in favorites")
	ErrNotFavorite     = errors.New("place is not in favorites")
)

// FavoriteService 拥有用户收藏集合：(user, place) 至多一条记录。
type FavoriteService interface {
	AddFavorite(ctx context.Context, userID, placeID uint) error
	RemoveFavorite(ctx context.Context, userID, placeID uint) error
	GetUserFavorites(ctx context.Context, userID uint) ([]models.FavoritePlace, error)
}

// favoriteService 是 FavoriteService 的实现。
type favoriteService struct {
	favoriteRepo storage.FavoriteRepository
}

// NewFavoriteService 创建一个新的 FavoriteService 实例。
func NewFavoriteService(favoriteRepo storage.FavoriteRepository) FavoriteService {
	return &favoriteService{favoriteRepo: favoriteRepo}
}

// AddFavorite 收藏地点；重复收藏被唯一索引与前置检查双重拒绝。
func (s *favoriteService) AddFavorite(ctx context.Context, userID, placeID uint) error {
	exists, err := s.favoriteRepo.Exists(ctx, userID, placeID)
	if err != nil {
		return fmt.Errorf("check favorite: %w", err)
	}
	if exists {
		return ErrAlreadyFavorite
	}

	favorite := &models.Favorite{UserID: userID, PlaceID: placeID}
	if err := s.favoriteRepo.Create(ctx, favorite); err != nil {
		return fmt.Errorf("create favorite: %w", err)
	}
	return nil
}

// RemoveFavorite 取消收藏；零行命中视为未收藏。
func (s *favoriteService) RemoveFavorite(ctx context.Context, userID, placeID uint) error {
	rows, err := s.favoriteRepo.Delete(ctx, userID, placeID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if rows == 0 {
		return ErrNotFavorite
	}
	return nil
}

// GetUserFavorites 返回用户收藏的地点列表。
func (s *favoriteService) GetUserFavorites(ctx context.Context, userID uint) ([]models.FavoritePlace, error) {
	return s.favoriteRepo.GetUserFavorites(ctx, userID)
}
