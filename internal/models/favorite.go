package models

import "time"

// Favorite 将用户与收藏的地点关联，(user_id, place_id) 唯一。
type Favorite struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_pair" json:"user_id"`
	PlaceID   uint      `gorm:"not null;uniqueIndex:idx_favorite_pair" json:"place_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoritePlace is a favorite joined with the place's display columns.
type FavoritePlace struct {
	ID           uint    `json:"id"`
	UserID       uint    `json:"user_id"`
	PlaceID      uint    `json:"place_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	ImagePicture string  `json:"image_picture,omitempty"`
	Province     string  `json:"province,omitempty"`
	Municipality string  `json:"municipality,omitempty"`
	Rate         float64 `json:"rate"`
}
