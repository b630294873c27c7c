package models

import "time"

// Notification 是一条广播事实（新内容等），本身不属于任何接收者。
type Notification struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Title      string    `gorm:"type:varchar(255);not null" json:"title"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	EntityType string    `gorm:"type:varchar(50)" json:"entity_type,omitempty"`
	EntityID   uint      `json:"entity_id,omitempty"`
	CreatedBy  uint      `json:"created_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserNotification 是通知向单个接收者的扇出记录，承载已读状态。
type UserNotification struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	NotificationID uint       `gorm:"not null;uniqueIndex:idx_user_notification" json:"notification_id"`
	UserID         uint       `gorm:"not null;uniqueIndex:idx_user_notification" json:"user_id"`
	IsRead         bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
}

// UserNotificationInfo is a notification joined with the recipient's
// read state, for the per-user listing.
type UserNotificationInfo struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   uint      `json:"entity_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	IsRead     bool      `json:"is_read"`
}
