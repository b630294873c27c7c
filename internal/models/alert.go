package models

import "time"

// Alert 是绑定在坐标上的告警，按坐标近似匹配查询。
type Alert struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Latitude    float64   `gorm:"not null" json:"latitude"`
	Longitude   float64   `gorm:"not null" json:"longitude"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName 指定 Alert 模型的表名。
func (Alert) TableName() string {
	return "alerts"
}
