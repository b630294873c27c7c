package models

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel defines the common fields for soft-deletable models.
// 用户等实体不做物理删除，DeletedAt 由通知推送逻辑参考。
type BaseModel struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
