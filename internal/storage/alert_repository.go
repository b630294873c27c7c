package storage

import (
	"context"

	"gorm.io/gorm"

	"places-go/internal/models"
)

// coordinateTolerance 是坐标近似匹配的容差（约 11 米）。
const coordinateTolerance = 0.0001

// AlertRepository 定义了坐标告警的查询接口。
type AlertRepository interface {
	FindByCoordinates(ctx context.Context, lat, lng float64) (*models.Alert, error)
}

// gormAlertRepository 使用 GORM 实现 AlertRepository。
type gormAlertRepository struct {
	db *gorm.DB
}

// NewGormAlertRepository creates a new GORM-based AlertRepository.
func NewGormAlertRepository(db *gorm.DB) AlertRepository {
	return &gormAlertRepository{db: db}
}

// FindByCoordinates returns the first alert within the tolerance box
// around the given coordinates, or nil when there is none.
func (r *gormAlertRepository) FindByCoordinates(ctx context.Context, lat, lng float64) (*models.Alert, error) {
	var alert models.Alert
	err := r.db.WithContext(ctx).
		Where("ABS(latitude - ?) < ? AND ABS(longitude - ?) < ?",
			lat, coordinateTolerance, lng, coordinateTolerance).
		First(&alert).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}
