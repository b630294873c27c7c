package services

import (
	"context"
	"fmt"

	"places-go/internal/models"
	"places-go/internal/storage"
)

// AlertService 按坐标查询邻近告警。
type AlertService interface {
	CheckAlert(ctx context.Context, lat, lng float64) (*models.Alert, error)
}

// alertService 是 AlertService 的实现。
type alertService struct {
	alertRepo storage.AlertRepository
}

// NewAlertService 创建一个新的 AlertService 实例。
func NewAlertService(alertRepo storage.AlertRepository) AlertService {
	return &alertService{alertRepo: alertRepo}
}

// CheckAlert 返回坐标容差范围内的告警，没有命中时返回 (nil, nil)。
func (s *alertService) CheckAlert(ctx context.Context, lat, lng float64) (*models.Alert, error) {
	alert, err := s.alertRepo.FindByCoordinates(ctx, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("look up alert at (%f, %f): %w", lat, lng, err)
	}
	return alert, nil
}
