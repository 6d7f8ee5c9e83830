package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"gorm.io/gorm"
)

const defaultHistoryLimit = 200

type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

func (s *ActivityService) Create(ctx context.Context, actor string, req *dto.CreateActivityLogRequest) (*models.ActivityLog, error) {
	entry := models.ActivityLog{
		User:        actor,
		Action:      strings.TrimSpace(req.Action),
		Device:      strings.TrimSpace(req.Device),
		LabLocation: strings.TrimSpace(req.Location),
		Timestamp:   time.Now().UTC(),
	}
	if entry.Action == "" || entry.Device == "" || entry.LabLocation == "" {
		return nil, validationf("action, device and location are required")
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create activity log: %w", err)
	}
	return &entry, nil
}

func (s *ActivityService) List(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}
	var logs []models.ActivityLog
	if err := s.db.WithContext(ctx).Order("timestamp DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	return logs, nil
}

// UsageHistory returns the newest account events first.
func (s *ActivityService) UsageHistory(ctx context.Context, limit int) ([]models.UsageHistory, error) {
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}
	var rows []models.UsageHistory
	if err := s.db.WithContext(ctx).Order("timestamp DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list usage history: %w", err)
	}
	return rows, nil
}
