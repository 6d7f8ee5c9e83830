package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ThresholdService struct {
	db *gorm.DB
}

func NewThresholdService(db *gorm.DB) *ThresholdService {
	return &ThresholdService{db: db}
}

// bounds is a validated threshold entry.
type bounds struct {
	field string
	min   float64
	max   float64
	unit  *string
}

// validateThresholds checks the whole batch before anything is written.
func validateThresholds(inputs []dto.ThresholdInput) ([]bounds, error) {
	out := make([]bounds, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for i, in := range inputs {
		field := strings.TrimSpace(in.FieldName)
		if field == "" {
			return nil, validationf("threshold %d: fieldName is required", i)
		}
		if !in.MinValue.Valid || !in.MaxValue.Valid {
			return nil, validationf("threshold %q: minValue and maxValue must be numeric", field)
		}
		if in.MinValue.Value >= in.MaxValue.Value {
			return nil, validationf("threshold %q: minValue must be less than maxValue", field)
		}
		if _, dup := seen[field]; dup {
			return nil, validationf("threshold %q: submitted more than once", field)
		}
		seen[field] = struct{}{}
		out = append(out, bounds{field: field, min: in.MinValue.Value, max: in.MaxValue.Value, unit: in.Unit})
	}
	return out, nil
}

func (s *ThresholdService) List(ctx context.Context, channelID uint) ([]models.Threshold, error) {
	var thresholds []models.Threshold
	if err := s.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("field_name ASC").
		Find(&thresholds).Error; err != nil {
		return nil, fmt.Errorf("failed to list thresholds: %w", err)
	}
	return thresholds, nil
}

// Save replaces the channel's thresholds with inputs. Existing (channel,
// field) rows are updated in place; fields not submitted are removed.
func (s *ThresholdService) Save(ctx context.Context, channelID uint, inputs []dto.ThresholdInput) ([]models.Threshold, error) {
	if channelID == 0 {
		return nil, validationf("channelId is required")
	}
	entries, err := validateThresholds(inputs)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Channel{}).Where("id = ?", channelID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrChannelNotFound
		}

		fields := make([]string, 0, len(entries))
		now := time.Now()
		for _, e := range entries {
			row := models.Threshold{
				ChannelID: channelID,
				FieldName: e.field,
				MinValue:  e.min,
				MaxValue:  e.max,
				Unit:      e.unit,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "channel_id"}, {Name: "field_name"}},
				DoUpdates: clause.AssignmentColumns([]string{"min_value", "max_value", "unit", "updated_at"}),
			}).Create(&row).Error; err != nil {
				return err
			}
			fields = append(fields, e.field)
		}

		stale := tx.Where("channel_id = ?", channelID)
		if len(fields) > 0 {
			stale = stale.Where("field_name NOT IN ?", fields)
		}
		return stale.Delete(&models.Threshold{}).Error
	})
	if err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save thresholds: %w", err)
	}
	return s.List(ctx, channelID)
}

func (s *ThresholdService) ListDefaults(ctx context.Context) ([]models.DefaultThreshold, error) {
	var defaults []models.DefaultThreshold
	if err := s.db.WithContext(ctx).Order("field_name ASC").Find(&defaults).Error; err != nil {
		return nil, fmt.Errorf("failed to list default thresholds: %w", err)
	}
	return defaults, nil
}

// SaveDefaults upserts global defaults by field name. Fields not submitted
// are left untouched.
func (s *ThresholdService) SaveDefaults(ctx context.Context, inputs []dto.ThresholdInput) ([]models.DefaultThreshold, error) {
	entries, err := validateThresholds(inputs)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, e := range entries {
			row := models.DefaultThreshold{
				FieldName: e.field,
				MinValue:  e.min,
				MaxValue:  e.max,
				Unit:      e.unit,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "field_name"}},
				DoUpdates: clause.AssignmentColumns([]string{"min_value", "max_value", "unit", "updated_at"}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save default thresholds: %w", err)
	}
	return s.ListDefaults(ctx)
}

// Effective merges global defaults with the channel's own thresholds; the
// channel's entry wins for a shared field name.
func (s *ThresholdService) Effective(ctx context.Context, channelID uint) ([]models.Threshold, error) {
	defaults, err := s.ListDefaults(ctx)
	if err != nil {
		return nil, err
	}
	own, err := s.List(ctx, channelID)
	if err != nil {
		return nil, err
	}

	merged := make([]models.Threshold, 0, len(defaults)+len(own))
	overridden := make(map[string]struct{}, len(own))
	for _, th := range own {
		overridden[strings.ToLower(th.FieldName)] = struct{}{}
	}
	for _, d := range defaults {
		if _, ok := overridden[strings.ToLower(d.FieldName)]; ok {
			continue
		}
		merged = append(merged, models.Threshold{
			ChannelID: channelID,
			FieldName: d.FieldName,
			MinValue:  d.MinValue,
			MaxValue:  d.MaxValue,
			Unit:      d.Unit,
		})
	}
	return append(merged, own...), nil
}

// ToThresholdResponses converts rows for the wire.
func ToThresholdResponses(rows []models.Threshold) []dto.ThresholdResponse {
	out := make([]dto.ThresholdResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ThresholdResponse{FieldName: r.FieldName, MinValue: r.MinValue, MaxValue: r.MaxValue, Unit: r.Unit})
	}
	return out
}

func ToDefaultResponses(rows []models.DefaultThreshold) []dto.ThresholdResponse {
	out := make([]dto.ThresholdResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ThresholdResponse{FieldName: r.FieldName, MinValue: r.MinValue, MaxValue: r.MaxValue, Unit: r.Unit})
	}
	return out
}
