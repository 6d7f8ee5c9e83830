package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"gorm.io/gorm"
)

type ChannelService struct {
	db *gorm.DB
}

func NewChannelService(db *gorm.DB) *ChannelService {
	return &ChannelService{db: db}
}

// SeesAllChannels reports whether role bypasses access grants.
func SeesAllChannels(role models.UserRole) bool {
	return role == models.RoleAdmin || role == models.RoleSuperUser
}

// VisibleIDs returns the channel ids p may see, or nil when p sees every
// channel.
func (s *ChannelService) VisibleIDs(ctx context.Context, p *auth.Principal) ([]uint, error) {
	if SeesAllChannels(p.Role) {
		return nil, nil
	}
	ids := []uint{}
	if err := s.db.WithContext(ctx).Model(&models.Access{}).
		Where("user_id = ?", p.ID).
		Pluck("channel_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load access grants: %w", err)
	}
	return ids, nil
}

func (s *ChannelService) List(ctx context.Context, p *auth.Principal) ([]models.Channel, error) {
	ids, err := s.VisibleIDs(ctx, p)
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Order("id ASC")
	if ids != nil {
		if len(ids) == 0 {
			return []models.Channel{}, nil
		}
		q = q.Where("id IN ?", ids)
	}

	var channels []models.Channel
	if err := q.Find(&channels).Error; err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return channels, nil
}

// Get loads a channel, hiding channels p has no grant for.
func (s *ChannelService) Get(ctx context.Context, p *auth.Principal, id uint) (*models.Channel, error) {
	if p != nil && !SeesAllChannels(p.Role) {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Access{}).
			Where("user_id = ? AND channel_id = ?", p.ID, id).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check access: %w", err)
		}
		if count == 0 {
			return nil, ErrChannelNotFound
		}
	}

	var ch models.Channel
	if err := s.db.WithContext(ctx).First(&ch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to load channel: %w", err)
	}
	return &ch, nil
}

func (s *ChannelService) Create(ctx context.Context, req *dto.CreateChannelRequest) (*models.Channel, error) {
	if req.ID == 0 {
		return nil, validationf("channelId is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationf("name is required")
	}
	if req.LastEntryID < 0 {
		return nil, validationf("lastEntryId must not be negative")
	}

	ch := models.Channel{
		ID:          req.ID,
		Name:        name,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Field1:      req.Field1,
		Field2:      req.Field2,
		Field3:      req.Field3,
		Field4:      req.Field4,
		Field5:      req.Field5,
		Field6:      req.Field6,
		Field7:      req.Field7,
		Field8:      req.Field8,
		LabID:       req.LabID,
		LastEntryID: req.LastEntryID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Channel{}).Where("id = ?", req.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrChannelExists
		}
		if req.LabID != nil {
			if err := tx.Model(&models.Lab{}).Where("id = ?", *req.LabID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrLabNotFound
			}
		}
		return tx.Create(&ch).Error
	})
	if err != nil {
		if errors.Is(err, ErrChannelExists) || errors.Is(err, ErrLabNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}
	return &ch, nil
}

// Delete removes a channel with its feeds, alerts, thresholds and grants.
func (s *ChannelService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Channel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrChannelNotFound
		}
		// Alerts reference feeds, so they go first.
		for _, model := range []interface{}{&models.Alert{}, &models.Feed{}, &models.Threshold{}, &models.Access{}} {
			if err := tx.Where("channel_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Channel{}, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	return nil
}
