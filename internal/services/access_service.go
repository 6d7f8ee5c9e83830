package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccessService struct {
	db *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// Grant gives every listed user access to the channel. Users that already
// hold a grant are reported back; if that is all of them the call fails with
// ErrAlreadyGranted.
func (s *AccessService) Grant(ctx context.Context, grantedBy uuid.UUID, req *dto.GrantAccessRequest) (*dto.GrantAccessResponse, error) {
	if req.ChannelID == 0 {
		return nil, validationf("channelId is required")
	}
	ids := uniqueIDs(req.UserIDs)
	if len(ids) == 0 {
		return nil, validationf("userIds must not be empty")
	}

	resp := &dto.GrantAccessResponse{AccessRecords: []models.Access{}}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Channel{}).Where("id = ?", req.ChannelID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrChannelNotFound
		}
		if err := tx.Model(&models.User{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(ids) {
			return ErrUsersNotFound
		}

		var existing []uuid.UUID
		if err := tx.Model(&models.Access{}).
			Where("channel_id = ? AND user_id IN ?", req.ChannelID, ids).
			Pluck("user_id", &existing).Error; err != nil {
			return err
		}
		granted := make(map[uuid.UUID]struct{}, len(existing))
		for _, id := range existing {
			granted[id] = struct{}{}
		}

		for _, id := range ids {
			if _, ok := granted[id]; ok {
				resp.AlreadyGranted = append(resp.AlreadyGranted, id)
				continue
			}
			by := grantedBy
			rec := models.Access{UserID: id, ChannelID: req.ChannelID, GrantedBy: &by}
			resp.AccessRecords = append(resp.AccessRecords, rec)
		}
		if len(resp.AccessRecords) == 0 {
			return ErrAlreadyGranted
		}
		return tx.Create(&resp.AccessRecords).Error
	})
	if err != nil {
		if errors.Is(err, ErrChannelNotFound) || errors.Is(err, ErrUsersNotFound) || errors.Is(err, ErrAlreadyGranted) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to grant access: %w", err)
	}

	resp.Message = fmt.Sprintf("Access granted to %d user(s)", len(resp.AccessRecords))
	return resp, nil
}

func (s *AccessService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Access, error) {
	var grants []models.Access
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("channel_id ASC").Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("failed to list access: %w", err)
	}
	return grants, nil
}

func (s *AccessService) Remove(ctx context.Context, userID uuid.UUID, channelID uint) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND channel_id = ?", userID, channelID).Delete(&models.Access{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove access: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAccessNotFound
	}
	return nil
}
