package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidApiKey = errors.New("invalid api key")

const apiKeyPrefix = "swk_"

type LabService struct {
	db *gorm.DB
}

func NewLabService(db *gorm.DB) *LabService {
	return &LabService{db: db}
}

func (s *LabService) List(ctx context.Context) ([]models.Lab, error) {
	var labs []models.Lab
	if err := s.db.WithContext(ctx).Preload("Manager").Order("id ASC").Find(&labs).Error; err != nil {
		return nil, fmt.Errorf("failed to list labs: %w", err)
	}
	return labs, nil
}

func (s *LabService) Create(ctx context.Context, managerID uuid.UUID, location string) (*models.Lab, error) {
	location = strings.TrimSpace(location)
	if managerID == uuid.Nil || location == "" {
		return nil, validationf("managerId and labLocation are required")
	}

	db := s.db.WithContext(ctx)
	var manager models.User
	if err := db.First(&manager, "id = ?", managerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load manager: %w", err)
	}

	lab := models.Lab{ManagerID: managerID, LabLocation: location}
	if err := db.Create(&lab).Error; err != nil {
		return nil, fmt.Errorf("failed to create lab: %w", err)
	}
	lab.Manager = &manager
	return &lab, nil
}

// ApiKeyService issues lab-scoped device keys. The raw key is returned once
// at creation; only its sha256 is stored.
type ApiKeyService struct {
	db *gorm.DB
}

func NewApiKeyService(db *gorm.DB) *ApiKeyService {
	return &ApiKeyService{db: db}
}

func (s *ApiKeyService) Create(ctx context.Context, labID uint, name string) (*models.ApiKey, string, error) {
	name = strings.TrimSpace(name)
	if labID == 0 || name == "" {
		return nil, "", validationf("labId and name are required")
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Lab{}).Where("id = ?", labID).Count(&count).Error; err != nil {
		return nil, "", fmt.Errorf("failed to load lab: %w", err)
	}
	if count == 0 {
		return nil, "", ErrLabNotFound
	}

	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return nil, "", fmt.Errorf("failed to generate api key: %w", err)
	}
	key := apiKeyPrefix + hex.EncodeToString(raw)

	record := models.ApiKey{
		LabID:   labID,
		Name:    name,
		Prefix:  key[:len(apiKeyPrefix)+8],
		KeyHash: hashToken(key),
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, "", fmt.Errorf("failed to store api key: %w", err)
	}
	return &record, key, nil
}

func (s *ApiKeyService) List(ctx context.Context, labID uint) ([]models.ApiKey, error) {
	var keys []models.ApiKey
	if err := s.db.WithContext(ctx).Where("lab_id = ?", labID).Order("id ASC").Find(&keys).Error; err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	return keys, nil
}

func (s *ApiKeyService) Revoke(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.ApiKey{}).Where("id = ?", id).Update("revoked", true)
	if res.Error != nil {
		return fmt.Errorf("failed to revoke api key: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrApiKeyNotFound
	}
	return nil
}

// AuthorizeChannel accepts raw only if it is a live key of the lab that owns
// the channel.
func (s *ApiKeyService) AuthorizeChannel(ctx context.Context, raw string, channelID uint) error {
	if !strings.HasPrefix(raw, apiKeyPrefix) {
		return ErrInvalidApiKey
	}

	db := s.db.WithContext(ctx)
	var key models.ApiKey
	if err := db.Where("key_hash = ? AND revoked = ?", hashToken(raw), false).First(&key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidApiKey
		}
		return fmt.Errorf("failed to load api key: %w", err)
	}

	var ch models.Channel
	if err := db.Select("id", "lab_id").First(&ch, "id = ?", channelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChannelNotFound
		}
		return fmt.Errorf("failed to load channel: %w", err)
	}
	if ch.LabID == nil || *ch.LabID != key.LabID {
		return ErrInvalidApiKey
	}

	return db.Model(&key).UpdateColumn("last_used_at", time.Now().UTC()).Error
}
