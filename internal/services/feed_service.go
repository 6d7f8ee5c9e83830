package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"gorm.io/gorm"
)

const (
	defaultFeedLimit = 100
	maxFeedLimit     = 8000
)

type FeedService struct {
	db *gorm.DB
}

func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{db: db}
}

// Record stores a reading that raised no alert. The channel counter and the
// feed row are written together.
func (s *FeedService) Record(ctx context.Context, channelID uint, reading models.Reading) (*models.Feed, error) {
	return s.RecordSourced(ctx, channelID, nil, reading)
}

// RecordSourced is Record for a reading that carries an upstream entry id.
// A nil sourceEntryID stores a local-only reading.
func (s *FeedService) RecordSourced(ctx context.Context, channelID uint, sourceEntryID *int64, reading models.Reading) (*models.Feed, error) {
	var feed *models.Feed
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		feed, err = appendFeed(tx, channelID, reading, sourceEntryID, time.Now().UTC())
		return err
	})
	if err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record feed: %w", err)
	}
	return feed, nil
}

// appendFeed advances the channel's entry counter with a relative update and
// stores the reading under the new entry id. It must run inside a
// transaction.
func appendFeed(tx *gorm.DB, channelID uint, reading models.Reading, sourceEntryID *int64, at time.Time) (*models.Feed, error) {
	res := tx.Model(&models.Channel{}).
		Where("id = ?", channelID).
		UpdateColumn("last_entry_id", gorm.Expr("last_entry_id + ?", 1))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrChannelNotFound
	}

	var ch models.Channel
	if err := tx.Select("id", "last_entry_id").First(&ch, "id = ?", channelID).Error; err != nil {
		return nil, err
	}

	feed := models.Feed{
		ChannelID:     channelID,
		EntryID:       ch.LastEntryID,
		SourceEntryID: sourceEntryID,
		CreatedAt:     at,
	}
	feed.SetValues(reading)
	if err := tx.Create(&feed).Error; err != nil {
		return nil, err
	}
	return &feed, nil
}

// StoredSourceEntries returns which of the upstream entry ids already have a
// feed on the channel.
func (s *FeedService) StoredSourceEntries(ctx context.Context, channelID uint, ids []int64) (map[int64]bool, error) {
	stored := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return stored, nil
	}
	var found []int64
	if err := s.db.WithContext(ctx).Model(&models.Feed{}).
		Where("channel_id = ? AND source_entry_id IN ?", channelID, ids).
		Pluck("source_entry_id", &found).Error; err != nil {
		return nil, fmt.Errorf("failed to look up imported entries: %w", err)
	}
	for _, id := range found {
		stored[id] = true
	}
	return stored, nil
}

// FeedQuery bounds a feed listing. Zero times are open ends.
type FeedQuery struct {
	From  time.Time
	To    time.Time
	Limit int
}

// List returns the channel's most recent feeds, oldest first.
func (s *FeedService) List(ctx context.Context, channelID uint, q FeedQuery) ([]models.Feed, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	query := s.db.WithContext(ctx).Where("channel_id = ?", channelID)
	if !q.From.IsZero() {
		query = query.Where("created_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		query = query.Where("created_at <= ?", q.To)
	}

	var feeds []models.Feed
	if err := query.Order("entry_id DESC").Limit(limit).Find(&feeds).Error; err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	for i, j := 0, len(feeds)-1; i < j; i, j = i+1, j-1 {
		feeds[i], feeds[j] = feeds[j], feeds[i]
	}
	return feeds, nil
}
