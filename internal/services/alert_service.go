package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultAlertPageSize = 50
	maxAlertPageSize     = 500
)

type AlertService struct {
	db *gorm.DB
}

func NewAlertService(db *gorm.DB) *AlertService {
	return &AlertService{db: db}
}

// IngestResult is either a newly created feed and alert, or the unresolved
// alerts that already cover every submitted violation.
type IngestResult struct {
	Created  bool
	Feed     *models.Feed
	Alert    *models.Alert
	Existing []models.Alert
}

type ingestInput struct {
	channelID   uint
	violations  []string
	description string
	priority    models.AlertPriority
	status      models.AlertStatus
	reading     models.Reading
	sourceEntry *int64
}

func validateIngest(req *dto.CreateAlertRequest) (*ingestInput, error) {
	if req.ChannelID == 0 {
		return nil, validationf("channelId is required")
	}
	if req.FeedData == nil {
		return nil, validationf("feedData is required")
	}
	description := strings.TrimSpace(req.AlertDescription)
	if description == "" {
		return nil, validationf("alertDescription is required")
	}

	var violations []string
	seen := make(map[string]struct{}, len(req.FieldViolations))
	for _, f := range req.FieldViolations {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, validationf("fieldViolations must not contain blank names")
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		violations = append(violations, f)
	}
	if len(violations) == 0 {
		return nil, validationf("fieldViolations must not be empty")
	}

	priority := models.PriorityHigh
	if req.Priority != "" {
		priority = models.AlertPriority(strings.ToUpper(req.Priority))
		if !priority.Valid() {
			return nil, validationf("priority must be HIGH, MEDIUM or LOW")
		}
	}
	status := models.AlertUnresolved
	if req.AlertStatus != "" {
		status = models.AlertStatus(strings.ToUpper(req.AlertStatus))
		if !status.Valid() {
			return nil, validationf("alertStatus must be UNRESOLVED or RESOLVED")
		}
	}

	return &ingestInput{
		channelID:   req.ChannelID,
		violations:  violations,
		description: description,
		priority:    priority,
		status:      status,
		reading:     req.FeedData.Reading(),
		sourceEntry: req.SourceEntryID,
	}, nil
}

// Ingest records a violating reading. The channel row is locked for the
// whole transaction, so the dedup check and the counter increment see the
// same state. When every submitted field is already covered by an
// unresolved alert nothing is written and the covering alerts are returned.
func (s *AlertService) Ingest(ctx context.Context, req *dto.CreateAlertRequest) (*IngestResult, error) {
	in, err := validateIngest(req)
	if err != nil {
		return nil, err
	}

	var result IngestResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ch models.Channel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "last_entry_id").
			First(&ch, "id = ?", in.channelID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChannelNotFound
			}
			return err
		}

		var open []models.Alert
		if err := tx.Where("channel_id = ? AND alert_status = ?", in.channelID, models.AlertUnresolved).
			Order("alert_date ASC").
			Find(&open).Error; err != nil {
			return err
		}

		covered := make(map[string]struct{})
		for i := range open {
			for _, f := range open[i].Violations() {
				covered[f] = struct{}{}
			}
		}
		fresh := 0
		for _, f := range in.violations {
			if _, ok := covered[f]; !ok {
				fresh++
			}
		}
		if fresh == 0 && len(open) > 0 {
			result.Existing = open
			return nil
		}

		now := time.Now().UTC()
		feed, err := appendFeed(tx, in.channelID, in.reading, in.sourceEntry, now)
		if err != nil {
			return err
		}

		alert := models.Alert{
			ChannelID:        in.channelID,
			FeedID:           feed.ID,
			EntryID:          feed.EntryID,
			AlertDescription: in.description,
			Priority:         in.priority,
			AlertStatus:      in.status,
			AlertDate:        now,
		}
		if in.status == models.AlertResolved {
			alert.ResolvedAt = &now
		}
		alert.SetViolations(in.violations)
		if err := tx.Create(&alert).Error; err != nil {
			return err
		}

		result.Created = true
		result.Feed = feed
		result.Alert = &alert
		return nil
	})
	if err != nil {
		metrics.AlertsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		if errors.Is(err, ErrChannelNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to ingest alert: %w", err)
	}

	if result.Created {
		metrics.AlertsTotal.WithLabelValues(metrics.OutcomeCreated).Inc()
	} else {
		metrics.AlertsTotal.WithLabelValues(metrics.OutcomeDeduplicated).Inc()
	}
	return &result, nil
}

// AlertFilter narrows an alert listing. A nil ChannelIDs means every
// channel; an empty non-nil slice matches nothing.
type AlertFilter struct {
	Status     models.AlertStatus
	ChannelID  uint
	ChannelIDs []uint
	Page       int
	Limit      int
}

func (f *AlertFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultAlertPageSize
	}
	if f.Limit > maxAlertPageSize {
		f.Limit = maxAlertPageSize
	}
}

func (s *AlertService) scoped(ctx context.Context, f AlertFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Alert{})
	if f.Status != "" {
		q = q.Where("alert_status = ?", f.Status)
	}
	if f.ChannelID != 0 {
		q = q.Where("channel_id = ?", f.ChannelID)
	}
	if f.ChannelIDs != nil {
		if len(f.ChannelIDs) == 0 {
			q = q.Where("1 = 0")
		} else {
			q = q.Where("channel_id IN ?", f.ChannelIDs)
		}
	}
	return q
}

// List returns alerts newest first, each with its channel's name and
// location.
func (s *AlertService) List(ctx context.Context, f AlertFilter) (*dto.AlertListResponse, error) {
	f.normalize()
	if f.Status != "" && !f.Status.Valid() {
		return nil, validationf("status must be UNRESOLVED or RESOLVED")
	}

	var total int64
	if err := s.scoped(ctx, f).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count alerts: %w", err)
	}

	var alerts []models.Alert
	if err := s.scoped(ctx, f).
		Preload("Channel").
		Order("alert_date DESC").Order("id DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	items := make([]dto.AlertListItem, 0, len(alerts))
	for i := range alerts {
		items = append(items, toAlertListItem(&alerts[i]))
	}
	return &dto.AlertListResponse{Alerts: items, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// All returns every alert matching f, newest first, for export.
func (s *AlertService) All(ctx context.Context, f AlertFilter) ([]dto.AlertListItem, error) {
	var alerts []models.Alert
	if err := s.scoped(ctx, f).
		Preload("Channel").
		Order("alert_date DESC").Order("id DESC").
		Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}
	items := make([]dto.AlertListItem, 0, len(alerts))
	for i := range alerts {
		items = append(items, toAlertListItem(&alerts[i]))
	}
	return items, nil
}

func toAlertListItem(a *models.Alert) dto.AlertListItem {
	item := dto.AlertListItem{
		AlertID:          a.ID,
		ChannelID:        a.ChannelID,
		EntryID:          a.EntryID,
		Priority:         a.Priority,
		AlertDescription: a.AlertDescription,
		FieldViolations:  a.Violations(),
		Status:           a.AlertStatus,
		Date:             a.AlertDate,
	}
	if a.Channel != nil {
		item.ChannelName = a.Channel.Name
		item.Location = [2]float64{a.Channel.Latitude, a.Channel.Longitude}
	}
	return item
}

func (s *AlertService) Resolve(ctx context.Context, id uint, channelIDs []uint) (*models.Alert, error) {
	var alert models.Alert
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&alert, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAlertNotFound
			}
			return err
		}
		if !channelVisible(channelIDs, alert.ChannelID) {
			return ErrAlertNotFound
		}
		if alert.AlertStatus == models.AlertResolved {
			return nil
		}
		now := time.Now().UTC()
		alert.AlertStatus = models.AlertResolved
		alert.ResolvedAt = &now
		return tx.Model(&alert).Updates(map[string]interface{}{
			"alert_status": models.AlertResolved,
			"resolved_at":  now,
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrAlertNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to resolve alert: %w", err)
	}
	return &alert, nil
}

// channelVisible applies the AlertFilter convention: nil sees every channel.
func channelVisible(channelIDs []uint, channelID uint) bool {
	if channelIDs == nil {
		return true
	}
	for _, id := range channelIDs {
		if id == channelID {
			return true
		}
	}
	return false
}

func (s *AlertService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Alert{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete alert: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlertNotFound
	}
	return nil
}
