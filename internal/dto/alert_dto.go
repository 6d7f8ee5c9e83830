package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
)

// FeedData carries raw field values; absent or null fields are not reported.
type FeedData struct {
	Field1 *float64 `json:"field1"`
	Field2 *float64 `json:"field2"`
	Field3 *float64 `json:"field3"`
	Field4 *float64 `json:"field4"`
	Field5 *float64 `json:"field5"`
	Field6 *float64 `json:"field6"`
	Field7 *float64 `json:"field7"`
	Field8 *float64 `json:"field8"`
}

func (f *FeedData) Reading() models.Reading {
	if f == nil {
		return models.Reading{}
	}
	return models.Reading{f.Field1, f.Field2, f.Field3, f.Field4, f.Field5, f.Field6, f.Field7, f.Field8}
}

type CreateAlertRequest struct {
	ChannelID        uint      `json:"channelId"`
	FieldViolations  []string  `json:"fieldViolations"`
	AlertDescription string    `json:"alertDescription"`
	Priority         string    `json:"priority"`
	AlertStatus      string    `json:"alertStatus"`
	FeedData         *FeedData `json:"feedData"`
	// SourceEntryID is set by the importer, never by clients.
	SourceEntryID *int64 `json:"-"`
}

type AlertCreatedResponse struct {
	Message string        `json:"message"`
	Feed    *models.Feed  `json:"feed"`
	Alert   *models.Alert `json:"alert"`
}

type AlertsExistResponse struct {
	Message string         `json:"message"`
	Alerts  []models.Alert `json:"alerts"`
}

// AlertListItem is an alert joined with its channel for the alerts page.
type AlertListItem struct {
	AlertID          uint                 `json:"alertId"`
	ChannelID        uint                 `json:"channelId"`
	ChannelName      string               `json:"channelName"`
	Location         [2]float64           `json:"location"`
	EntryID          int64                `json:"entryId"`
	Priority         models.AlertPriority `json:"priority"`
	AlertDescription string               `json:"alertDescription"`
	FieldViolations  []string             `json:"fieldViolations"`
	Status           models.AlertStatus   `json:"status"`
	Date             time.Time            `json:"date"`
}

type AlertListResponse struct {
	Alerts []AlertListItem `json:"alerts"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

func NewFeedData(r models.Reading) *FeedData {
	return &FeedData{r[0], r[1], r[2], r[3], r[4], r[5], r[6], r[7]}
}

type IngestResponse struct {
	Message         string        `json:"message"`
	Feed            *models.Feed  `json:"feed,omitempty"`
	Alert           *models.Alert `json:"alert,omitempty"`
	FieldViolations []string      `json:"fieldViolations"`
}
