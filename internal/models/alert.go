package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type AlertStatus string

const (
	AlertUnresolved AlertStatus = "UNRESOLVED"
	AlertResolved   AlertStatus = "RESOLVED"
)

func (s AlertStatus) Valid() bool {
	return s == AlertUnresolved || s == AlertResolved
}

type AlertPriority string

const (
	PriorityHigh   AlertPriority = "HIGH"
	PriorityMedium AlertPriority = "MEDIUM"
	PriorityLow    AlertPriority = "LOW"
)

func (p AlertPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Alert records one or more threshold violations raised by a feed reading.
// At most one UNRESOLVED alert may cover a given (channel, field) pair; that
// rule is enforced by the ingestion service, not by a constraint.
type Alert struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ChannelID        uint           `gorm:"not null;index:idx_alerts_channel_status,priority:1" json:"channelId"`
	FeedID           uint           `gorm:"not null;index" json:"feedId"`
	EntryID          int64          `gorm:"not null" json:"entryId"`
	AlertDescription string         `gorm:"type:text;not null" json:"alertDescription"`
	Priority         AlertPriority  `gorm:"size:10;not null;default:HIGH" json:"priority"`
	AlertStatus      AlertStatus    `gorm:"size:20;not null;default:UNRESOLVED;index:idx_alerts_channel_status,priority:2" json:"alertStatus"`
	FieldViolations  datatypes.JSON `gorm:"not null" json:"fieldViolations"`
	AlertDate        time.Time      `gorm:"not null;index" json:"alertDate"`
	ResolvedAt       *time.Time     `json:"resolvedAt,omitempty"`
	Feed             *Feed          `gorm:"foreignKey:FeedID" json:"-"`
	Channel          *Channel       `gorm:"foreignKey:ChannelID" json:"-"`
}

// Violations decodes the stored violated-field list.
func (a *Alert) Violations() []string {
	var fields []string
	if len(a.FieldViolations) == 0 {
		return fields
	}
	if err := json.Unmarshal(a.FieldViolations, &fields); err != nil {
		return nil
	}
	return fields
}

// SetViolations encodes fields into the FieldViolations column.
func (a *Alert) SetViolations(fields []string) {
	if fields == nil {
		fields = []string{}
	}
	b, _ := json.Marshal(fields)
	a.FieldViolations = datatypes.JSON(b)
}
